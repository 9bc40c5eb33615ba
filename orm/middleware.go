package orm

import (
	"context"

	"github.com/coderi421/ormkit/orm/model"
)

const (
	TypeSelect   = "SELECT"
	TypeInsert   = "INSERT"
	TypeUpdate   = "UPDATE"
	TypeDelete   = "DELETE"
	TypeRaw      = "RAW"
	TypeBegin    = stmtBegin
	TypeCommit   = stmtCommit
	TypeRollback = stmtRollback
)

// QueryContext 中间件的上下文
type QueryContext struct {
	// Type 声明查询类型。即 SELECT, UPDATE, DELETE, INSERT, RAW 以及事务语句
	Type string
	// Table 语句作用的表，RAW 语句没有
	Table string

	Query *Query
	// PrimaryKey 不为 nil 的时候，意味着需要驱动返回生成的主键
	PrimaryKey *Field
	// Model 为了有的中间件在拦截时需要 Model 信息，可能为 nil
	Model *model.Model
}

type QueryResult struct {
	// Result 在不同的查询里面，类型是不同的
	// PrimaryKey 不为 nil 的时候是 Value
	// 其它情况下是 *Rows
	Result any
	Err    error
}

// Rows 取出 *Rows，类型不对的时候返回 nil
func (r *QueryResult) Rows() *Rows {
	rows, _ := r.Result.(*Rows)
	return rows
}

// Handler 以回调的方式返回结果，done 只会被调用一次
type Handler func(ctx context.Context, qc *QueryContext, done func(*QueryResult))

type Middleware func(next Handler) Handler
