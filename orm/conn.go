package orm

import (
	"context"

	"github.com/coderi421/ormkit/orm/async"
)

// Connection 是驱动需要实现的能力
// 除了 savepoint 相关的方法，全部采用回调的形式，调用方不会被阻塞
// 同一个 Connection 同一时刻只执行一个语句，调用方需要自己保证不会重叠使用
type Connection interface {
	// Open 建立连接，失败通过回调返回
	Open(ctx context.Context, done async.Callback)
	// Close 关闭连接，不关心结果
	Close()
	// Execute 执行一个语句
	Execute(ctx context.Context, q *Query, done func(rows *Rows, err error))
	// ExecuteInsert 执行 INSERT 并且返回生成的主键
	// 主键的生成方式（自增列，RETURNING，last insert id）由驱动决定
	ExecuteInsert(ctx context.Context, q *Query, pk Field, done func(pk Value, err error))

	CreateSavePoint(ctx context.Context, name string) error
	ReleaseSavePoint(ctx context.Context, name string) error
	RollbackToSavePoint(ctx context.Context, name string) error
}

// Transactor 驱动可以实现这个接口来覆盖默认的 BEGIN/COMMIT/ROLLBACK
type Transactor interface {
	Begin(ctx context.Context, done async.Callback)
	Commit(ctx context.Context, done async.Callback)
	Rollback(ctx context.Context, done async.Callback)
}

const (
	stmtBegin    = "BEGIN"
	stmtCommit   = "COMMIT"
	stmtRollback = "ROLLBACK"
)

func Begin(ctx context.Context, conn Connection, done async.Callback) {
	if t, ok := conn.(Transactor); ok {
		t.Begin(ctx, done)
		return
	}
	execStatement(ctx, conn, stmtBegin, done)
}

func Commit(ctx context.Context, conn Connection, done async.Callback) {
	if t, ok := conn.(Transactor); ok {
		t.Commit(ctx, done)
		return
	}
	execStatement(ctx, conn, stmtCommit, done)
}

func Rollback(ctx context.Context, conn Connection, done async.Callback) {
	if t, ok := conn.(Transactor); ok {
		t.Rollback(ctx, done)
		return
	}
	execStatement(ctx, conn, stmtRollback, done)
}

func execStatement(ctx context.Context, conn Connection, stmt string, done async.Callback) {
	conn.Execute(ctx, NewQuery(stmt), func(_ *Rows, err error) {
		done(err)
	})
}
