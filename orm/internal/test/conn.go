// Package test 测试用的 Connection，记录执行过的语句，结果由测试脚本化
package test

import (
	"context"
	"sync"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/async"
)

type Conn struct {
	// Async 为 true 的时候在新的 goroutine 里面回调
	Async bool

	OpenErr error
	// OnExecute 决定 Execute 的结果，为 nil 的时候返回空结果
	OnExecute func(q *orm.Query) (*orm.Rows, error)
	// OnInsert 决定 ExecuteInsert 的结果，为 nil 的时候返回 Integer(1)
	OnInsert func(q *orm.Query, pk orm.Field) (orm.Value, error)
	// OnSavePoint 决定 savepoint 操作的结果，stmt 形如 "SAVEPOINT sp"
	OnSavePoint func(stmt string) error

	mu      sync.Mutex
	log     []string
	queries []*orm.Query
	opened  bool
	closed  bool
}

var _ orm.Connection = (*Conn)(nil)

func (c *Conn) Open(ctx context.Context, done async.Callback) {
	c.mu.Lock()
	c.opened = c.OpenErr == nil
	c.mu.Unlock()
	c.callback(func() { done(c.OpenErr) })
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Conn) Execute(ctx context.Context, q *orm.Query, done func(rows *orm.Rows, err error)) {
	c.record(q)
	rows, err := &orm.Rows{}, error(nil)
	if c.OnExecute != nil {
		rows, err = c.OnExecute(q)
	}
	c.callback(func() { done(rows, err) })
}

func (c *Conn) ExecuteInsert(ctx context.Context, q *orm.Query, pk orm.Field, done func(pk orm.Value, err error)) {
	c.record(q)
	var v orm.Value = orm.Integer(1)
	var err error
	if c.OnInsert != nil {
		v, err = c.OnInsert(q, pk)
	}
	c.callback(func() { done(v, err) })
}

func (c *Conn) CreateSavePoint(ctx context.Context, name string) error {
	return c.savePoint("SAVEPOINT " + name)
}

func (c *Conn) ReleaseSavePoint(ctx context.Context, name string) error {
	return c.savePoint("RELEASE SAVEPOINT " + name)
}

func (c *Conn) RollbackToSavePoint(ctx context.Context, name string) error {
	return c.savePoint("ROLLBACK TO SAVEPOINT " + name)
}

func (c *Conn) savePoint(stmt string) error {
	c.record(orm.NewQuery(stmt))
	if c.OnSavePoint != nil {
		return c.OnSavePoint(stmt)
	}
	return nil
}

// Statements 按照执行顺序返回全部的 SQL
func (c *Conn) Statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]string, len(c.log))
	copy(res, c.log)
	return res
}

// Queries 按照执行顺序返回全部的语句，包含参数
func (c *Conn) Queries() []*orm.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]*orm.Query, len(c.queries))
	copy(res, c.queries)
	return res
}

func (c *Conn) Opened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) record(q *orm.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, q.SQL)
	c.queries = append(c.queries, q)
}

func (c *Conn) callback(fn func()) {
	if c.Async {
		go fn()
		return
	}
	fn()
}

// RowsOf 构造查询结果
func RowsOf(columns []string, rows ...[]orm.Value) *orm.Rows {
	return &orm.Rows{
		Columns: columns,
		Values:  rows,
	}
}
