package orm

import (
	"context"
	"reflect"
	"strings"

	"github.com/coderi421/ormkit/orm/async"
	"github.com/coderi421/ormkit/orm/internal/valuer"
	"github.com/coderi421/ormkit/orm/model"
)

type DBOption func(*DB)

// DB 是持久化的入口
// DB 本身也是一个 Connection，经过它执行的语句都会经过中间件
type DB struct {
	r          model.Registry // 存储数据库表和 struct 映射关系的实例
	valCreator valuer.Creator // 与DB交互映射的实现
	mdls       []Middleware
	handler    Handler
	conn       Connection
}

var (
	_ Connection = (*DB)(nil)
	_ Transactor = (*DB)(nil)
)

// NewRegistry 返回能够识别 ChangeSet 字段的 model.Registry
// 自定义 Registry 的时候应该用这个方法创建
func NewRegistry(opts ...model.RegistryOption) model.Registry {
	opts = append([]model.RegistryOption{
		model.WithTrackerType(reflect.TypeOf((*ChangeSet)(nil))),
	}, opts...)
	return model.NewRegistry(opts...)
}

// NewDB 在 conn 之上创建 DB，conn 的生命周期依旧由调用者负责
func NewDB(conn Connection, opts ...DBOption) (*DB, error) {
	db := &DB{
		r:          NewRegistry(),
		valCreator: valuer.NewReflectValue,
		conn:       conn,
	}
	for _, opt := range opts {
		opt(db)
	}

	// 从后往前包装，第一个中间件在最外层
	h := db.terminal
	for i := len(db.mdls) - 1; i >= 0; i-- {
		h = db.mdls[i](h)
	}
	db.handler = h
	return db, nil
}

// MustNewDB 创建失败的时候 panic
func MustNewDB(conn Connection, opts ...DBOption) *DB {
	db, err := NewDB(conn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

func DBWithRegistry(r model.Registry) DBOption {
	return func(db *DB) {
		db.r = r
	}
}

func DBWithMiddlewares(mdls ...Middleware) DBOption {
	return func(db *DB) {
		db.mdls = append(db.mdls, mdls...)
	}
}

// DBUseUnsafeValuer 通过字段偏移量读写实例
func DBUseUnsafeValuer() DBOption {
	return func(db *DB) {
		db.valCreator = valuer.NewUnsafeValue
	}
}

func DBUseReflectValuer() DBOption {
	return func(db *DB) {
		db.valCreator = valuer.NewReflectValue
	}
}

// Registry 注册模型的时候用
func (db *DB) Registry() model.Registry {
	return db.r
}

func (db *DB) Open(ctx context.Context, done async.Callback) {
	db.conn.Open(ctx, done)
}

func (db *DB) Close() {
	db.conn.Close()
}

func (db *DB) Execute(ctx context.Context, q *Query, done func(rows *Rows, err error)) {
	db.run(ctx, &QueryContext{
		Type:  statementType(q.SQL),
		Query: q,
	}, func(res *QueryResult) {
		done(res.Rows(), res.Err)
	})
}

func (db *DB) ExecuteInsert(ctx context.Context, q *Query, pk Field, done func(pk Value, err error)) {
	db.run(ctx, &QueryContext{
		Type:       TypeInsert,
		Table:      pk.Table(),
		Query:      q,
		PrimaryKey: &pk,
	}, func(res *QueryResult) {
		v, _ := res.Result.(Value)
		done(v, res.Err)
	})
}

func (db *DB) CreateSavePoint(ctx context.Context, name string) error {
	return db.conn.CreateSavePoint(ctx, name)
}

func (db *DB) ReleaseSavePoint(ctx context.Context, name string) error {
	return db.conn.ReleaseSavePoint(ctx, name)
}

func (db *DB) RollbackToSavePoint(ctx context.Context, name string) error {
	return db.conn.RollbackToSavePoint(ctx, name)
}

func (db *DB) Begin(ctx context.Context, done async.Callback) {
	db.txStatement(ctx, TypeBegin, done)
}

func (db *DB) Commit(ctx context.Context, done async.Callback) {
	db.txStatement(ctx, TypeCommit, done)
}

func (db *DB) Rollback(ctx context.Context, done async.Callback) {
	db.txStatement(ctx, TypeRollback, done)
}

func (db *DB) txStatement(ctx context.Context, typ string, done async.Callback) {
	db.run(ctx, &QueryContext{
		Type:  typ,
		Query: NewQuery(typ),
	}, func(res *QueryResult) {
		done(res.Err)
	})
}

// Transaction 在 db 上开启事务
func (db *DB) Transaction(ctx context.Context, block async.Task, done async.Callback) {
	Transaction(ctx, db, block, done)
}

// Find 执行查询
func (db *DB) Find(ctx context.Context, s *Select, done func(rows *Rows, err error)) {
	db.Exec(ctx, s, done)
}

// Exec 构造并执行任意的语句
func (db *DB) Exec(ctx context.Context, qb QueryBuilder, done func(rows *Rows, err error)) {
	q, err := qb.Build()
	if err != nil {
		done(nil, err)
		return
	}
	qc := &QueryContext{Query: q}
	switch b := qb.(type) {
	case *Select:
		qc.Type, qc.Table = TypeSelect, b.Table()
	case *Insert:
		qc.Type, qc.Table = TypeInsert, b.Table()
	case *Update:
		qc.Type, qc.Table = TypeUpdate, b.Table()
	case *Delete:
		qc.Type, qc.Table = TypeDelete, b.Table()
	default:
		qc.Type = statementType(q.SQL)
	}
	db.run(ctx, qc, func(res *QueryResult) {
		done(res.Rows(), res.Err)
	})
}

// SelectQuery 查询模型全部列的语句，没有任何过滤条件
func (db *DB) SelectQuery(ptr any) (*Select, error) {
	e, err := db.entityOf(ptr)
	if err != nil {
		return nil, err
	}
	return NewSelect(e.table()).Columns(e.columns()...), nil
}

func (db *DB) InsertQuery(ptr any, values ...Assignment) (*Insert, error) {
	e, err := db.entityOf(ptr)
	if err != nil {
		return nil, err
	}
	return NewInsert(e.table()).Values(values...), nil
}

func (db *DB) UpdateQuery(ptr any, values ...Assignment) (*Update, error) {
	e, err := db.entityOf(ptr)
	if err != nil {
		return nil, err
	}
	return NewUpdate(e.table()).Set(values...), nil
}

func (db *DB) DeleteQuery(ptr any) (*Delete, error) {
	e, err := db.entityOf(ptr)
	if err != nil {
		return nil, err
	}
	return NewDelete(e.table()), nil
}

// run 所有的语句都从这里进入中间件
func (db *DB) run(ctx context.Context, qc *QueryContext, done func(*QueryResult)) {
	if err := qc.Query.Validate(); err != nil {
		done(&QueryResult{Err: err})
		return
	}
	db.handler(ctx, qc, done)
}

// terminal 中间件链的最后一环，真正调用 Connection
func (db *DB) terminal(ctx context.Context, qc *QueryContext, done func(*QueryResult)) {
	callback := func(err error) {
		done(&QueryResult{Err: err})
	}
	if t, ok := db.conn.(Transactor); ok {
		switch qc.Type {
		case TypeBegin:
			t.Begin(ctx, callback)
			return
		case TypeCommit:
			t.Commit(ctx, callback)
			return
		case TypeRollback:
			t.Rollback(ctx, callback)
			return
		}
	}

	if qc.PrimaryKey != nil {
		db.conn.ExecuteInsert(ctx, qc.Query, *qc.PrimaryKey, func(pk Value, err error) {
			done(&QueryResult{Result: pk, Err: err})
		})
		return
	}
	db.conn.Execute(ctx, qc.Query, func(rows *Rows, err error) {
		done(&QueryResult{Result: rows, Err: err})
	})
}

// statementType 根据第一个关键字判断语句的类型
func statementType(sql string) string {
	sql = strings.TrimLeft(sql, " \t\r\n(")
	end := strings.IndexAny(sql, " \t\r\n(;")
	if end < 0 {
		end = len(sql)
	}
	switch kw := strings.ToUpper(sql[:end]); kw {
	case TypeSelect, "WITH":
		return TypeSelect
	case TypeInsert, TypeUpdate, TypeDelete, TypeBegin, TypeCommit, TypeRollback:
		return kw
	default:
		return TypeRaw
	}
}
