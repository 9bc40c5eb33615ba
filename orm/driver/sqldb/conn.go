// Package sqldb 基于 database/sql 实现的 orm.Connection
//
// 一个 Conn 只占用一条物理连接，这样 BEGIN 和 SAVEPOINT 一定落在同一条连接上。
// 所有的回调都在新的 goroutine 中执行，语句之间串行。
package sqldb

import (
	"context"
	"database/sql"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/async"
	lru "github.com/hashicorp/golang-lru"
)

type Option func(c *Conn)

// WithDialect 覆盖根据驱动名推断出来的方言
func WithDialect(d Dialect) Option {
	return func(c *Conn) {
		c.dialect = d
	}
}

// WithStmtCache 缓存最近使用的 size 个预编译语句，size <= 0 的时候不缓存
func WithStmtCache(size int) Option {
	return func(c *Conn) {
		c.stmtCacheSize = size
	}
}

// WithTxOptions 开启事务时使用的隔离级别等
func WithTxOptions(opts *sql.TxOptions) Option {
	return func(c *Conn) {
		c.txOpts = opts
	}
}

type Conn struct {
	db      *sql.DB
	ownsDB  bool
	dialect Dialect
	txOpts  *sql.TxOptions

	stmtCacheSize int
	stmts         *lru.Cache

	// mu 保证同一时刻只有一个语句在执行
	mu   sync.Mutex
	conn *sql.Conn
	tx   *sql.Tx
}

var (
	_ orm.Connection = (*Conn)(nil)
	_ orm.Transactor = (*Conn)(nil)
)

// Open 打开数据库，Close 的时候会一并关闭
func Open(driver, dsn string, opts ...Option) (*Conn, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	c, err := newConn(db, DialectOf(driver), opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.ownsDB = true
	return c, nil
}

// OpenDB 使用已有的 sql.DB，调用者负责关闭它
// 一般用于测试，例如 sqlmock
func OpenDB(db *sql.DB, dialect Dialect, opts ...Option) (*Conn, error) {
	return newConn(db, dialect, opts...)
}

func newConn(db *sql.DB, dialect Dialect, opts ...Option) (*Conn, error) {
	c := &Conn{
		db:      db,
		dialect: dialect,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.stmtCacheSize > 0 {
		stmts, err := lru.NewWithEvict(c.stmtCacheSize, func(_, value any) {
			_ = value.(*sql.Stmt).Close()
		})
		if err != nil {
			return nil, err
		}
		c.stmts = stmts
	}
	return c, nil
}

func (c *Conn) Dialect() Dialect {
	return c.dialect
}

func (c *Conn) Open(ctx context.Context, done async.Callback) {
	go func() {
		done(guard(func() (err error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.conn == nil {
				c.conn, err = c.db.Conn(ctx)
			}
			return err
		}))
	}()
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stmts != nil {
		c.stmts.Purge()
	}
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	if c.ownsDB {
		_ = c.db.Close()
	}
}

// 下面的方法在新的 goroutine 里面执行语句，调用方的 recover 拦不住这里的 panic，
// 所以由 guard 转换成 *orm.PanicError。done 在 guard 之外调用，回调自己的 panic 不会被吞掉

func (c *Conn) Execute(ctx context.Context, q *orm.Query, done func(rows *orm.Rows, err error)) {
	go func() {
		var rows *orm.Rows
		err := guard(func() (err error) {
			rows, err = c.execute(ctx, q)
			return err
		})
		done(rows, err)
	}()
}

func (c *Conn) ExecuteInsert(ctx context.Context, q *orm.Query, pk orm.Field, done func(pk orm.Value, err error)) {
	go func() {
		var id orm.Value
		err := guard(func() (err error) {
			id, err = c.executeInsert(ctx, q, pk)
			return err
		})
		done(id, err)
	}()
}

func (c *Conn) Begin(ctx context.Context, done async.Callback) {
	go func() {
		done(guard(func() error { return c.begin(ctx) }))
	}()
}

// guard 执行 fn，把 panic 转换成 error
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &orm.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

func (c *Conn) begin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return orm.ErrConnClosed
	}
	tx, err := c.conn.BeginTx(ctx, c.txOpts)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

func (c *Conn) Commit(ctx context.Context, done async.Callback) {
	c.endTx(done, (*sql.Tx).Commit)
}

func (c *Conn) Rollback(ctx context.Context, done async.Callback) {
	c.endTx(done, (*sql.Tx).Rollback)
}

// endTx 回调必须在释放锁之后调用，否则回调里面的语句会死锁
func (c *Conn) endTx(done async.Callback, end func(tx *sql.Tx) error) {
	go func() {
		c.mu.Lock()
		tx := c.tx
		c.tx = nil
		c.mu.Unlock()
		if tx == nil {
			done(sql.ErrTxDone)
			return
		}
		done(guard(func() error { return end(tx) }))
	}()
}

func (c *Conn) CreateSavePoint(ctx context.Context, name string) error {
	return c.savePoint(ctx, "SAVEPOINT ", name)
}

func (c *Conn) ReleaseSavePoint(ctx context.Context, name string) error {
	return c.savePoint(ctx, "RELEASE SAVEPOINT ", name)
}

func (c *Conn) RollbackToSavePoint(ctx context.Context, name string) error {
	return c.savePoint(ctx, "ROLLBACK TO SAVEPOINT ", name)
}

// savePoint 名字会直接拼接进 SQL，所以必须先校验
func (c *Conn) savePoint(ctx context.Context, stmt, name string) error {
	if err := orm.ValidSavePointName(name); err != nil {
		return err
	}
	_, err := c.execute(ctx, orm.NewQuery(stmt+name))
	return err
}

// executor *sql.Conn 和 *sql.Tx 共同的部分
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (c *Conn) execute(ctx context.Context, q *orm.Query) (*orm.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	query := c.dialect.Rebind(q.SQL)
	args := q.DriverArgs()
	if returnsRows(query) {
		rows, err := c.query(ctx, query, args)
		if err != nil {
			return nil, err
		}
		return scanRows(rows)
	}
	res, err := c.exec(ctx, query, args)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &orm.Rows{RowsAffected: affected}, nil
}

func (c *Conn) executeInsert(ctx context.Context, q *orm.Query, pk orm.Field) (orm.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	query := c.dialect.Rebind(q.SQL)
	args := q.DriverArgs()
	if c.dialect.ReturningPrimaryKey() {
		rows, err := c.query(ctx, query+" RETURNING "+pk.Name(), args)
		if err != nil {
			return nil, err
		}
		res, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		row, ok := res.First()
		if !ok {
			return nil, orm.ErrNoRows
		}
		return row.Values()[0], nil
	}
	res, err := c.exec(ctx, query, args)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return orm.Integer(id), nil
}

// executor 调用者必须持有 mu
func (c *Conn) executor() (executor, error) {
	if c.tx != nil {
		return c.tx, nil
	}
	if c.conn == nil {
		return nil, orm.ErrConnClosed
	}
	return c.conn, nil
}

func (c *Conn) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	stmt, err := c.stmt(ctx, query)
	if err != nil {
		return nil, err
	}
	if stmt != nil {
		return stmt.ExecContext(ctx, args...)
	}
	e, err := c.executor()
	if err != nil {
		return nil, err
	}
	return e.ExecContext(ctx, query, args...)
}

func (c *Conn) query(ctx context.Context, query string, args []any) (*sql.Rows, error) {
	stmt, err := c.stmt(ctx, query)
	if err != nil {
		return nil, err
	}
	if stmt != nil {
		return stmt.QueryContext(ctx, args...)
	}
	e, err := c.executor()
	if err != nil {
		return nil, err
	}
	return e.QueryContext(ctx, query, args...)
}

// stmt 没有开启语句缓存的时候返回 nil
// 预编译语句属于物理连接，在事务中需要通过 tx.StmtContext 转换
func (c *Conn) stmt(ctx context.Context, query string) (*sql.Stmt, error) {
	if c.stmts == nil || isTxControl(query) {
		return nil, nil
	}
	if c.conn == nil {
		return nil, orm.ErrConnClosed
	}
	var stmt *sql.Stmt
	if val, ok := c.stmts.Get(query); ok {
		stmt = val.(*sql.Stmt)
	} else {
		var err error
		stmt, err = c.conn.PrepareContext(ctx, query)
		if err != nil {
			return nil, err
		}
		c.stmts.Add(query, stmt)
	}
	if c.tx != nil {
		return c.tx.StmtContext(ctx, stmt), nil
	}
	return stmt, nil
}

// returnsRows 根据第一个关键字判断是否需要 Query
func returnsRows(query string) bool {
	kw := firstKeyword(query)
	switch kw {
	case "SELECT", "WITH", "SHOW", "PRAGMA", "EXPLAIN", "VALUES", "DESCRIBE":
		return true
	}
	return strings.Contains(strings.ToUpper(query), " RETURNING ")
}

func isTxControl(query string) bool {
	switch firstKeyword(query) {
	case "BEGIN", "COMMIT", "ROLLBACK", "SAVEPOINT", "RELEASE", "START":
		return true
	}
	return false
}

func firstKeyword(query string) string {
	query = strings.TrimLeft(query, " \t\r\n(")
	end := strings.IndexAny(query, " \t\r\n(;")
	if end < 0 {
		end = len(query)
	}
	return strings.ToUpper(query[:end])
}
