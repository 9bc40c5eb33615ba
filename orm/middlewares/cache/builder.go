// Package cache 查询结果缓存
// 只缓存带有表名的 SELECT，对同一张表的 INSERT/UPDATE/DELETE 会让它的版本号递增，
// 之前缓存的结果因为 key 不同而失效。RAW 写语句和事务结束会让所有的表失效。
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coderi421/ormkit/orm"
	"github.com/vmihailenco/msgpack/v5"
)

// globalScope 所有表共享的版本号
const globalScope = "*"

type MiddlewareBuilder struct {
	store      Store
	expiration time.Duration
	logFunc    func(err error)
	// 正在进行中的事务，事务里面的读不走缓存
	inTx int32
}

func NewBuilder(store Store) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		store:      store,
		expiration: time.Minute,
		logFunc: func(err error) {
			log.Printf("cache: %v", err)
		},
	}
}

// Expiration 缓存的过期时间
func (m *MiddlewareBuilder) Expiration(d time.Duration) *MiddlewareBuilder {
	m.expiration = d
	return m
}

// LogFunc 缓存本身的错误不会返回给调用者，只会记录下来
func (m *MiddlewareBuilder) LogFunc(fn func(err error)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext, done func(*orm.QueryResult)) {
			switch qc.Type {
			case orm.TypeSelect:
				m.read(ctx, qc, next, done)
			case orm.TypeInsert, orm.TypeUpdate, orm.TypeDelete, orm.TypeRaw:
				next(ctx, qc, func(res *orm.QueryResult) {
					// 失败的语句也可能改了一部分数据
					scope := qc.Table
					if scope == "" {
						scope = globalScope
					}
					m.bump(ctx, scope)
					done(res)
				})
			case orm.TypeBegin:
				next(ctx, qc, func(res *orm.QueryResult) {
					if res.Err == nil {
						atomic.AddInt32(&m.inTx, 1)
					}
					done(res)
				})
			case orm.TypeCommit, orm.TypeRollback:
				next(ctx, qc, func(res *orm.QueryResult) {
					if res.Err == nil || qc.Type == orm.TypeRollback {
						m.leaveTx()
					}
					m.bump(ctx, globalScope)
					done(res)
				})
			default:
				next(ctx, qc, done)
			}
		}
	}
}

func (m *MiddlewareBuilder) read(ctx context.Context, qc *orm.QueryContext,
	next orm.Handler, done func(*orm.QueryResult)) {
	if !m.cacheable(qc) {
		next(ctx, qc, done)
		return
	}
	key, err := m.key(ctx, qc)
	if err != nil {
		m.logFunc(err)
		next(ctx, qc, done)
		return
	}
	rows, err := m.store.Get(ctx, key)
	if err == nil {
		done(&orm.QueryResult{Result: rows})
		return
	}
	if err != ErrMiss {
		m.logFunc(err)
	}
	next(ctx, qc, func(res *orm.QueryResult) {
		if rows := res.Rows(); res.Err == nil && rows != nil {
			if err := m.store.Set(ctx, key, rows, m.expiration); err != nil {
				m.logFunc(err)
			}
		}
		done(res)
	})
}

// cacheable JOIN 的结果依赖多张表，而版本号只跟着主表走
func (m *MiddlewareBuilder) cacheable(qc *orm.QueryContext) bool {
	return qc.Table != "" &&
		atomic.LoadInt32(&m.inTx) == 0 &&
		!strings.Contains(strings.ToUpper(qc.Query.SQL), " JOIN ")
}

func (m *MiddlewareBuilder) key(ctx context.Context, qc *orm.QueryContext) (string, error) {
	global, err := m.store.Generation(ctx, globalScope)
	if err != nil {
		return "", err
	}
	gen, err := m.store.Generation(ctx, qc.Table)
	if err != nil {
		return "", err
	}
	args, err := cellsOf(qc.Query.Args)
	if err != nil {
		return "", err
	}
	data, err := msgpack.Marshal(struct {
		SQL  string `msgpack:"q"`
		Args []cell `msgpack:"a"`
	}{SQL: qc.Query.SQL, Args: args})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%d:%d:%x", qc.Table, global, gen, sum[:16]), nil
}

func (m *MiddlewareBuilder) bump(ctx context.Context, scope string) {
	if err := m.store.Bump(ctx, scope); err != nil {
		m.logFunc(err)
	}
}

func (m *MiddlewareBuilder) leaveTx() {
	for {
		n := atomic.LoadInt32(&m.inTx)
		if n == 0 || atomic.CompareAndSwapInt32(&m.inTx, n, n-1) {
			return
		}
	}
}
