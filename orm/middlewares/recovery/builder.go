package recovery

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"sync/atomic"

	"github.com/coderi421/ormkit/orm"
)

// PanicError 和驱动在 goroutine 里面恢复的 panic 是同一个类型
type PanicError = orm.PanicError

type MiddlewareBuilder struct {
	LogFunc func(ctx context.Context, qc *orm.QueryContext, err *PanicError)
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	logFunc := m.LogFunc
	if logFunc == nil {
		logFunc = func(ctx context.Context, qc *orm.QueryContext, err *PanicError) {
			log.Printf("%v, sql: %s\n%s", err, qc.Query.SQL, err.Stack)
		}
	}
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext, done func(*orm.QueryResult)) {
			var called int32
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				// done 已经执行过了，panic 来自后续的回调，不属于这条语句
				if atomic.LoadInt32(&called) == 1 {
					panic(r)
				}
				err := &PanicError{Value: r, Stack: debug.Stack()}
				logFunc(ctx, qc, err)
				if atomic.CompareAndSwapInt32(&called, 0, 1) {
					done(&orm.QueryResult{Err: err})
				}
			}()
			next(ctx, qc, func(res *orm.QueryResult) {
				if atomic.CompareAndSwapInt32(&called, 0, 1) {
					// 异步的驱动在自己的 goroutine 里面恢复 panic，这里只负责记录
					var pe *PanicError
					if errors.As(res.Err, &pe) {
						logFunc(ctx, qc, pe)
					}
					done(res)
				}
			})
		}
	}
}
