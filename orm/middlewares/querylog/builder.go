package querylog

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/coderi421/ormkit/orm"
)

type MiddlewareBuilder struct {
	logFunc func(query string, args []any)
	// slowThreshold 大于 0 的时候，只记录耗时超过它的语句
	slowThreshold time.Duration
}

func NewBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(query string, args []any) {
			log.Printf("sql: %s, args: %v", query, args)
		},
	}
}

// LogFunc 自定义输出，例如接入 zap 之类的日志框架
func (m *MiddlewareBuilder) LogFunc(fn func(query string, args []any)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

// SlowThreshold 只记录慢查询
func (m *MiddlewareBuilder) SlowThreshold(d time.Duration) *MiddlewareBuilder {
	m.slowThreshold = d
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	if m.logFunc == nil {
		m.logFunc = NewBuilder().logFunc
	}
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext, done func(*orm.QueryResult)) {
			start := time.Now()
			next(ctx, qc, func(res *orm.QueryResult) {
				if m.slowThreshold <= 0 || time.Since(start) >= m.slowThreshold {
					m.logFunc(qc.Query.SQL, qc.Query.DriverArgs())
				}
				done(res)
			})
		}
	}
}

// JSONLogFunc 把一条语句格式化成一行 JSON 再交给 fn
func JSONLogFunc(fn func(line string)) func(query string, args []any) {
	return func(query string, args []any) {
		data, _ := json.Marshal(queryLog{SQL: query, Args: args})
		fn(string(data))
	}
}

type queryLog struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args,omitempty"`
}
