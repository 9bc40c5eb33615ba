package prometheus

import (
	"context"
	"time"

	"github.com/coderi421/ormkit/orm"
	"github.com/prometheus/client_golang/prometheus"
)

type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
	// Registerer 为 nil 的时候注册到 prometheus.DefaultRegisterer
	Registerer prometheus.Registerer
}

func (m MiddlewareBuilder) Build() orm.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      m.Name,
		Subsystem: m.Subsystem,
		Namespace: m.Namespace,
		Help:      m.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"type", "table", "status"})

	reg := m.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(vector)

	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext, done func(*orm.QueryResult)) {
			startTime := time.Now()
			next(ctx, qc, func(res *orm.QueryResult) {
				// 单位是微秒，数据库的语句大多在毫秒以内
				duration := time.Since(startTime).Microseconds()
				table := qc.Table
				if table == "" {
					table = "unknown"
				}
				status := "ok"
				if res.Err != nil {
					status = "error"
				}
				vector.WithLabelValues(qc.Type, table, status).Observe(float64(duration))
				done(res)
			})
		}
	}
}
