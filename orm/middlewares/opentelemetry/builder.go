package opentelemetry

import (
	"context"
	"fmt"

	"github.com/coderi421/ormkit/orm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/coderi421/ormkit/orm/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
	// DBSystem 例如 mysql, sqlite
	DBSystem string
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext, done func(*orm.QueryResult)) {
			// span name: select-test_model
			spanName := qc.Type
			if qc.Table != "" {
				spanName = fmt.Sprintf("%s-%s", qc.Type, qc.Table)
			}
			ctx, span := m.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(attribute.String("db.statement", qc.Query.SQL))
			span.SetAttributes(attribute.String("db.operation", qc.Type))
			if qc.Table != "" {
				span.SetAttributes(attribute.String("db.sql.table", qc.Table))
			}
			if m.DBSystem != "" {
				span.SetAttributes(attribute.String("db.system", m.DBSystem))
			}

			next(ctx, qc, func(res *orm.QueryResult) {
				if res.Err != nil {
					span.RecordError(res.Err)
					span.SetStatus(codes.Error, res.Err.Error())
				}
				if rows := res.Rows(); rows != nil {
					span.SetAttributes(attribute.Int("db.rows", rows.Len()))
				}
				span.End()
				done(res)
			})
		}
	}
}
