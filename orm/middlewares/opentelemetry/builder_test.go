package opentelemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/async"
	"github.com/coderi421/ormkit/orm/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	builder := &MiddlewareBuilder{
		Tracer:   tp.Tracer(instrumentationName),
		DBSystem: "sqlite",
	}

	conn := &test.Conn{
		Async: true,
		OnExecute: func(q *orm.Query) (*orm.Rows, error) {
			if q.SQL == "DELETE FROM users" {
				return nil, errors.New("mock error")
			}
			return test.RowsOf([]string{"id"},
				[]orm.Value{orm.Integer(1)}, []orm.Value{orm.Integer(2)}), nil
		},
	}
	db, err := orm.NewDB(conn, orm.DBWithMiddlewares(builder.Build()))
	require.NoError(t, err)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "parent")
	err = async.Wait(func(done async.Callback) {
		db.Find(ctx, orm.NewSelect("users"), func(rows *orm.Rows, err error) { done(err) })
	})
	require.NoError(t, err)
	err = async.Wait(func(done async.Callback) {
		db.Exec(ctx, orm.NewDelete("users"), func(rows *orm.Rows, err error) { done(err) })
	})
	assert.EqualError(t, err, "mock error")
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	sel := spans[0]
	assert.Equal(t, "SELECT-users", sel.Name())
	assert.Equal(t, trace.SpanKindClient, sel.SpanKind())
	assert.Equal(t, parent.SpanContext().SpanID(), sel.Parent().SpanID())
	assert.Contains(t, sel.Attributes(), attribute.String("db.statement", "SELECT * FROM users"))
	assert.Contains(t, sel.Attributes(), attribute.String("db.system", "sqlite"))
	assert.Contains(t, sel.Attributes(), attribute.Int("db.rows", 2))
	assert.Equal(t, codes.Unset, sel.Status().Code)

	del := spans[1]
	assert.Equal(t, "DELETE-users", del.Name())
	assert.Equal(t, codes.Error, del.Status().Code)
	assert.Equal(t, "mock error", del.Status().Description)
	require.Len(t, del.Events(), 1)
	assert.Equal(t, "exception", del.Events()[0].Name)
}

func TestMiddlewareBuilder_DefaultTracer(t *testing.T) {
	builder := &MiddlewareBuilder{}
	mdl := builder.Build()
	assert.NotNil(t, builder.Tracer)

	db, err := orm.NewDB(&test.Conn{}, orm.DBWithMiddlewares(mdl))
	require.NoError(t, err)
	err = async.Wait(func(done async.Callback) {
		db.Execute(context.Background(), orm.NewQuery("SELECT 1"),
			func(rows *orm.Rows, err error) { done(err) })
	})
	assert.NoError(t, err)
}
