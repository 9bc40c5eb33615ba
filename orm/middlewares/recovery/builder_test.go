package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/async"
	"github.com/coderi421/ormkit/orm/internal/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("broken driver")

func TestMiddlewareBuilder_Build(t *testing.T) {
	testCases := []struct {
		name      string
		onExecute func(q *orm.Query) (*orm.Rows, error)
		wantErr   error
		wantPanic any
	}{
		{
			name: "no panic",
			onExecute: func(q *orm.Query) (*orm.Rows, error) {
				return &orm.Rows{}, nil
			},
		},
		{
			name: "panic with string",
			onExecute: func(q *orm.Query) (*orm.Rows, error) {
				panic("发生 panic 了")
			},
			wantPanic: "发生 panic 了",
		},
		{
			name: "panic with error",
			onExecute: func(q *orm.Query) (*orm.Rows, error) {
				panic(errBroken)
			},
			wantPanic: errBroken,
			wantErr:   errBroken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var logged *PanicError
			builder := &MiddlewareBuilder{
				LogFunc: func(ctx context.Context, qc *orm.QueryContext, err *PanicError) {
					logged = err
				},
			}
			db, err := orm.NewDB(&test.Conn{OnExecute: tc.onExecute},
				orm.DBWithMiddlewares(builder.Build()))
			require.NoError(t, err)

			err = async.Wait(func(done async.Callback) {
				db.Find(context.Background(), orm.NewSelect("users"),
					func(rows *orm.Rows, err error) { done(err) })
			})
			if tc.wantPanic == nil {
				assert.NoError(t, err)
				assert.Nil(t, logged)
				return
			}
			var pe *PanicError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.wantPanic, pe.Value)
			assert.NotEmpty(t, pe.Stack)
			assert.Same(t, pe, logged)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestMiddlewareBuilder_PanicAfterDone(t *testing.T) {
	builder := &MiddlewareBuilder{}
	db, err := orm.NewDB(&test.Conn{}, orm.DBWithMiddlewares(builder.Build()))
	require.NoError(t, err)

	// 回调里面的 panic 不是语句造成的，继续往上抛
	assert.PanicsWithValue(t, "callback", func() {
		db.Find(context.Background(), orm.NewSelect("users"),
			func(rows *orm.Rows, err error) { panic("callback") })
	})
}
