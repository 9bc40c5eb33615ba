package memory

import (
	"context"
	"testing"
	"time"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/middlewares/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore(time.Second)

	_, err := s.Get(ctx, "users:0:0:abc")
	assert.Equal(t, cache.ErrMiss, err)

	rows := &orm.Rows{Columns: []string{"id"}, Values: [][]orm.Value{{orm.Integer(1)}}}
	require.NoError(t, s.Set(ctx, "users:0:0:abc", rows, time.Minute))
	// 修改原始数据不影响缓存
	rows.Values[0][0] = orm.Integer(2)

	got, err := s.Get(ctx, "users:0:0:abc")
	require.NoError(t, err)
	assert.Equal(t, []orm.Value{orm.Integer(1)}, got.Values[0])
	got.Values[0][0] = orm.Integer(3)
	got, err = s.Get(ctx, "users:0:0:abc")
	require.NoError(t, err)
	assert.Equal(t, []orm.Value{orm.Integer(1)}, got.Values[0])
}

func TestStore_Expiration(t *testing.T) {
	ctx := context.Background()
	s := NewStore(time.Second)
	require.NoError(t, s.Set(ctx, "k", &orm.Rows{}, time.Millisecond*10))
	time.Sleep(time.Millisecond * 20)
	_, err := s.Get(ctx, "k")
	assert.Equal(t, cache.ErrMiss, err)
}

func TestStore_Generation(t *testing.T) {
	ctx := context.Background()
	s := NewStore(time.Second)

	gen, err := s.Generation(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), gen)

	require.NoError(t, s.Bump(ctx, "users"))
	require.NoError(t, s.Bump(ctx, "users"))
	gen, err = s.Generation(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), gen)

	gen, err = s.Generation(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), gen)
	assert.Equal(t, 1, s.ItemCount())
}
