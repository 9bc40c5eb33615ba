//go:build e2e

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/middlewares/cache"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	prefix := "orm_test_" + time.Now().Format("150405.000")
	s := NewStore(client, WithPrefix(prefix))
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"_*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})

	_, err := s.Get(ctx, "users:0:0:abc")
	assert.Equal(t, cache.ErrMiss, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	rows := &orm.Rows{
		Columns: []string{"id", "name", "created_at"},
		Values:  [][]orm.Value{{orm.Integer(1), orm.Text("Tom"), orm.Timestamp(now)}},
	}
	require.NoError(t, s.Set(ctx, "users:0:0:abc", rows, time.Minute))
	got, err := s.Get(ctx, "users:0:0:abc")
	require.NoError(t, err)
	assert.Equal(t, rows.Columns, got.Columns)
	assert.Equal(t, []orm.Value{orm.Integer(1), orm.Text("Tom")}, got.Values[0][:2])
	assert.True(t, time.Time(got.Values[0][2].(orm.Timestamp)).Equal(now))

	gen, err := s.Generation(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), gen)
	require.NoError(t, s.Bump(ctx, "users"))
	gen, err = s.Generation(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
}
