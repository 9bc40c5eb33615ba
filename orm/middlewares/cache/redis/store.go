package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/middlewares/cache"
	redis "github.com/redis/go-redis/v9"
)

// StoreOption is a function type for configuring a Store.
type StoreOption func(store *Store)

type Store struct {
	prefix string // redis 中 key 的前缀
	client redis.Cmdable
}

// NewStore 多个进程共享同一个 redis 的时候，版本号也是共享的
func NewStore(client redis.Cmdable, opts ...StoreOption) *Store {
	res := &Store{
		client: client,
		prefix: "orm",
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func WithPrefix(prefix string) StoreOption {
	return func(store *Store) {
		store.prefix = prefix
	}
}

var _ cache.Store = (*Store)(nil)

func (s *Store) key(key string) string {
	return fmt.Sprintf("%s_%s", s.prefix, key)
}

func (s *Store) genKey(scope string) string {
	return fmt.Sprintf("%s_gen_%s", s.prefix, scope)
}

func (s *Store) Get(ctx context.Context, key string) (*orm.Rows, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return cache.DecodeRows(data)
}

func (s *Store) Set(ctx context.Context, key string, rows *orm.Rows, expiration time.Duration) error {
	data, err := cache.EncodeRows(rows)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), data, expiration).Err()
}

func (s *Store) Generation(ctx context.Context, scope string) (uint64, error) {
	gen, err := s.client.Get(ctx, s.genKey(scope)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (s *Store) Bump(ctx context.Context, scope string) error {
	return s.client.Incr(ctx, s.genKey(scope)).Err()
}
