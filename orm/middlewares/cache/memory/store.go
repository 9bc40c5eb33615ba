package memory

import (
	"context"
	"sync"
	"time"

	"github.com/coderi421/ormkit/orm"
	"github.com/coderi421/ormkit/orm/middlewares/cache"
	gocache "github.com/patrickmn/go-cache"
)

type Store struct {
	// 保护版本号的读改写
	mutex sync.Mutex
	c     *gocache.Cache
}

// NewStore cleanupInterval 是清理过期数据的间隔
func NewStore(cleanupInterval time.Duration) *Store {
	return &Store{
		c: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

var _ cache.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (*orm.Rows, error) {
	val, ok := s.c.Get(key)
	if !ok {
		return nil, cache.ErrMiss
	}
	return cache.CloneRows(val.(*orm.Rows)), nil
}

func (s *Store) Set(ctx context.Context, key string, rows *orm.Rows, expiration time.Duration) error {
	s.c.Set(key, cache.CloneRows(rows), expiration)
	return nil
}

func (s *Store) Generation(ctx context.Context, scope string) (uint64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.generation(scope), nil
}

func (s *Store) Bump(ctx context.Context, scope string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.c.Set(genKey(scope), s.generation(scope)+1, gocache.NoExpiration)
	return nil
}

func (s *Store) generation(scope string) uint64 {
	val, ok := s.c.Get(genKey(scope))
	if !ok {
		return 0
	}
	return val.(uint64)
}

// ItemCount 包括版本号在内的条目数量
func (s *Store) ItemCount() int {
	return s.c.ItemCount()
}

func genKey(scope string) string {
	return "gen_" + scope
}
