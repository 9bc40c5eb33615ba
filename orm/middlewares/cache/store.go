package cache

import (
	"context"
	"errors"
	"time"

	"github.com/coderi421/ormkit/orm"
)

// ErrMiss 缓存里面没有这个 key
var ErrMiss = errors.New("cache: key 不存在")

// Store 查询结果的存储
// 同时负责维护每张表的版本号，写操作之后版本号递增，旧的 key 自然失效
type Store interface {
	// Get 没有的时候返回 ErrMiss
	Get(ctx context.Context, key string) (*orm.Rows, error)
	Set(ctx context.Context, key string, rows *orm.Rows, expiration time.Duration) error
	// Generation 版本号，从来没有写过的 scope 返回 0
	Generation(ctx context.Context, scope string) (uint64, error)
	Bump(ctx context.Context, scope string) error
}
