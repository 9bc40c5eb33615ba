package orm

import (
	"context"

	"github.com/coderi421/ormkit/orm/async"
)

// 模型可以选择性地实现下面的接口
// 没有实现的钩子等价于什么都不做

// RowDecoder 自定义从一行数据构造实例，没有实现的时候使用反射
type RowDecoder interface {
	DecodeRow(row Row) error
}

// Validator create 和 update 之前调用，返回 error 会中止整个操作
type Validator interface {
	Validate(ctx context.Context) error
}

type WillSaveHook interface {
	WillSave(ctx context.Context)
}

type DidSaveHook interface {
	DidSave(ctx context.Context)
}

type WillCreateHook interface {
	WillCreate(ctx context.Context)
}

type DidCreateHook interface {
	DidCreate(ctx context.Context)
}

type WillUpdateHook interface {
	WillUpdate(ctx context.Context)
}

type DidUpdateHook interface {
	DidUpdate(ctx context.Context)
}

type WillDeleteHook interface {
	WillDelete(ctx context.Context)
}

type DidDeleteHook interface {
	DidDelete(ctx context.Context)
}

type WillRefreshHook interface {
	WillRefresh(ctx context.Context)
}

type DidRefreshHook interface {
	DidRefresh(ctx context.Context)
}

// hook 把钩子包装成 Task，实例没有实现 H 的时候直接完成
func hook[H any](entity any, call func(h H)) async.Task {
	return func(done async.Callback) {
		if h, ok := entity.(H); ok {
			call(h)
		}
		done(nil)
	}
}

func validate(ctx context.Context, entity any) async.Task {
	return func(done async.Callback) {
		if v, ok := entity.(Validator); ok {
			done(v.Validate(ctx))
			return
		}
		done(nil)
	}
}
