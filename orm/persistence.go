package orm

import (
	"context"
	"fmt"

	"github.com/coderi421/ormkit/orm/async"
	"github.com/coderi421/ormkit/orm/internal/errs"
)

// Create 插入一个还没有持久化的实例
// 顺序：validate, willSave, willCreate, INSERT, 重新读取并替换实例, didCreate, didSave
// 任何一步失败，后面的步骤都不会执行
func (db *DB) Create(ctx context.Context, ptr any, done async.Callback) {
	e, err := db.entityOf(ptr)
	if err != nil {
		done(err)
		return
	}
	if e.persisted() {
		done(errs.ErrAlreadyPersisted)
		return
	}

	var pk Value
	async.Series([]async.Task{
		validate(ctx, ptr),
		hook(ptr, func(h WillSaveHook) { h.WillSave(ctx) }),
		hook(ptr, func(h WillCreateHook) { h.WillCreate(ctx) }),
		func(next async.Callback) {
			// 钩子可能修改了字段，所以到这里才读取
			as, err := e.assignments(e.persistedFields())
			if err != nil {
				next(err)
				return
			}
			q, err := NewInsert(e.table()).Values(as...).Build()
			if err != nil {
				next(err)
				return
			}
			pkf := e.pkField()
			db.run(ctx, &QueryContext{
				Type:       TypeInsert,
				Table:      e.table(),
				Query:      q,
				PrimaryKey: &pkf,
				Model:      e.meta,
			}, func(res *QueryResult) {
				if res.Err == nil {
					pk, _ = res.Result.(Value)
				}
				next(res.Err)
			})
		},
		func(next async.Callback) {
			db.fetchAndReplace(ctx, e, pk, next)
		},
		hook(ptr, func(h DidCreateHook) { h.DidCreate(ctx) }),
		hook(ptr, func(h DidSaveHook) { h.DidSave(ctx) }),
	}, done)
}

// Update 更新一个已经持久化的实例
// ChangeSet 不为 nil 的实例只写入 ChangeSet 里的字段，否则写入除主键以外全部的字段
// 顺序：validate, willSave, willUpdate, UPDATE, willRefresh, 重新读取并替换实例, didRefresh, didUpdate, didSave
func (db *DB) Update(ctx context.Context, ptr any, done async.Callback) {
	e, err := db.entityOf(ptr)
	if err != nil {
		done(err)
		return
	}
	if !e.persisted() {
		done(errs.ErrNotPersisted)
		return
	}

	// 要写入的字段在任何钩子执行之前确定，没有字段的时候直接失败
	fs := e.persistedFields()
	if cs := e.changes(); cs != nil {
		fs = cs.Fields()
	}
	if len(fs) == 0 {
		done(errs.ErrNothingToSave)
		return
	}

	var pk Value
	async.Series([]async.Task{
		validate(ctx, ptr),
		hook(ptr, func(h WillSaveHook) { h.WillSave(ctx) }),
		hook(ptr, func(h WillUpdateHook) { h.WillUpdate(ctx) }),
		func(next async.Callback) {
			as, err := e.assignments(fs)
			if err != nil {
				next(err)
				return
			}
			pk, err = e.primaryKey()
			if err != nil {
				next(err)
				return
			}
			q, err := NewUpdate(e.table()).Set(as...).Where(e.pkField().EQ(pk)).Build()
			if err != nil {
				next(err)
				return
			}
			db.run(ctx, &QueryContext{
				Type:  TypeUpdate,
				Table: e.table(),
				Query: q,
				Model: e.meta,
			}, func(res *QueryResult) {
				next(res.Err)
			})
		},
		func(next async.Callback) {
			db.refresh(ctx, e, func() Value { return pk }, next)
		},
		hook(ptr, func(h DidUpdateHook) { h.DidUpdate(ctx) }),
		hook(ptr, func(h DidSaveHook) { h.DidSave(ctx) }),
	}, done)
}

// Delete 删除一个已经持久化的实例，内存中的实例保持不变
func (db *DB) Delete(ctx context.Context, ptr any, done async.Callback) {
	e, err := db.entityOf(ptr)
	if err != nil {
		done(err)
		return
	}
	if !e.persisted() {
		done(errs.ErrNotPersisted)
		return
	}

	async.Series([]async.Task{
		hook(ptr, func(h WillDeleteHook) { h.WillDelete(ctx) }),
		func(next async.Callback) {
			pk, err := e.primaryKey()
			if err != nil {
				next(err)
				return
			}
			q, err := NewDelete(e.table()).Where(e.pkField().EQ(pk)).Build()
			if err != nil {
				next(err)
				return
			}
			db.run(ctx, &QueryContext{
				Type:  TypeDelete,
				Table: e.table(),
				Query: q,
				Model: e.meta,
			}, func(res *QueryResult) {
				next(res.Err)
			})
		},
		hook(ptr, func(h DidDeleteHook) { h.DidDelete(ctx) }),
	}, done)
}

// Refresh 用存储中的数据替换实例
func (db *DB) Refresh(ctx context.Context, ptr any, done async.Callback) {
	e, err := db.entityOf(ptr)
	if err != nil {
		done(err)
		return
	}
	if !e.persisted() {
		done(errs.ErrNotPersisted)
		return
	}
	pk, err := e.primaryKey()
	if err != nil {
		done(err)
		return
	}
	db.refresh(ctx, e, func() Value { return pk }, done)
}

// Save 根据实例是否持久化选择 Create 或者 Update
func (db *DB) Save(ctx context.Context, ptr any, done async.Callback) {
	e, err := db.entityOf(ptr)
	if err != nil {
		done(err)
		return
	}
	if e.persisted() {
		db.Update(ctx, ptr, done)
		return
	}
	db.Create(ctx, ptr, func(err error) {
		if err == nil && !e.persisted() {
			// 驱动返回了主键，读回来的实例却没有主键，只能是驱动的实现有问题
			panic(fmt.Sprintf("orm: %s 创建成功之后实例依旧没有主键", e.table()))
		}
		done(err)
	})
}

// SetNeedsSave 把字段标记为需要保存
// 实例的 ChangeSet 为 nil（或者模型没有声明 ChangeSet）的时候返回 ErrChangeTrackingDisabled
func (db *DB) SetNeedsSave(ptr any, fields ...Field) error {
	e, err := db.entityOf(ptr)
	if err != nil {
		return err
	}
	cs := e.changes()
	if cs == nil {
		return errs.ErrChangeTrackingDisabled
	}
	for _, f := range fields {
		fd, err := e.field(f)
		if err != nil {
			return err
		}
		cs.Add(C(fd.ColName))
	}
	return nil
}

// refresh willRefresh, 重新读取并替换实例, didRefresh
// pk 在执行的时候才求值，因为前面的步骤可能才刚刚拿到主键
func (db *DB) refresh(ctx context.Context, e *entity, pk func() Value, done async.Callback) {
	async.Series([]async.Task{
		hook(e.ptr, func(h WillRefreshHook) { h.WillRefresh(ctx) }),
		func(next async.Callback) {
			db.fetchAndReplace(ctx, e, pk(), next)
		},
		hook(e.ptr, func(h DidRefreshHook) { h.DidRefresh(ctx) }),
	}, done)
}

func (db *DB) fetchAndReplace(ctx context.Context, e *entity, pk Value, done async.Callback) {
	db.fetch(ctx, e, pk, func(row Row, err error) {
		if err != nil {
			done(err)
			return
		}
		done(e.replace(db, row))
	})
}

// fetch 按照主键读取一行，找不到的时候返回 *errs.RowNotFoundError
func (db *DB) fetch(ctx context.Context, e *entity, pk Value, done func(Row, error)) {
	if pk == nil {
		pk = Null{}
	}
	q, err := NewSelect(e.table()).
		Columns(e.columns()...).
		Where(e.pkField().EQ(pk)).
		Limit(1).
		Build()
	if err != nil {
		done(Row{}, err)
		return
	}
	db.run(ctx, &QueryContext{
		Type:  TypeSelect,
		Table: e.table(),
		Query: q,
		Model: e.meta,
	}, func(res *QueryResult) {
		if res.Err != nil {
			done(Row{}, res.Err)
			return
		}
		row, ok := res.Rows().First()
		if !ok {
			done(Row{}, errs.NewErrRowNotFound(e.table(), driverValue(pk)))
			return
		}
		done(row, nil)
	})
}
