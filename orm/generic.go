package orm

import (
	"context"
)

// Get 按照主键读取一个实例，找不到的时候 errors.Is(err, ErrNoRows) 成立
// 模型声明了 ChangeSet 的时候，读出来的实例带上一个空的 ChangeSet
func Get[T any](ctx context.Context, db *DB, pk any, done func(*T, error)) {
	e, err := db.entityOf(new(T))
	if err != nil {
		done(nil, err)
		return
	}
	v, err := ValueOf(pk)
	if err != nil {
		done(nil, err)
		return
	}
	db.fetch(ctx, e, v, func(row Row, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		fresh, err := e.decode(db, row, e.trackable())
		if err != nil {
			done(nil, err)
			return
		}
		done(fresh.Interface().(*T), nil)
	})
}

// FindAll 执行 s 并且把每一行转换成 T
// s 为 nil 的时候读取整张表
func FindAll[T any](ctx context.Context, db *DB, s *Select, done func([]*T, error)) {
	e, err := db.entityOf(new(T))
	if err != nil {
		done(nil, err)
		return
	}
	if s == nil {
		s = NewSelect(e.table()).Columns(e.columns()...)
	}
	db.Find(ctx, s, func(rows *Rows, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		res := make([]*T, 0, rows.Len())
		for _, row := range rows.All() {
			fresh, err := e.decode(db, row, e.trackable())
			if err != nil {
				done(nil, err)
				return
			}
			res = append(res, fresh.Interface().(*T))
		}
		done(res, nil)
	})
}
