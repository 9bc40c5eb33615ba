package orm

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/coderi421/ormkit/orm/async"
	"github.com/coderi421/ormkit/orm/internal/errs"
	"github.com/google/uuid"
)

// Transaction 开启事务，执行 block
// block 成功就提交；block 失败或者提交失败就回滚
// 回滚本身失败的时候，done 收到的是回滚的错误，否则是原本的错误
func Transaction(ctx context.Context, conn Connection, block async.Task, done async.Callback) {
	rollback := func(cause error) {
		Rollback(ctx, conn, func(err error) {
			if err != nil {
				done(err)
				return
			}
			done(cause)
		})
	}

	Begin(ctx, conn, func(err error) {
		if err != nil {
			done(err)
			return
		}
		block(func(err error) {
			if err != nil {
				rollback(err)
				return
			}
			Commit(ctx, conn, func(err error) {
				if err != nil {
					rollback(err)
					return
				}
				done(nil)
			})
		})
	})
}

var savePointNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidSavePointName savepoint 的名字会直接拼接到 SQL 中，所以只允许标识符
func ValidSavePointName(name string) error {
	if len(name) > 63 || !savePointNameRe.MatchString(name) {
		return errs.NewErrInvalidSavePointName(name)
	}
	return nil
}

// NewSavePointName 生成一个不会重复的 savepoint 名字
func NewSavePointName() string {
	return "sp_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WithSavePoint 在 savepoint 中同步执行 fn
// fn 失败的时候回滚到 savepoint，释放它，然后返回 fn 的错误
func WithSavePoint(ctx context.Context, conn Connection, name string, fn func() error) error {
	if err := ValidSavePointName(name); err != nil {
		return err
	}
	if err := conn.CreateSavePoint(ctx, name); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return rollbackSavePoint(ctx, conn, name, err)
	}
	return conn.ReleaseSavePoint(ctx, name)
}

// WithSavePointTask 和 WithSavePoint 一样，只是 block 是异步的
func WithSavePointTask(ctx context.Context, conn Connection, name string, block async.Task, done async.Callback) {
	if err := ValidSavePointName(name); err != nil {
		done(err)
		return
	}
	if err := conn.CreateSavePoint(ctx, name); err != nil {
		done(err)
		return
	}
	block(func(err error) {
		if err != nil {
			done(rollbackSavePoint(ctx, conn, name, err))
			return
		}
		done(conn.ReleaseSavePoint(ctx, name))
	})
}

func rollbackSavePoint(ctx context.Context, conn Connection, name string, cause error) error {
	rbErr := conn.RollbackToSavePoint(ctx, name)
	relErr := conn.ReleaseSavePoint(ctx, name)
	if rbErr == nil && relErr == nil {
		return cause
	}
	return errors.Join(cause, rbErr, relErr)
}
