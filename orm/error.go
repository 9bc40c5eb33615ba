package orm

import "github.com/coderi421/ormkit/orm/internal/errs"

// 将内部的 sentinel error 暴露出去
var (
	// ErrNoRows 代表没有找到数据
	ErrNoRows = errs.ErrNoRows

	ErrNoPrimaryKey           = errs.ErrNoPrimaryKey
	ErrAlreadyPersisted       = errs.ErrAlreadyPersisted
	ErrNotPersisted           = errs.ErrNotPersisted
	ErrNothingToSave          = errs.ErrNothingToSave
	ErrChangeTrackingDisabled = errs.ErrChangeTrackingDisabled
	ErrNoUpdatedColumns       = errs.ErrNoUpdatedColumns
	ErrConnClosed             = errs.ErrConnClosed
)

// RowNotFoundError 写入或者 refresh 之后读取不到对应的行
type RowNotFoundError = errs.RowNotFoundError

// PanicError 驱动或者中间件把语句执行过程中的 panic 转换成这个错误
type PanicError = errs.PanicError
