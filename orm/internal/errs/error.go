package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrPointerOnly 只支持一级指针作为输入
	// 看到这个 error 说明你输入了其它的东西
	// 我们并不希望用户能够直接使用 err == ErrPointerOnly
	// 所以放在我们的 internal 包里
	ErrPointerOnly = errors.New("orm: 只支持指向结构体的一级指针")

	// ErrNoRows 代表没有找到数据
	ErrNoRows = errors.New("orm: 未找到数据")

	ErrTooManyReturnedColumns = errors.New("orm: 过多列")
	ErrNoUpdatedColumns       = errors.New("orm: 未指定更新的列")
	ErrNoPrimaryKey           = errors.New("orm: 模型没有主键")

	// ErrAlreadyPersisted create 作用在已经持久化（有主键）的实例上
	ErrAlreadyPersisted = errors.New("orm: 实例已经持久化")
	// ErrNotPersisted update/delete/refresh 作用在没有主键的实例上
	ErrNotPersisted = errors.New("orm: 实例尚未持久化")
	// ErrNothingToSave update 没有任何需要写入的字段
	ErrNothingToSave = errors.New("orm: 没有需要保存的字段")
	// ErrChangeTrackingDisabled 实例没有配置 ChangeSet
	ErrChangeTrackingDisabled = errors.New("orm: 实例未开启脏字段追踪")

	ErrConnClosed = errors.New("orm: 连接已关闭")
)

// NewErrUnknownField 返回代表未知字段的错误
// 一般意味着你可能输入的是列名，或者输入了错误的字段名
func NewErrUnknownField(name string) error {
	return fmt.Errorf("orm: 未知字段 %s", name)
}

// NewErrUnknownColumn 返回代表未知列的错误
// 一般意味着你使用了错误的列名
// 注意和 NewErrUnknownField 区别
func NewErrUnknownColumn(name string) error {
	return fmt.Errorf("orm: 未知列 %s", name)
}

// NewErrUnsupportedExpressionType 返回一个不支持该 expression 错误信息
func NewErrUnsupportedExpressionType(exp any) error {
	return fmt.Errorf("orm: 不支持的表达式 %v", exp)
}

func NewErrUnsupportedValueType(val any) error {
	return fmt.Errorf("orm: 不支持的值类型 %T", val)
}

func NewErrInvalidTagContent(tag string) error {
	return fmt.Errorf("orm: 错误的标签设置: %s", tag)
}

func NewErrUnsupportedAssignType(typ any, kind string) error {
	return fmt.Errorf("orm: 无法将 %s 赋值给类型 %v", kind, typ)
}

func NewErrInvalidSavePointName(name string) error {
	return fmt.Errorf("orm: 非法的 savepoint 名字 %q", name)
}

// NewErrPlaceholderMismatch 占位符数量和参数数量不一致
func NewErrPlaceholderMismatch(placeholders, args int) error {
	return fmt.Errorf("orm: 占位符数量 %d 与参数数量 %d 不一致", placeholders, args)
}

// RowNotFoundError 写入之后再读取（或者 refresh）找不到对应的行
// 说明存储的数据和内存中的实例已经不一致
type RowNotFoundError struct {
	Table      string
	PrimaryKey any
}

func NewErrRowNotFound(table string, pk any) *RowNotFoundError {
	return &RowNotFoundError{Table: table, PrimaryKey: pk}
}

func (e *RowNotFoundError) Error() string {
	return fmt.Sprintf("orm: 表 %s 中找不到主键为 %v 的数据", e.Table, e.PrimaryKey)
}

// Is 让 errors.Is(err, ErrNoRows) 成立
func (e *RowNotFoundError) Is(target error) bool {
	return target == ErrNoRows
}

// NewErrColumnValueMismatch 列的数量和值的数量不一致，一般是驱动的实现有问题
func NewErrColumnValueMismatch(columns, vals int) error {
	return fmt.Errorf("orm: 列数量 %d 与值数量 %d 不一致", columns, vals)
}

// PanicError 执行语句的过程中 panic 的值和当时的调用栈
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("orm: 执行语句的时候 panic: %v", p.Value)
}

// Unwrap 当 panic 的值本身是 error 的时候可以被 errors.Is 识别
func (p *PanicError) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}
