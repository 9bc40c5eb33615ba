package valuer

import (
	"reflect"
	"unsafe"

	"github.com/coderi421/ormkit/orm/internal/errs"
	"github.com/coderi421/ormkit/orm/model"
)

type unsafeValue struct {
	addr unsafe.Pointer // 使用 unsafe Pointer 而不是 uintptr 是因为 gc 后 uintptr 会发生变化
	meta *model.Model
}

var _ Creator = NewUnsafeValue

// NewUnsafeValue 通过字段偏移量直接读写内存，省掉了 FieldByIndex 的开销
func NewUnsafeValue(val any, meta *model.Model) Value {
	return unsafeValue{
		addr: reflect.ValueOf(val).UnsafePointer(),
		meta: meta,
	}
}

// fieldAt 字段的地址 = 结构体起始地址 + 偏移量
func (u unsafeValue) fieldAt(fd *model.Field) reflect.Value {
	ptr := unsafe.Add(u.addr, fd.Offset)
	return reflect.NewAt(fd.Type, ptr).Elem()
}

func (u unsafeValue) Field(name string) (any, error) {
	fd, ok := u.meta.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	return u.fieldAt(fd).Interface(), nil
}

func (u unsafeValue) SetColumns(columns []string, vals []any) error {
	if err := checkColumns(u.meta, columns, vals); err != nil {
		return err
	}
	for i, c := range columns {
		fd, err := lookupColumn(u.meta, c)
		if err != nil {
			return err
		}
		if err = assign(u.fieldAt(fd), vals[i]); err != nil {
			return err
		}
	}
	return nil
}
