package valuer

import (
	"reflect"

	"github.com/coderi421/ormkit/orm/internal/errs"
	"github.com/coderi421/ormkit/orm/model"
)

// reflectValue 基于反射的 Value
type reflectValue struct {
	val  reflect.Value
	meta *model.Model
}

var _ Creator = NewReflectValue

// NewReflectValue 返回一个封装好的，基于反射实现的 Value
// 输入 val 必须是一个指向结构体实例的指针，而不能是任何其它类型
func NewReflectValue(val any, meta *model.Model) Value {
	return reflectValue{
		val:  reflect.ValueOf(val).Elem(),
		meta: meta,
	}
}

func (r reflectValue) Field(name string) (any, error) {
	fd, ok := r.meta.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	return r.val.Field(fd.Index).Interface(), nil
}

// SetColumns 将数据库中的数据设置到对应的 struct 上
func (r reflectValue) SetColumns(columns []string, vals []any) error {
	if err := checkColumns(r.meta, columns, vals); err != nil {
		return err
	}
	for i, c := range columns {
		// 找到 db column name 对应的映射信息
		fd, err := lookupColumn(r.meta, c)
		if err != nil {
			return err
		}
		if err = assign(r.val.Field(fd.Index), vals[i]); err != nil {
			return err
		}
	}
	return nil
}
