package valuer

import (
	"strings"

	"github.com/coderi421/ormkit/orm/internal/errs"
	"github.com/coderi421/ormkit/orm/model"
)

// Value 是对结构体实例的内部抽象
type Value interface {
	// Field 返回字段的值，name 是 Go 结构体中的字段名
	Field(name string) (any, error)
	// SetColumns 把一行数据写回结构体
	// vals 是 driver.Value 能够表达的值：nil, int64, float64, bool, []byte, string, time.Time
	SetColumns(columns []string, vals []any) error
}

// Creator 本质上也可以看所是 factory 模式，极其简单的 factory 模式
type Creator func(val any, meta *model.Model) Value

// lookupColumn 先按照列名找，找不到再去掉 table__ 或者 table. 前缀
func lookupColumn(meta *model.Model, column string) (*model.Field, error) {
	if fd, ok := meta.ColumnMap[column]; ok {
		return fd, nil
	}
	if i := strings.LastIndex(column, "__"); i >= 0 {
		if fd, ok := meta.ColumnMap[column[i+2:]]; ok {
			return fd, nil
		}
	}
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		if fd, ok := meta.ColumnMap[column[i+1:]]; ok {
			return fd, nil
		}
	}
	return nil, errs.NewErrUnknownColumn(column)
}

func checkColumns(meta *model.Model, columns []string, vals []any) error {
	if len(columns) > len(meta.ColumnMap) {
		return errs.ErrTooManyReturnedColumns
	}
	if len(columns) != len(vals) {
		return errs.NewErrColumnValueMismatch(len(columns), len(vals))
	}
	return nil
}
