package model

import "reflect"

// Option is a function type that modifies a Model.
type Option func(model *Model) error

// Model 结构体映射db后的结构
type Model struct {
	// TableName 结构体对应的表名
	TableName string
	// Fields 按照结构体中声明的顺序
	Fields    []*Field
	FieldMap  map[string]*Field // 结构体 属性名 attr name 为 key  ItemId
	ColumnMap map[string]*Field // DB column name 为 key    item_id
	// PrimaryKey 主键，没有声明的时候使用名字为 id 的列
	PrimaryKey *Field
	// Tracker 记录脏字段的字段，它不是列，没有的时候为 nil
	Tracker *Field
}

// Field 字段相关的属性
type Field struct {
	ColName string       // 数据库中的字段名
	GoName  string       // go struct 中的名字
	Type    reflect.Type // go 中的数据类型，转换成 reflect.Value 的时候，知道是什么类型，不然那没法转
	// Index 字段在结构体中的下标
	Index int
	// Offset 相对于对象起始地址的字段偏移量
	// uintptr 这个类型的值，只是简单记录一下位置
	Offset     uintptr
	PrimaryKey bool
}

// Columns 除了 Tracker 以外全部字段，也就是全部的列
func (m *Model) Columns() []*Field {
	return m.Fields
}

// NonPrimaryKeyColumns 除主键以外的列
func (m *Model) NonPrimaryKeyColumns() []*Field {
	res := make([]*Field, 0, len(m.Fields))
	for _, fd := range m.Fields {
		if fd.PrimaryKey {
			continue
		}
		res = append(res, fd)
	}
	return res
}

// 我们支持的全部标签上的 key 都放在这里
// 方便用户查找，和我们后期维护
const (
	tagKeyColumn     = "column"
	tagKeyPrimaryKey = "primary_key"
	tagORMName       = "orm"
	tagIgnore        = "-"

	defaultPrimaryKey = "id"
)

// TableName 用户实现这个接口来返回自定义的表名
type TableName interface {
	TableName() string
}
