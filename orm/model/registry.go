package model

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/coderi421/ormkit/orm/internal/errs"
	"github.com/go-openapi/inflect"
)

type Registry interface {
	Get(val any) (*Model, error)
	Register(val any, opts ...Option) (*Model, error)
}

type RegistryOption func(r *registry)

// WithTrackerType 类型为 typ 的字段被当作脏字段记录器，不会被映射成列
func WithTrackerType(typ reflect.Type) RegistryOption {
	return func(r *registry) {
		r.trackerType = typ
	}
}

// WithTableNamer 结构体没有实现 TableName 的时候，用 namer 从结构体名字生成表名
func WithTableNamer(namer func(structName string) string) RegistryOption {
	return func(r *registry) {
		r.tableNamer = namer
	}
}

// PluralTableName User -> users, UserGroup -> user_groups
func PluralTableName(structName string) string {
	return inflect.Underscore(inflect.Pluralize(structName))
}

// 这种包变量对测试不友好，缺乏隔离
//
//	var defaultRegistry = &registry{
//		models: make(map[reflect.Type]*model, 16),
//	}
type registry struct {
	// reflect.Type 可以解决命名冲突的问题
	models      sync.Map
	trackerType reflect.Type
	tableNamer  func(structName string) string
}

func NewRegistry(opts ...RegistryOption) Registry {
	r := &registry{
		tableNamer: underscoreName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get 查找元数据模型
// 没有注册过的类型会被解析并且缓存下来
func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	m, ok := r.models.Load(typ)
	if ok {
		return m.(*Model), nil
	}
	return r.Register(val)
}

// Register 解析模型，应用 opts，然后缓存起来
func (r *registry) Register(val any, opts ...Option) (*Model, error) {
	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		err = opt(m)
		if err != nil {
			return nil, err
		}
	}

	r.models.Store(reflect.TypeOf(val), m)
	return m, nil
}

// parseModel 只支持一级指针，例如 *User，不支持 **User 和 User
// orm:"key1=value1,key2=value2"
func (r *registry) parseModel(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	typ = typ.Elem()

	numField := typ.NumField()
	m := &Model{
		Fields:    make([]*Field, 0, numField),
		FieldMap:  make(map[string]*Field, numField),
		ColumnMap: make(map[string]*Field, numField),
	}

	for i := 0; i < numField; i++ {
		fdStruct := typ.Field(i)
		if !fdStruct.IsExported() {
			continue
		}

		if r.trackerType != nil && fdStruct.Type == r.trackerType {
			m.Tracker = &Field{
				GoName: fdStruct.Name,
				Type:   fdStruct.Type,
				Index:  i,
				Offset: fdStruct.Offset,
			}
			continue
		}

		if fdStruct.Tag.Get(tagORMName) == tagIgnore {
			continue
		}
		tags, err := r.parseTag(fdStruct.Tag)
		if err != nil {
			return nil, err
		}

		colName := tags[tagKeyColumn]
		if colName == "" {
			// ItemId -> item_id
			colName = underscoreName(fdStruct.Name)
		}
		isPK := false
		if pk, ok := tags[tagKeyPrimaryKey]; ok {
			isPK, err = strconv.ParseBool(pk)
			if err != nil {
				return nil, errs.NewErrInvalidTagContent(tagKeyPrimaryKey + "=" + pk)
			}
		}

		f := &Field{
			ColName:    colName,
			GoName:     fdStruct.Name,
			Type:       fdStruct.Type,
			Index:      i,
			Offset:     fdStruct.Offset,
			PrimaryKey: isPK,
		}
		if isPK {
			if m.PrimaryKey != nil {
				return nil, errs.NewErrInvalidTagContent("重复的主键 " + fdStruct.Name)
			}
			m.PrimaryKey = f
		}
		m.Fields = append(m.Fields, f)
		m.FieldMap[fdStruct.Name] = f
		m.ColumnMap[colName] = f
	}

	if m.PrimaryKey == nil {
		if fd, ok := m.ColumnMap[defaultPrimaryKey]; ok {
			fd.PrimaryKey = true
			m.PrimaryKey = fd
		}
	}

	var tableName string
	if tn, ok := val.(TableName); ok {
		tableName = tn.TableName()
	}
	if tableName == "" {
		tableName = r.tableNamer(typ.Name())
	}
	m.TableName = tableName
	return m, nil
}

// parseTag 解析 orm 标签，没有标签的时候返回空 map，方便调用者不需要检测 nil
func (r *registry) parseTag(tag reflect.StructTag) (map[string]string, error) {
	ormTag := tag.Get(tagORMName)
	if ormTag == "" {
		return map[string]string{}, nil
	}

	pairs := strings.Split(ormTag, ",")
	res := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			return nil, errs.NewErrInvalidTagContent(pair)
		}
		res[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return res, nil
}

// underscoreName UserName -> user_name
func underscoreName(name string) string {
	var buf []byte
	for i, v := range name {
		if unicode.IsUpper(v) {
			if i != 0 {
				buf = append(buf, '_')
			}
			buf = append(buf, byte(unicode.ToLower(v)))
		} else {
			buf = append(buf, byte(v))
		}
	}
	return string(buf)
}

// WithTableName 修改表名
func WithTableName(tableName string) Option {
	return func(model *Model) error {
		model.TableName = tableName
		return nil
	}
}

// WithColumnName 修改某个字段对应的列名
func WithColumnName(field, columnName string) Option {
	return func(model *Model) error {
		fd, ok := model.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		delete(model.ColumnMap, fd.ColName)
		fd.ColName = columnName
		model.ColumnMap[columnName] = fd
		return nil
	}
}

// WithPrimaryKey 指定主键
func WithPrimaryKey(field string) Option {
	return func(model *Model) error {
		fd, ok := model.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		if model.PrimaryKey != nil {
			model.PrimaryKey.PrimaryKey = false
		}
		fd.PrimaryKey = true
		model.PrimaryKey = fd
		return nil
	}
}
