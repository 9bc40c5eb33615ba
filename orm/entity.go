package orm

import (
	"reflect"

	"github.com/coderi421/ormkit/orm/internal/errs"
	"github.com/coderi421/ormkit/orm/internal/valuer"
	"github.com/coderi421/ormkit/orm/model"
)

// entity 把用户的结构体实例和它的元数据绑在一起
// 持久化过程中读取字段、判断状态、替换实例都通过它
type entity struct {
	ptr  any
	val  reflect.Value
	meta *model.Model
	vals valuer.Value
}

func (db *DB) entityOf(ptr any) (*entity, error) {
	meta, err := db.r.Get(ptr)
	if err != nil {
		return nil, err
	}
	if meta.PrimaryKey == nil {
		return nil, errs.ErrNoPrimaryKey
	}
	return &entity{
		ptr:  ptr,
		val:  reflect.ValueOf(ptr).Elem(),
		meta: meta,
		vals: db.valCreator(ptr, meta),
	}, nil
}

func (e *entity) table() string {
	return e.meta.TableName
}

func (e *entity) pkField() Field {
	return C(e.meta.PrimaryKey.ColName)
}

// persisted 主键不是零值就认为已经持久化
func (e *entity) persisted() bool {
	return !e.val.Field(e.meta.PrimaryKey.Index).IsZero()
}

func (e *entity) primaryKey() (Value, error) {
	return e.value(e.meta.PrimaryKey)
}

func (e *entity) value(fd *model.Field) (Value, error) {
	v, err := e.vals.Field(fd.GoName)
	if err != nil {
		return nil, err
	}
	return ValueOf(v)
}

// columns 全部的列，主键也在里面
func (e *entity) columns() Fields {
	return columnsOf(e.meta.Columns())
}

// persistedFields create 和没有脏字段追踪的 update 写入的字段
func (e *entity) persistedFields() Fields {
	return columnsOf(e.meta.NonPrimaryKeyColumns())
}

func columnsOf(fds []*model.Field) Fields {
	res := make(Fields, 0, len(fds))
	for _, fd := range fds {
		res = append(res, C(fd.ColName))
	}
	return res
}

// field 校验 f 是模型的一个列
func (e *entity) field(f Field) (*model.Field, error) {
	if f.Table() != "" && f.Table() != e.table() {
		return nil, errs.NewErrUnknownField(f.QualifiedName())
	}
	fd, ok := e.meta.ColumnMap[f.Name()]
	if !ok {
		return nil, errs.NewErrUnknownField(f.QualifiedName())
	}
	return fd, nil
}

func (e *entity) assignments(fs Fields) (Assignments, error) {
	res := make(Assignments, 0, len(fs))
	for _, f := range fs {
		fd, err := e.field(f)
		if err != nil {
			return nil, err
		}
		v, err := e.value(fd)
		if err != nil {
			return nil, err
		}
		res = append(res, Assign(C(fd.ColName), v))
	}
	return res, nil
}

// changes 实例自己的 ChangeSet，没有的时候返回 nil
func (e *entity) changes() *ChangeSet {
	if e.meta.Tracker == nil {
		return nil
	}
	cs, _ := e.val.Field(e.meta.Tracker.Index).Interface().(*ChangeSet)
	return cs
}

// tracked 追踪与否由实例决定：ChangeSet 为 nil 意味着不知道哪些字段变了
func (e *entity) tracked() bool {
	return e.changes() != nil
}

// trackable 模型声明了 ChangeSet 字段
func (e *entity) trackable() bool {
	return e.meta.Tracker != nil
}

// decode 用 row 构造一个新的实例
// track 为 true 的时候，新实例带上一个空的 ChangeSet
func (e *entity) decode(db *DB, row Row, track bool) (reflect.Value, error) {
	fresh := reflect.New(e.val.Type())
	if dec, ok := fresh.Interface().(RowDecoder); ok {
		if err := dec.DecodeRow(row); err != nil {
			return reflect.Value{}, err
		}
	} else if err := db.valCreator(fresh.Interface(), e.meta).
		SetColumns(row.Columns(), row.driverValues()); err != nil {
		return reflect.Value{}, err
	}
	if track && e.trackable() {
		fresh.Elem().Field(e.meta.Tracker.Index).Set(reflect.ValueOf(NewChangeSet()))
	}
	return fresh, nil
}

// replace 整个替换掉调用者持有的实例，替换之后调用者看到的就是存储中的数据
// 原本追踪的实例替换之后依旧追踪，ChangeSet 是空的
func (e *entity) replace(db *DB, row Row) error {
	fresh, err := e.decode(db, row, e.tracked())
	if err != nil {
		return err
	}
	e.val.Set(fresh.Elem())
	return nil
}
