package orm

import (
	"database/sql/driver"
	"reflect"
	"time"

	"github.com/coderi421/ormkit/orm/internal/errs"
)

// Kind 标记 Value 在存储层的类型
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindReal
	KindBool
	KindBlob
	KindTimestamp
)

var kindNames = [...]string{"NULL", "TEXT", "INTEGER", "REAL", "BOOL", "BLOB", "TIMESTAMP"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Value 是绑定参数和主键在存储层的表示，一个 tagged union
// 所有实现同时也是 driver.Valuer，可以直接交给 database/sql
type Value interface {
	driver.Valuer
	Kind() Kind
}

type (
	Null      struct{}
	Text      string
	Integer   int64
	Real      float64
	Bool      bool
	Blob      []byte
	Timestamp time.Time
)

func (Null) Kind() Kind      { return KindNull }
func (Text) Kind() Kind      { return KindText }
func (Integer) Kind() Kind   { return KindInteger }
func (Real) Kind() Kind      { return KindReal }
func (Bool) Kind() Kind      { return KindBool }
func (Blob) Kind() Kind      { return KindBlob }
func (Timestamp) Kind() Kind { return KindTimestamp }

func (Null) Value() (driver.Value, error)        { return nil, nil }
func (t Text) Value() (driver.Value, error)      { return string(t), nil }
func (i Integer) Value() (driver.Value, error)   { return int64(i), nil }
func (r Real) Value() (driver.Value, error)      { return float64(r), nil }
func (b Bool) Value() (driver.Value, error)      { return bool(b), nil }
func (b Blob) Value() (driver.Value, error)      { return []byte(b), nil }
func (t Timestamp) Value() (driver.Value, error) { return time.Time(t), nil }

// Convertible 自定义类型实现这个接口，就可以作为参数或者主键使用
type Convertible interface {
	SQLValue() (Value, error)
}

// IsNull 判断 v 是否代表 NULL
func IsNull(v Value) bool {
	return v == nil || v.Kind() == KindNull
}

// ValueOf converts a Go value into its storage representation.
// nil and nil pointers become Null.
func ValueOf(val any) (Value, error) {
	switch v := val.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case Convertible:
		return v.SQLValue()
	case string:
		return Text(v), nil
	case []byte:
		if v == nil {
			return Null{}, nil
		}
		return Blob(v), nil
	case bool:
		return Bool(v), nil
	case time.Time:
		return Timestamp(v), nil
	case int:
		return Integer(v), nil
	case int8:
		return Integer(v), nil
	case int16:
		return Integer(v), nil
	case int32:
		return Integer(v), nil
	case int64:
		return Integer(v), nil
	case float32:
		return Real(v), nil
	case float64:
		return Real(v), nil
	case driver.Valuer:
		// sql.NullString 之类的类型
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return Null{}, nil
		}
		dv, err := v.Value()
		if err != nil {
			return nil, err
		}
		return ValueOf(dv)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Null{}, nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > 1<<63-1 {
			return nil, errs.NewErrUnsupportedValueType(val)
		}
		return Integer(int64(u)), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(rv.Int()), nil
	case reflect.Float32, reflect.Float64:
		return Real(rv.Float()), nil
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	}
	return nil, errs.NewErrUnsupportedValueType(val)
}

// valuesOf 逐个转换，nil 保留为 Null，位置不变
func valuesOf(vals []any) ([]Value, error) {
	res := make([]Value, 0, len(vals))
	for _, v := range vals {
		sv, err := ValueOf(v)
		if err != nil {
			return nil, err
		}
		res = append(res, sv)
	}
	return res, nil
}

// driverValue 把 Value 转回 database/sql 认识的值
func driverValue(v Value) any {
	if v == nil {
		return nil
	}
	dv, _ := v.Value()
	return dv
}
