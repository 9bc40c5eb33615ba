package valuer

import (
	"database/sql"
	"reflect"
	"strconv"
	"time"

	"github.com/coderi421/ormkit/orm/internal/errs"
)

var timeType = reflect.TypeOf(time.Time{})

// assign 把 driver 层的值 src 写到 dst 里面
// dst 必须是可以 Set 的
func assign(dst reflect.Value, src any) error {
	if dst.CanAddr() {
		if sc, ok := dst.Addr().Interface().(sql.Scanner); ok {
			return sc.Scan(src)
		}
	}
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	switch s := src.(type) {
	case []byte:
		if dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes(append([]byte(nil), s...))
			return nil
		}
		return assignString(dst, string(s))
	case string:
		return assignString(dst, s)
	case int64:
		if dst.Kind() == reflect.Bool {
			// SQLite 没有布尔类型
			dst.SetBool(s != 0)
			return nil
		}
	case bool:
		if isInt(dst.Kind()) {
			var i int64
			if s {
				i = 1
			}
			dst.SetInt(i)
			return nil
		}
	}

	if isNumber(sv.Kind()) && isNumber(dst.Kind()) {
		return setNumber(dst, sv)
	}
	if sv.Type().ConvertibleTo(dst.Type()) && sv.Kind() == dst.Kind() {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return errs.NewErrUnsupportedAssignType(dst.Type().String(), sv.Kind().String())
}

// assignString MySQL 的文本协议下面，数字也是以 []byte 的形式返回的
func assignString(dst reflect.Value, s string) error {
	switch {
	case dst.Kind() == reflect.String:
		dst.SetString(s)
	case dst.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case isInt(dst.Kind()):
		i, err := strconv.ParseInt(s, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(i)
	case isUint(dst.Kind()):
		u, err := strconv.ParseUint(s, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetUint(u)
	case isFloat(dst.Kind()):
		f, err := strconv.ParseFloat(s, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	case dst.Type() == timeType:
		t, err := parseTime(s)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
	default:
		return errs.NewErrUnsupportedAssignType(dst.Type().String(), reflect.String.String())
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func setNumber(dst, src reflect.Value) error {
	switch {
	case isInt(dst.Kind()):
		var i int64
		switch {
		case isInt(src.Kind()):
			i = src.Int()
		case isUint(src.Kind()):
			i = int64(src.Uint())
		default:
			i = int64(src.Float())
		}
		if dst.OverflowInt(i) {
			return errs.NewErrUnsupportedAssignType(dst.Type().String(), src.Kind().String())
		}
		dst.SetInt(i)
	case isUint(dst.Kind()):
		var u uint64
		switch {
		case isInt(src.Kind()):
			if src.Int() < 0 {
				return errs.NewErrUnsupportedAssignType(dst.Type().String(), src.Kind().String())
			}
			u = uint64(src.Int())
		case isUint(src.Kind()):
			u = src.Uint()
		default:
			u = uint64(src.Float())
		}
		if dst.OverflowUint(u) {
			return errs.NewErrUnsupportedAssignType(dst.Type().String(), src.Kind().String())
		}
		dst.SetUint(u)
	default:
		var f float64
		switch {
		case isInt(src.Kind()):
			f = float64(src.Int())
		case isUint(src.Kind()):
			f = float64(src.Uint())
		default:
			f = src.Float()
		}
		dst.SetFloat(f)
	}
	return nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumber(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}
