package valuer

import (
	"database/sql"
	"testing"
	"time"

	"github.com/coderi421/ormkit/orm/internal/errs"
	"github.com/coderi421/ormkit/orm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type SimpleStruct struct {
	Id         uint64
	Bool       bool
	BoolPtr    *bool
	Int        int
	IntPtr     *int
	Int8       int8
	Uint16     uint16
	Float32    float32
	Float64Ptr *float64
	ByteArray  []byte
	String     string
	Created    time.Time

	NullStringPtr *sql.NullString
	NullInt64     sql.NullInt64
}

func testCreators() map[string]Creator {
	return map[string]Creator{
		"reflect": NewReflectValue,
		"unsafe":  NewUnsafeValue,
	}
}

func TestValue_SetColumns(t *testing.T) {
	created := time.Date(2023, 7, 1, 12, 30, 0, 0, time.UTC)
	testCases := []struct {
		name    string
		columns []string
		vals    []any
		wantVal *SimpleStruct
		wantErr error
	}{
		{
			// 驱动返回的原生类型
			name: "driver values",
			columns: []string{"id", "bool", "bool_ptr", "int", "int_ptr", "int8", "uint16",
				"float32", "float64_ptr", "byte_array", "string", "created", "null_string_ptr", "null_int64"},
			vals: []any{int64(1), true, false, int64(12), int64(13), int64(-8), int64(16),
				float64(3.5), float64(-6.4), []byte("hello"), "world", created, "null string", int64(64)},
			wantVal: &SimpleStruct{
				Id:            1,
				Bool:          true,
				BoolPtr:       ptr(false),
				Int:           12,
				IntPtr:        ptr(13),
				Int8:          -8,
				Uint16:        16,
				Float32:       3.5,
				Float64Ptr:    ptr(-6.4),
				ByteArray:     []byte("hello"),
				String:        "world",
				Created:       created,
				NullStringPtr: &sql.NullString{String: "null string", Valid: true},
				NullInt64:     sql.NullInt64{Int64: 64, Valid: true},
			},
		},
		{
			// MySQL 文本协议
			name:    "bytes",
			columns: []string{"id", "bool", "int_ptr", "float32", "string", "created"},
			vals: []any{[]byte("1"), []byte("true"), []byte("13"), []byte("3.5"),
				[]byte("world"), []byte("2023-07-01 12:30:00")},
			wantVal: &SimpleStruct{
				Id:      1,
				Bool:    true,
				IntPtr:  ptr(13),
				Float32: 3.5,
				String:  "world",
				Created: created,
			},
		},
		{
			// SQLite 用整数表达布尔
			name:    "int as bool",
			columns: []string{"bool", "bool_ptr"},
			vals:    []any{int64(1), int64(0)},
			wantVal: &SimpleStruct{Bool: true, BoolPtr: ptr(false)},
		},
		{
			name:    "null",
			columns: []string{"int_ptr", "null_string_ptr", "null_int64", "string"},
			vals:    []any{nil, nil, nil, nil},
			wantVal: &SimpleStruct{},
		},
		{
			name:    "qualified column",
			columns: []string{"simple_struct__id", "simple_struct.string"},
			vals:    []any{int64(3), "abc"},
			wantVal: &SimpleStruct{Id: 3, String: "abc"},
		},
		{
			name:    "unknown column",
			columns: []string{"id", "nope"},
			vals:    []any{int64(1), "x"},
			wantErr: errs.NewErrUnknownColumn("nope"),
		},
		{
			name:    "column value mismatch",
			columns: []string{"id", "string"},
			vals:    []any{int64(1)},
			wantErr: errs.NewErrColumnValueMismatch(2, 1),
		},
		{
			name:    "negative into unsigned",
			columns: []string{"id"},
			vals:    []any{int64(-1)},
			wantErr: errs.NewErrUnsupportedAssignType("uint64", "int64"),
		},
		{
			name:    "overflow",
			columns: []string{"int8"},
			vals:    []any{int64(1000)},
			wantErr: errs.NewErrUnsupportedAssignType("int8", "int64"),
		},
	}

	r := model.NewRegistry()
	meta, err := r.Get(&SimpleStruct{})
	require.NoError(t, err)

	for name, creator := range testCreators() {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				val := &SimpleStruct{}
				err := creator(val, meta).SetColumns(tc.columns, tc.vals)
				assert.Equal(t, tc.wantErr, err)
				if err != nil {
					return
				}
				assert.Equal(t, tc.wantVal, val)
			})
		}
	}
}

func TestValue_TooManyColumns(t *testing.T) {
	type Small struct {
		Id int64
	}
	meta, err := model.NewRegistry().Get(&Small{})
	require.NoError(t, err)
	for name, creator := range testCreators() {
		t.Run(name, func(t *testing.T) {
			err := creator(&Small{}, meta).SetColumns([]string{"id", "name"}, []any{int64(1), "a"})
			assert.Equal(t, errs.ErrTooManyReturnedColumns, err)
		})
	}
}

func TestValue_Field(t *testing.T) {
	meta, err := model.NewRegistry().Get(&SimpleStruct{})
	require.NoError(t, err)
	entity := &SimpleStruct{Id: 7, String: "abc", IntPtr: ptr(3)}

	for name, creator := range testCreators() {
		t.Run(name, func(t *testing.T) {
			v := creator(entity, meta)

			id, err := v.Field("Id")
			require.NoError(t, err)
			assert.Equal(t, uint64(7), id)

			s, err := v.Field("String")
			require.NoError(t, err)
			assert.Equal(t, "abc", s)

			p, err := v.Field("IntPtr")
			require.NoError(t, err)
			assert.Equal(t, ptr(3), p)

			_, err = v.Field("Nope")
			assert.Equal(t, errs.NewErrUnknownField("Nope"), err)
		})
	}
}

func ptr[T any](val T) *T {
	return &val
}
