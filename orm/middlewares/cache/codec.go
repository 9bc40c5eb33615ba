package cache

import (
	"fmt"
	"time"

	"github.com/coderi421/ormkit/orm"
	"github.com/vmihailenco/msgpack/v5"
)

// cell 一个 orm.Value 的编码形式，Bool 放在 Int 里面
type cell struct {
	Kind  orm.Kind   `msgpack:"k"`
	Str   string     `msgpack:"s,omitempty"`
	Int   int64      `msgpack:"i,omitempty"`
	Real  float64    `msgpack:"r,omitempty"`
	Bytes []byte     `msgpack:"b,omitempty"`
	Time  *time.Time `msgpack:"t,omitempty"`
}

type rowsData struct {
	Columns      []string `msgpack:"c"`
	Values       [][]cell `msgpack:"v"`
	RowsAffected int64    `msgpack:"n,omitempty"`
}

func cellOf(v orm.Value) (cell, error) {
	switch val := v.(type) {
	case nil, orm.Null:
		return cell{Kind: orm.KindNull}, nil
	case orm.Text:
		return cell{Kind: orm.KindText, Str: string(val)}, nil
	case orm.Integer:
		return cell{Kind: orm.KindInteger, Int: int64(val)}, nil
	case orm.Real:
		return cell{Kind: orm.KindReal, Real: float64(val)}, nil
	case orm.Bool:
		c := cell{Kind: orm.KindBool}
		if val {
			c.Int = 1
		}
		return c, nil
	case orm.Blob:
		return cell{Kind: orm.KindBlob, Bytes: []byte(val)}, nil
	case orm.Timestamp:
		t := time.Time(val)
		return cell{Kind: orm.KindTimestamp, Time: &t}, nil
	default:
		return cell{}, fmt.Errorf("cache: 不支持的值类型 %T", v)
	}
}

func (c cell) value() (orm.Value, error) {
	switch c.Kind {
	case orm.KindNull:
		return orm.Null{}, nil
	case orm.KindText:
		return orm.Text(c.Str), nil
	case orm.KindInteger:
		return orm.Integer(c.Int), nil
	case orm.KindReal:
		return orm.Real(c.Real), nil
	case orm.KindBool:
		return orm.Bool(c.Int != 0), nil
	case orm.KindBlob:
		if c.Bytes == nil {
			return orm.Blob{}, nil
		}
		return orm.Blob(c.Bytes), nil
	case orm.KindTimestamp:
		if c.Time == nil {
			return orm.Timestamp{}, nil
		}
		return orm.Timestamp(*c.Time), nil
	default:
		return nil, fmt.Errorf("cache: 未知的值类型 %d", c.Kind)
	}
}

func cellsOf(vals []orm.Value) ([]cell, error) {
	res := make([]cell, len(vals))
	for i, v := range vals {
		c, err := cellOf(v)
		if err != nil {
			return nil, err
		}
		res[i] = c
	}
	return res, nil
}

// EncodeRows 用 msgpack 编码，保留每个值的类型
func EncodeRows(rows *orm.Rows) ([]byte, error) {
	data := rowsData{
		Columns:      rows.Columns,
		Values:       make([][]cell, len(rows.Values)),
		RowsAffected: rows.RowsAffected,
	}
	for i, vals := range rows.Values {
		cs, err := cellsOf(vals)
		if err != nil {
			return nil, err
		}
		data.Values[i] = cs
	}
	return msgpack.Marshal(data)
}

func DecodeRows(b []byte) (*orm.Rows, error) {
	var data rowsData
	if err := msgpack.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	rows := &orm.Rows{
		Columns:      data.Columns,
		Values:       make([][]orm.Value, len(data.Values)),
		RowsAffected: data.RowsAffected,
	}
	for i, cs := range data.Values {
		vals := make([]orm.Value, len(cs))
		for j, c := range cs {
			v, err := c.value()
			if err != nil {
				return nil, err
			}
			vals[j] = v
		}
		rows.Values[i] = vals
	}
	return rows, nil
}

// CloneRows 复制一份，缓存里面的数据不能被调用者修改
func CloneRows(rows *orm.Rows) *orm.Rows {
	res := &orm.Rows{
		Columns:      append([]string(nil), rows.Columns...),
		Values:       make([][]orm.Value, len(rows.Values)),
		RowsAffected: rows.RowsAffected,
	}
	for i, vals := range rows.Values {
		res.Values[i] = append([]orm.Value(nil), vals...)
	}
	return res
}
