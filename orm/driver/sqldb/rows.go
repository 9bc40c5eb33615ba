package sqldb

import (
	"database/sql"
	"strings"

	"github.com/coderi421/ormkit/orm"
)

// scanRows 把结果全部读到内存中，然后关闭 rows
func scanRows(rows *sql.Rows) (*orm.Rows, error) {
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	res := &orm.Rows{Columns: cols}
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		vals := make([]orm.Value, len(cols))
		for i, cell := range cells {
			if vals[i], err = valueOf(cell, types[i]); err != nil {
				return nil, err
			}
		}
		res.Values = append(res.Values, vals)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// valueOf MySQL 的文本协议里面字符串也是 []byte，根据列类型区分开
func valueOf(cell any, typ *sql.ColumnType) (orm.Value, error) {
	if b, ok := cell.([]byte); ok && typ != nil && !isBinary(typ.DatabaseTypeName()) {
		return orm.Text(b), nil
	}
	return orm.ValueOf(cell)
}

func isBinary(typeName string) bool {
	name := strings.ToUpper(typeName)
	return name == "" || strings.Contains(name, "BLOB") ||
		strings.Contains(name, "BINARY") || name == "BYTEA"
}
