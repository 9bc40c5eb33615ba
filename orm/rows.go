package orm

// Rows 一次执行的结果，已经全部读取到内存中
// 写语句只有 RowsAffected 有意义
type Rows struct {
	Columns      []string
	Values       [][]Value
	RowsAffected int64
}

func (r *Rows) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Values)
}

func (r *Rows) Row(i int) Row {
	return NewRow(r.Columns, r.Values[i])
}

// First 第一行，没有数据的时候返回 false
func (r *Rows) First() (Row, bool) {
	if r.Len() == 0 {
		return Row{}, false
	}
	return r.Row(0), true
}

func (r *Rows) All() []Row {
	res := make([]Row, 0, r.Len())
	for i := 0; i < r.Len(); i++ {
		res = append(res, r.Row(i))
	}
	return res
}

// Row 一行数据，对于调用者来说是不透明的
// 通过 RowDecoder 或者反射转换成模型
type Row struct {
	columns []string
	values  []Value
}

func NewRow(columns []string, values []Value) Row {
	return Row{
		columns: columns,
		values:  values,
	}
}

func (r Row) Columns() []string {
	return r.columns
}

func (r Row) Values() []Value {
	return r.values
}

// Column 按照列名查找
func (r Row) Column(name string) (Value, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Get 依次尝试别名、带表名的名字和列名
func (r Row) Get(f Field) (Value, bool) {
	for _, name := range [...]string{f.Alias(), f.QualifiedName(), f.Name()} {
		if v, ok := r.Column(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (r Row) driverValues() []any {
	res := make([]any, len(r.values))
	for i, v := range r.values {
		res[i] = driverValue(v)
	}
	return res
}
