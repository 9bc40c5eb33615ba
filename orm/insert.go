package orm

type Insert struct {
	table  string
	values Assignments // 缓存要插入的数据
}

func NewInsert(table string) *Insert {
	return &Insert{
		table: table,
	}
}

// Values 要插入的列和值
func (i *Insert) Values(as ...Assignment) *Insert {
	i.values = as
	return i
}

func (i *Insert) Table() string {
	return i.table
}

// Build INSERT INTO t (a, b) VALUES (?, ?)
// 没有任何列的时候使用 DEFAULT VALUES
func (i *Insert) Build() (*Query, error) {
	if err := i.values.err(); err != nil {
		return nil, err
	}
	b := &builder{}
	b.writeString("INSERT INTO ")
	b.writeString(i.table)
	if len(i.values) == 0 {
		b.writeString(" DEFAULT VALUES")
		return b.query(), nil
	}
	b.writeString(" ")
	b.writeQuery(i.values.Fields().SelectList(false, false).Isolate())
	b.writeString(" VALUES ")
	b.writeQuery(Placeholders(i.values.Values()).Isolate())
	return b.query(), nil
}
