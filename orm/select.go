package orm

// Select represents a query selector that allows building SQL SELECT statements.
type Select struct {
	table   string
	columns Fields
	where   []Filter
	orderBy []OrderBy
	offset  int
	limit   int
}

func NewSelect(table string) *Select {
	return &Select{
		table: table,
	}
}

// From sets the table name for the selector.
func (s *Select) From(tbl string) *Select {
	s.table = tbl
	return s
}

// Columns 检索指定 column，不指定的时候就是 *
func (s *Select) Columns(cols ...Field) *Select {
	s.columns = cols
	return s
}

// Where 用于构造 WHERE 查询条件。如果 fs 长度为 0，那么不会构造 WHERE 部分
// 多次调用会追加条件
func (s *Select) Where(fs ...Filter) *Select {
	s.where = append(s.where, compactFilters(fs)...)
	return s
}

func (s *Select) OrderBy(orderBys ...OrderBy) *Select {
	s.orderBy = orderBys
	return s
}

func (s *Select) Offset(offset int) *Select {
	s.offset = offset
	return s
}

func (s *Select) Limit(limit int) *Select {
	s.limit = limit
	return s
}

func (s *Select) Table() string {
	return s.table
}

// Build generates a SQL query for selecting columns from a table.
func (s *Select) Build() (*Query, error) {
	b := &builder{}
	b.writeString("SELECT ")
	if len(s.columns) == 0 {
		b.writeString("*")
	} else {
		b.writeQuery(s.columns.SelectList(true, true))
	}
	b.writeString(" FROM ")
	b.writeString(s.table)

	// 类似这种可有可无的部分，都要在前面加一个空格
	if len(s.where) > 0 {
		b.writeString(" WHERE ")
		if err := b.buildFilters(s.where); err != nil {
			return nil, err
		}
	}

	// 排序
	if len(s.orderBy) > 0 {
		b.writeString(" ORDER BY ")
		for i, ob := range s.orderBy {
			if i > 0 {
				b.writeString(", ")
			}
			b.writeString(ob.field.QualifiedName())
			b.writeString(" ")
			b.writeString(ob.order)
		}
	}

	// 分页
	if s.limit > 0 {
		b.writeString(" LIMIT " + Placeholder)
		b.addArgs(Integer(s.limit))
	}

	// 偏移量
	if s.offset > 0 {
		b.writeString(" OFFSET " + Placeholder)
		b.addArgs(Integer(s.offset))
	}
	return b.query(), nil
}

type OrderBy struct {
	field Field
	order string
}

func Asc(f Field) OrderBy {
	return OrderBy{
		field: f,
		order: "ASC",
	}
}

func Desc(f Field) OrderBy {
	return OrderBy{
		field: f,
		order: "DESC",
	}
}
