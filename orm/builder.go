package orm

import "strings"

type builder struct {
	sb   strings.Builder // sb is used to build the SQL query string.
	args []Value         // args holds the arguments for the query.
}

func (b *builder) writeString(s string) {
	b.sb.WriteString(s)
}

// writeQuery 追加一个片段，参数跟着一起追加
func (b *builder) writeQuery(q *Query) {
	b.sb.WriteString(q.SQL)
	b.addArgs(q.Args...)
}

// buildFilters 多个条件之间使用 AND 连接
// 调用方保证 fs 里面至少有一个不为 nil 的条件
func (b *builder) buildFilters(fs []Filter) error {
	f := And(fs...)
	if f == nil {
		return nil
	}
	q, err := f.Build()
	if err != nil {
		return err
	}
	b.writeQuery(q)
	return nil
}

func (b *builder) addArgs(args ...Value) {
	if len(args) == 0 {
		return
	}
	if b.args == nil {
		b.args = make([]Value, 0, 8)
	}
	b.args = append(b.args, args...)
}

func (b *builder) query() *Query {
	return &Query{
		SQL:  b.sb.String(),
		Args: b.args,
	}
}
