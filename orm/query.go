package orm

import (
	"strings"

	"github.com/coderi421/ormkit/orm/internal/errs"
)

// Placeholder 所有绑定参数统一使用的占位符
// 具体数据库需要别的形式（例如 $1）时，由驱动负责替换
const Placeholder = "?"

// Query 是一段 SQL 片段和它按顺序绑定的参数
// SQL 中每个占位符和 Args 中的参数从左到右一一对应
type Query struct {
	SQL  string
	Args []Value
}

// QueryBuilder 任何可以构造出 Query 的东西
type QueryBuilder interface {
	Build() (*Query, error)
}

// NewQuery 从原生的 SQL 文本构造
func NewQuery(sql string, args ...Value) *Query {
	return &Query{
		SQL:  sql,
		Args: args,
	}
}

// Isolate returns a new fragment whose text is wrapped in parentheses,
// so it keeps its meaning when embedded in a larger expression.
func (q *Query) Isolate() *Query {
	return &Query{
		SQL:  "(" + q.SQL + ")",
		Args: q.Args,
	}
}

// Append 用一个空格连接两个片段，参数按顺序拼接
func (q *Query) Append(other *Query) *Query {
	return JoinQueries(" ", q, other)
}

// AppendSQL 追加不带参数的 SQL 文本
func (q *Query) AppendSQL(sql string) *Query {
	return q.Append(NewQuery(sql))
}

// JoinQueries 使用 sep 连接多个片段
// nil 和空文本的片段会被跳过
func JoinQueries(sep string, qs ...*Query) *Query {
	var (
		sb   strings.Builder
		args []Value
		n    int
	)
	for _, q := range qs {
		if q == nil || q.SQL == "" {
			continue
		}
		if n > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(q.SQL)
		args = append(args, q.Args...)
		n++
	}
	return &Query{
		SQL:  sb.String(),
		Args: args,
	}
}

// Placeholders 统计 SQL 中占位符的数量，忽略引号里面的内容
func (q *Query) Placeholders() int {
	cnt := 0
	var quote byte
	for i := 0; i < len(q.SQL); i++ {
		c := q.SQL[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == Placeholder[0]:
			cnt++
		}
	}
	return cnt
}

// Validate 检查占位符数量和参数数量是否一致
func (q *Query) Validate() error {
	if n := q.Placeholders(); n != len(q.Args) {
		return errs.NewErrPlaceholderMismatch(n, len(q.Args))
	}
	return nil
}

// DriverArgs 转换成 database/sql 可以直接使用的参数
func (q *Query) DriverArgs() []any {
	if len(q.Args) == 0 {
		return nil
	}
	res := make([]any, len(q.Args))
	for i, a := range q.Args {
		res[i] = driverValue(a)
	}
	return res
}

func (q *Query) String() string {
	return q.SQL
}
