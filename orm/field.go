package orm

import "strings"

// Field 代表一个列，可以带上所属的表名
// 两个 Field 是否相等只看 QualifiedName，必须用 Equal 比较。
// 不要直接用 == 比较，也不要把 Field 本身当作 map 的 key，
// 例如 C("t.c") == TC("t", "c") 是 false；需要作为 key 的时候使用 Key()
type Field struct {
	name  string
	table string
}

// C 创建一个不带表名的列，例如 C("id")
func C(name string) Field {
	return Field{name: name}
}

// TC 创建带表名的列，例如 TC("user", "id") -> user.id
func TC(table, name string) Field {
	return Field{name: name, table: table}
}

func (f Field) expr() {}

// Of 把列绑定到某个表上，返回新的 Field
func (f Field) Of(table string) Field {
	f.table = table
	return f
}

func (f Field) Name() string {
	return f.name
}

func (f Field) Table() string {
	return f.table
}

// QualifiedName table.column 或者 column
func (f Field) QualifiedName() string {
	if f.table == "" {
		return f.name
	}
	return f.table + "." + f.name
}

// Alias table__column 或者 column，用于 JOIN 之后区分同名列
func (f Field) Alias() string {
	if f.table == "" {
		return f.name
	}
	return f.table + "__" + f.name
}

// Equal 按照 QualifiedName 比较
func (f Field) Equal(other Field) bool {
	return f.QualifiedName() == other.QualifiedName()
}

// Key 作为 map 的 key 使用时，必须用这个，而不是 Field 本身
func (f Field) Key() string {
	return f.QualifiedName()
}

func (f Field) String() string {
	return f.QualifiedName()
}

// EQ 例如 C("id").EQ(12)
// arg 是 Field 的时候，比较的是两列
func (f Field) EQ(arg any) Condition {
	return newCondition(f, opEQ, arg)
}

func (f Field) GT(arg any) Condition {
	return newCondition(f, opGT, arg)
}

func (f Field) GTE(arg any) Condition {
	return newCondition(f, opGTE, arg)
}

func (f Field) LT(arg any) Condition {
	return newCondition(f, opLT, arg)
}

func (f Field) LTE(arg any) Condition {
	return newCondition(f, opLTE, arg)
}

// Like 例如 C("name").Like("A%")
func (f Field) Like(pattern any) Condition {
	return newCondition(f, opLike, pattern)
}

// In 例如 C("id").In(1, 2, 3) 或者 C("id").In([]int{1, 2, 3})
func (f Field) In(vals ...any) Condition {
	return newListCondition(f, opIn, vals)
}

func (f Field) NotIn(vals ...any) Condition {
	return newListCondition(f, opNotIn, vals)
}

// Fields 一组列
type Fields []Field

func (fs Fields) Names() []string {
	res := make([]string, 0, len(fs))
	for _, f := range fs {
		res = append(res, f.name)
	}
	return res
}

// SelectList 构造 SELECT 后面的列
// qualified 控制是否带上表名，alias 控制是否在名字和别名不同的时候加上 AS
func (fs Fields) SelectList(qualified, alias bool) *Query {
	var sb strings.Builder
	for i, f := range fs {
		if i > 0 {
			sb.WriteString(", ")
		}
		name := f.name
		if qualified {
			name = f.QualifiedName()
		}
		sb.WriteString(name)
		if alias && name != f.Alias() {
			sb.WriteString(" AS ")
			sb.WriteString(f.Alias())
		}
	}
	return NewQuery(sb.String())
}

// Placeholders 构造 VALUES 里面的 ?, ?, ?，参数和占位符一一对应
func Placeholders(vals []Value) *Query {
	var sb strings.Builder
	for i := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(Placeholder)
	}
	args := make([]Value, len(vals))
	copy(args, vals)
	return NewQuery(sb.String(), args...)
}
