package orm

import (
	"reflect"

	"github.com/coderi421/ormkit/orm/internal/errs"
)

type op string

const (
	opEQ    op = "="
	opGT    op = ">"
	opGTE   op = ">="
	opLT    op = "<"
	opLTE   op = "<="
	opLike  op = "LIKE"
	opIn    op = "IN"
	opNotIn op = "NOT IN"
	opAND   op = "AND"
	opOR    op = "OR"
	opNOT   op = "NOT"
)

func (o op) String() string {
	return string(o)
}

// Expression 代表语句，或者语句的部分
// 暂时没想好怎么设计方法，所以直接做成标记接口
type Expression interface {
	expr()
}

// Filter 可以出现在 WHERE 里面的布尔表达式
type Filter interface {
	QueryBuilder
	filter()
}

type value struct {
	val Value
}

func (value) expr() {}

type values struct {
	vals []Value
}

func (values) expr() {}

// Condition 一个针对单列的比较
// 右边要么是一个值（可以是 NULL），要么是另外一列
type Condition struct {
	left  Field
	op    op
	right Expression
	err   error
}

func (Condition) expr()   {}
func (Condition) filter() {}

func newCondition(left Field, o op, arg any) Condition {
	c := Condition{left: left, op: o}
	switch r := arg.(type) {
	case Field:
		c.right = r
	default:
		v, err := ValueOf(r)
		c.right, c.err = value{val: v}, err
	}
	return c
}

func newListCondition(left Field, o op, args []any) Condition {
	// 只传了一个切片的时候，展开它
	if len(args) == 1 {
		rv := reflect.ValueOf(args[0])
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			expanded := make([]any, rv.Len())
			for i := range expanded {
				expanded[i] = rv.Index(i).Interface()
			}
			args = expanded
		}
	}
	vals, err := valuesOf(args)
	return Condition{
		left:  left,
		op:    o,
		right: values{vals: vals},
		err:   err,
	}
}

func (c Condition) Field() Field {
	return c.left
}

// Build 构造出 SQL 片段
func (c Condition) Build() (*Query, error) {
	if c.err != nil {
		return nil, c.err
	}
	left := c.left.QualifiedName()
	switch r := c.right.(type) {
	case Field:
		return NewQuery(left + " " + c.op.String() + " " + r.QualifiedName()), nil
	case value:
		if IsNull(r.val) && c.op == opEQ {
			return NewQuery(left + " IS NULL"), nil
		}
		return NewQuery(left+" "+c.op.String()+" "+Placeholder, r.val), nil
	case values:
		if len(r.vals) == 0 {
			// IN () 不是合法的 SQL
			if c.op == opIn {
				return NewQuery("1 = 0"), nil
			}
			return NewQuery("1 = 1"), nil
		}
		return JoinQueries(" ", NewQuery(left+" "+c.op.String()), Placeholders(r.vals).Isolate()), nil
	default:
		return nil, errs.NewErrUnsupportedExpressionType(r)
	}
}

func (c Condition) And(r Filter) Predicate {
	return Predicate{left: c, op: opAND, right: r}
}

func (c Condition) Or(r Filter) Predicate {
	return Predicate{left: c, op: opOR, right: r}
}

// Predicate 代表由多个条件组合起来的查询条件
type Predicate struct {
	left  Filter
	op    op
	right Filter
}

func (Predicate) expr()   {}
func (Predicate) filter() {}

func Not(f Filter) Predicate {
	return Predicate{
		op:    opNOT,
		right: f,
	}
}

func (p Predicate) And(r Filter) Predicate {
	return Predicate{left: p, op: opAND, right: r}
}

func (p Predicate) Or(r Filter) Predicate {
	return Predicate{left: p, op: opOR, right: r}
}

// Build 两边都用括号包起来，避免优先级的问题
// 为 nil 的一边会被忽略
func (p Predicate) Build() (*Query, error) {
	switch {
	case p.right == nil && (p.left == nil || p.op == opNOT):
		return NewQuery("1 = 1"), nil
	case p.right == nil:
		return p.left.Build()
	case p.left == nil && p.op != opNOT:
		return p.right.Build()
	}
	right, err := p.right.Build()
	if err != nil {
		return nil, err
	}
	if p.op == opNOT {
		return NewQuery(opNOT.String()).Append(right.Isolate()), nil
	}
	left, err := p.left.Build()
	if err != nil {
		return nil, err
	}
	return JoinQueries(" "+p.op.String()+" ", left.Isolate(), right.Isolate()), nil
}

// compactFilters 去掉 nil，动态拼接条件的时候经常出现
func compactFilters(fs []Filter) []Filter {
	res := make([]Filter, 0, len(fs))
	for _, f := range fs {
		if f != nil {
			res = append(res, f)
		}
	}
	return res
}

// And 把多个条件用 AND 连起来，没有条件的时候返回 nil
func And(fs ...Filter) Filter {
	fs = compactFilters(fs)
	if len(fs) == 0 {
		return nil
	}
	f := fs[0]
	for i := 1; i < len(fs); i++ {
		f = Predicate{left: f, op: opAND, right: fs[i]}
	}
	return f
}

// Or 把多个条件用 OR 连起来
func Or(fs ...Filter) Filter {
	fs = compactFilters(fs)
	if len(fs) == 0 {
		return nil
	}
	f := fs[0]
	for i := 1; i < len(fs); i++ {
		f = Predicate{left: f, op: opOR, right: fs[i]}
	}
	return f
}
