package orm

// RawExpr 代表一个原生表达式
// 意味着 ORM 不会对它进行任何处理
type RawExpr struct {
	raw  string
	args []Value
	err  error
}

func (r RawExpr) expr()   {}
func (r RawExpr) filter() {}

// Raw 创建一个 RawExpr
// 执行原生sql 语句，args 的数量需要和 raw 里面 ? 的数量一致
func Raw(expr string, args ...any) RawExpr {
	vals, err := valuesOf(args)
	return RawExpr{
		raw:  expr,
		args: vals,
		err:  err,
	}
}

func (r RawExpr) Build() (*Query, error) {
	if r.err != nil {
		return nil, r.err
	}
	q := NewQuery(r.raw, r.args...)
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}
