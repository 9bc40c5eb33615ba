package orm

import "strings"

// Assignment 用于 UPDATE 的 SET 和 INSERT 的 VALUES
// Assign(C("first_name"), "DaMing") -> first_name = ?
type Assignment struct {
	Field Field
	Value Value
	err   error
}

func Assign(f Field, val any) Assignment {
	v, err := ValueOf(val)
	return Assignment{
		Field: f,
		Value: v,
		err:   err,
	}
}

type Assignments []Assignment

func (as Assignments) Fields() Fields {
	res := make(Fields, 0, len(as))
	for _, a := range as {
		res = append(res, a.Field)
	}
	return res
}

func (as Assignments) Values() []Value {
	res := make([]Value, 0, len(as))
	for _, a := range as {
		res = append(res, a.Value)
	}
	return res
}

func (as Assignments) err() error {
	for _, a := range as {
		if a.err != nil {
			return a.err
		}
	}
	return nil
}

// SetClause 构造 name = ?, age = ?，参数顺序和列的顺序一致
func (as Assignments) SetClause() (*Query, error) {
	if err := as.err(); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for i, a := range as {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Field.Name())
		sb.WriteString(" = ")
		sb.WriteString(Placeholder)
	}
	return NewQuery(sb.String(), as.Values()...), nil
}
