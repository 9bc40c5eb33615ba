package orm

import "github.com/coderi421/ormkit/orm/internal/errs"

type Update struct {
	table   string
	assigns Assignments
	where   []Filter
}

func NewUpdate(table string) *Update {
	return &Update{
		table: table,
	}
}

func (u *Update) Set(assigns ...Assignment) *Update {
	u.assigns = assigns
	return u
}

func (u *Update) Where(fs ...Filter) *Update {
	u.where = append(u.where, compactFilters(fs)...)
	return u
}

func (u *Update) Table() string {
	return u.table
}

// Build UPDATE t SET a = ?, b = ? WHERE ...
func (u *Update) Build() (*Query, error) {
	if len(u.assigns) == 0 {
		return nil, errs.ErrNoUpdatedColumns
	}
	set, err := u.assigns.SetClause()
	if err != nil {
		return nil, err
	}

	b := &builder{}
	b.writeString("UPDATE ")
	b.writeString(u.table)
	b.writeString(" SET ")
	b.writeQuery(set)
	if len(u.where) > 0 {
		b.writeString(" WHERE ")
		if err = b.buildFilters(u.where); err != nil {
			return nil, err
		}
	}
	return b.query(), nil
}
