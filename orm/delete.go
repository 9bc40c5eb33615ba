package orm

type Delete struct {
	table string
	where []Filter
}

func NewDelete(table string) *Delete {
	return &Delete{
		table: table,
	}
}

// From sets the table for the Delete and returns a pointer to the Delete.
func (d *Delete) From(table string) *Delete {
	d.table = table
	return d
}

// Where accepts filters and adds them to the Delete's where clause.
func (d *Delete) Where(fs ...Filter) *Delete {
	d.where = append(d.where, compactFilters(fs)...)
	return d
}

func (d *Delete) Table() string {
	return d.table
}

// Build generates a DELETE query based on the provided parameters.
func (d *Delete) Build() (*Query, error) {
	b := &builder{}
	b.writeString("DELETE FROM ")
	b.writeString(d.table)

	// If there are any WHERE clauses, add them to the query.
	if len(d.where) > 0 {
		b.writeString(" WHERE ")
		if err := b.buildFilters(d.where); err != nil {
			return nil, err
		}
	}
	return b.query(), nil
}
