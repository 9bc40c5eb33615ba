package orm

import (
	"testing"

	"github.com/coderi421/ormkit/orm/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestSelect_Build(t *testing.T) {
	testCases := []struct {
		name    string
		q       QueryBuilder
		want    *Query
		wantErr error
	}{
		{
			name: "no columns",
			q:    NewSelect("test_model"),
			want: &Query{SQL: "SELECT * FROM test_model"},
		},
		{
			name: "with from",
			q:    NewSelect("test_model").From("test_db.test_model"),
			want: &Query{SQL: "SELECT * FROM test_db.test_model"},
		},
		{
			name: "columns",
			q:    NewSelect("test_model").Columns(C("id"), C("first_name")),
			want: &Query{SQL: "SELECT id, first_name FROM test_model"},
		},
		{
			name: "qualified columns",
			q: NewSelect("user JOIN orders ON user.id = orders.user_id").
				Columns(TC("user", "id"), TC("orders", "id")),
			want: &Query{SQL: "SELECT user.id AS user__id, orders.id AS orders__id FROM user JOIN orders ON user.id = orders.user_id"},
		},
		{
			name: "single predicate",
			q:    NewSelect("test_model").Where(C("id").EQ(1)),
			want: NewQuery("SELECT * FROM test_model WHERE id = ?", Integer(1)),
		},
		{
			name: "multiple predicates",
			q:    NewSelect("test_model").Where(C("age").GT(11), C("age").LT(13)),
			want: NewQuery("SELECT * FROM test_model WHERE (age > ?) AND (age < ?)", Integer(11), Integer(13)),
		},
		{
			name: "where appends",
			q:    NewSelect("test_model").Where(C("age").GT(11)).Where(C("name").EQ(nil)),
			want: NewQuery("SELECT * FROM test_model WHERE (age > ?) AND (name IS NULL)", Integer(11)),
		},
		{
			name: "order by",
			q:    NewSelect("test_model").OrderBy(Asc(C("age")), Desc(C("id"))),
			want: &Query{SQL: "SELECT * FROM test_model ORDER BY age ASC, id DESC"},
		},
		{
			name: "limit offset",
			q:    NewSelect("test_model").Where(C("id").GT(3)).Limit(10).Offset(20),
			want: NewQuery("SELECT * FROM test_model WHERE id > ? LIMIT ? OFFSET ?",
				Integer(3), Integer(10), Integer(20)),
		},
		{
			name: "empty and",
			q:    NewSelect("test_model").Where(And()),
			want: &Query{SQL: "SELECT * FROM test_model"},
		},
		{
			name: "nil filters",
			q:    NewSelect("test_model").Where(nil, Or(), C("id").EQ(1), nil),
			want: NewQuery("SELECT * FROM test_model WHERE id = ?", Integer(1)),
		},
		{
			name:    "invalid value",
			q:       NewSelect("test_model").Where(C("id").EQ(struct{}{})),
			wantErr: errs.NewErrUnsupportedValueType(struct{}{}),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := tc.q.Build()
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.want, q)
			assert.NoError(t, q.Validate())
		})
	}
}

func TestSelect_Subquery(t *testing.T) {
	sub, err := NewSelect("orders").Columns(C("user_id")).Where(C("amount").GT(100)).Build()
	assert.NoError(t, err)

	q, err := NewSelect("user").Where(Raw("id IN "+sub.Isolate().SQL, anyArgs(sub)...)).Build()
	assert.NoError(t, err)
	assert.Equal(t, NewQuery("SELECT * FROM user WHERE id IN (SELECT user_id FROM orders WHERE amount > ?)", Integer(100)), q)
}

func anyArgs(q *Query) []any {
	res := make([]any, len(q.Args))
	for i, a := range q.Args {
		res[i] = a
	}
	return res
}
