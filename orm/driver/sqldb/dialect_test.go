package sqldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	testCases := []struct {
		name    string
		dialect Dialect
		sql     string
		want    string
	}{
		{
			name:    "mysql",
			dialect: MySQL,
			sql:     "SELECT * FROM users WHERE id = ?",
			want:    "SELECT * FROM users WHERE id = ?",
		},
		{
			name:    "postgres",
			dialect: Postgres,
			sql:     "SELECT * FROM users WHERE id = ? AND age IN (?, ?)",
			want:    "SELECT * FROM users WHERE id = $1 AND age IN ($2, $3)",
		},
		{
			name:    "postgres quoted",
			dialect: Postgres,
			sql:     `SELECT '?', "a?" FROM users WHERE id = ?`,
			want:    `SELECT '?', "a?" FROM users WHERE id = $1`,
		},
		{
			name:    "postgres no placeholder",
			dialect: Postgres,
			sql:     "SELECT 1",
			want:    "SELECT 1",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.dialect.Rebind(tc.sql))
		})
	}
}

func TestDialectOf(t *testing.T) {
	assert.Equal(t, MySQL, DialectOf("mysql"))
	assert.Equal(t, Postgres, DialectOf("postgres"))
	assert.Equal(t, SQLite3, DialectOf("sqlite3"))
	assert.True(t, Postgres.ReturningPrimaryKey())
	assert.False(t, MySQL.ReturningPrimaryKey())
	assert.Equal(t, "sqlite3", SQLite3.Name())
}
