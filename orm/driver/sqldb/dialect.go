package sqldb

import (
	"strconv"
	"strings"

	"github.com/coderi421/ormkit/orm"
)

var (
	MySQL    Dialect = mysqlDialect{}
	SQLite3  Dialect = sqlite3Dialect{}
	Postgres Dialect = postgresDialect{}
)

// Dialect 不同数据库之间的差异
type Dialect interface {
	// Name 同时也是 database/sql 注册的驱动名
	Name() string
	// Rebind 把 ? 占位符替换成数据库认识的形式
	Rebind(sql string) string
	// ReturningPrimaryKey 为 true 的时候，INSERT 通过 RETURNING 拿到主键
	// 否则使用 LastInsertId
	ReturningPrimaryKey() bool
}

// DialectOf 根据驱动名找到方言，找不到的时候使用 SQLite3 的规则
func DialectOf(driver string) Dialect {
	switch driver {
	case "mysql":
		return MySQL
	case "postgres", "pgx":
		return Postgres
	default:
		return SQLite3
	}
}

type standardSQL struct{}

func (standardSQL) Rebind(sql string) string {
	return sql
}

func (standardSQL) ReturningPrimaryKey() bool {
	return false
}

type mysqlDialect struct {
	standardSQL
}

func (mysqlDialect) Name() string {
	return "mysql"
}

type sqlite3Dialect struct {
	standardSQL
}

func (sqlite3Dialect) Name() string {
	return "sqlite3"
}

type postgresDialect struct {
	standardSQL
}

func (postgresDialect) Name() string {
	return "postgres"
}

// Rebind ? -> $1, $2 ...，引号里面的 ? 保持不变
func (postgresDialect) Rebind(sql string) string {
	if !strings.Contains(sql, orm.Placeholder) {
		return sql
	}
	var (
		sb    strings.Builder
		quote byte
		n     int
	)
	sb.Grow(len(sql) + 8)
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == orm.Placeholder[0]:
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func (postgresDialect) ReturningPrimaryKey() bool {
	return true
}
