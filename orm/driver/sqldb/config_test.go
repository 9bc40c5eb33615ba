package sqldb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	testCases := []struct {
		name    string
		data    string
		wantDSN string
		wantErr string
	}{
		{
			name: "mysql",
			data: `
driver: mysql
mysql:
  user: root
  passwd: root
  addr: 127.0.0.1:3306
  db_name: test
  params:
    charset: utf8mb4
stmt_cache_size: 16
conn_max_lifetime: 1m
`,
			wantDSN: "root:root@tcp(127.0.0.1:3306)/test?charset=utf8mb4",
		},
		{
			name: "dsn",
			data: `
driver: sqlite3
dsn: file:test.db?cache=shared&mode=memory
`,
			wantDSN: "file:test.db?cache=shared&mode=memory",
		},
		{
			name:    "no driver",
			data:    "dsn: a",
			wantErr: "sqldb: 未指定 driver",
		},
		{
			name:    "no dsn",
			data:    "driver: postgres",
			wantErr: "sqldb: 未指定 dsn",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.data))
			if err == nil {
				var dsn string
				dsn, err = cfg.DataSource()
				if err == nil {
					assert.Equal(t, tc.wantDSN, dsn)
				}
			}
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: sqlite3
dsn: "file:load_config?mode=memory&cache=shared"
stmt_cache_size: 8
max_open_conns: 4
conn_max_lifetime: 30s
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Driver:          "sqlite3",
		DSN:             "file:load_config?mode=memory&cache=shared",
		StmtCacheSize:   8,
		MaxOpenConns:    4,
		ConnMaxLifetime: 30 * time.Second,
	}, cfg)

	conn, err := OpenConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, SQLite3, conn.Dialect())
	conn.Close()

	_, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
