package sqldb

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	// 注册驱动
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Config 可以从 YAML 文件中加载
//
//	driver: mysql
//	mysql:
//	  user: root
//	  passwd: root
//	  addr: 127.0.0.1:3306
//	  db_name: test
//	stmt_cache_size: 64
type Config struct {
	Driver string `yaml:"driver"`
	// DSN 直接指定数据源，和 MySQL 二选一
	DSN   string       `yaml:"dsn"`
	MySQL *MySQLConfig `yaml:"mysql"`

	StmtCacheSize   int           `yaml:"stmt_cache_size"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type MySQLConfig struct {
	User      string            `yaml:"user"`
	Passwd    string            `yaml:"passwd"`
	Net       string            `yaml:"net"`
	Addr      string            `yaml:"addr"`
	DBName    string            `yaml:"db_name"`
	Params    map[string]string `yaml:"params"`
	ParseTime bool              `yaml:"parse_time"`
}

// LoadConfig 从文件加载
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("sqldb: 解析配置失败 %w", err)
	}
	if cfg.Driver == "" {
		return nil, errors.New("sqldb: 未指定 driver")
	}
	return cfg, nil
}

// DataSource 返回 sql.Open 需要的 DSN
// 配置了 mysql 的时候通过 mysql.Config 拼接
func (c *Config) DataSource() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.MySQL == nil {
		return "", errors.New("sqldb: 未指定 dsn")
	}
	mc := mysql.NewConfig()
	mc.User = c.MySQL.User
	mc.Passwd = c.MySQL.Passwd
	mc.Net = c.MySQL.Net
	if mc.Net == "" {
		mc.Net = "tcp"
	}
	mc.Addr = c.MySQL.Addr
	mc.DBName = c.MySQL.DBName
	mc.Params = c.MySQL.Params
	mc.ParseTime = c.MySQL.ParseTime
	return mc.FormatDSN(), nil
}

// OpenConfig 按照配置打开，opts 会覆盖配置
func OpenConfig(c *Config, opts ...Option) (*Conn, error) {
	dsn, err := c.DataSource()
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithStmtCache(c.StmtCacheSize)}, opts...)
	conn, err := Open(c.Driver, dsn, opts...)
	if err != nil {
		return nil, err
	}
	if c.MaxOpenConns > 0 {
		conn.db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		conn.db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		conn.db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	return conn, nil
}
