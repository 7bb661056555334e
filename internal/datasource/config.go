// Package datasource turns registered data source profiles into open
// database/sql pools for the PostgreSQL, MySQL, SQL Server and DuckDB dialects.
package datasource

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"lakehouse/internal/domain"
	"lakehouse/internal/sqltemplate"
)

// Default ports per dialect.
const (
	DefaultPostgresPort  = 5432
	DefaultMySQLPort     = 3306
	DefaultSQLServerPort = 1433
)

// ConnConfig is the parsed connection_config of a data source.
type ConnConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string // postgres only
}

// ParseConnConfig validates raw against the requirements of dialect d.
// Server dialects need host, database and username; password may be empty.
// DuckDB only reads database, a bare file name resolved by the Connector
// inside its DuckDB directory, where empty means in-memory.
func ParseConnConfig(d sqltemplate.Dialect, raw map[string]any) (ConnConfig, error) {
	var cfg ConnConfig
	var err error

	if cfg.Database, err = optionalString(raw, "database"); err != nil {
		return cfg, err
	}
	if d == sqltemplate.DuckDB {
		if cfg.Database != "" && !isBareName(cfg.Database) {
			return cfg, domain.ErrValidation("invalid database in connection config: %q is not a plain file name", cfg.Database)
		}
		return cfg, nil
	}

	if cfg.Host, err = requiredString(raw, "host"); err != nil {
		return cfg, err
	}
	if cfg.Database == "" {
		return cfg, domain.ErrValidation("missing database in connection config")
	}
	if cfg.Username, err = requiredString(raw, "username"); err != nil {
		return cfg, err
	}
	if cfg.Password, err = optionalString(raw, "password"); err != nil {
		return cfg, err
	}
	if cfg.SSLMode, err = optionalString(raw, "sslmode"); err != nil {
		return cfg, err
	}
	if cfg.Port, err = parsePort(raw["port"]); err != nil {
		return cfg, err
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort(d)
	}
	return cfg, nil
}

// isBareName reports whether s names a single file without directory parts
// or DSN options.
func isBareName(s string) bool {
	if s == "." || s == ".." || strings.HasPrefix(s, ":") {
		return false
	}
	return !strings.ContainsAny(s, `/\?#:`) && !strings.ContainsRune(s, 0)
}

func defaultPort(d sqltemplate.Dialect) int {
	switch d {
	case sqltemplate.MySQL:
		return DefaultMySQLPort
	case sqltemplate.SQLServer:
		return DefaultSQLServerPort
	default:
		return DefaultPostgresPort
	}
}

func requiredString(raw map[string]any, key string) (string, error) {
	s, err := optionalString(raw, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", domain.ErrValidation("missing %s in connection config", key)
	}
	return s, nil
}

func optionalString(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", domain.ErrValidation("invalid %s in connection config: expected string", key)
	}
	return s, nil
}

// parsePort accepts a JSON number or a numeric string. Absent means 0.
func parsePort(v any) (int, error) {
	var n float64
	switch p := v.(type) {
	case nil:
		return 0, nil
	case float64:
		n = p
	case int:
		n = float64(p)
	case int64:
		n = float64(p)
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return 0, domain.ErrValidation("invalid port in connection config: %s", p)
		}
		n = f
	case string:
		if strings.TrimSpace(p) == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, domain.ErrValidation("invalid port in connection config: %q", p)
		}
		n = float64(i)
	default:
		return 0, domain.ErrValidation("invalid port in connection config: %v", v)
	}
	if n != math.Trunc(n) || n < 1 || n > 65535 {
		return 0, domain.ErrValidation("invalid port in connection config: %v", v)
	}
	return int(n), nil
}

// DriverName returns the database/sql driver registered for d.
func DriverName(d sqltemplate.Dialect) string {
	switch d {
	case sqltemplate.MySQL:
		return "mysql"
	case sqltemplate.SQLServer:
		return "sqlserver"
	case sqltemplate.DuckDB:
		return "duckdb"
	default:
		return "pgx"
	}
}

// BuildDSN renders cfg as a connection string for d. connectTimeout <= 0
// leaves the driver default.
func BuildDSN(d sqltemplate.Dialect, cfg ConnConfig, connectTimeout time.Duration) string {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	switch d {
	case sqltemplate.MySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = cfg.Database
		mc.ParseTime = true
		if connectTimeout > 0 {
			mc.Timeout = connectTimeout
		}
		return mc.FormatDSN()

	case sqltemplate.SQLServer:
		q := url.Values{}
		q.Set("database", cfg.Database)
		if connectTimeout > 0 {
			q.Set("connection timeout", strconv.Itoa(int(connectTimeout.Seconds())))
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     addr,
			RawQuery: q.Encode(),
		}
		return u.String()

	case sqltemplate.DuckDB:
		return cfg.Database + "?" + duckDBSandbox

	default:
		q := url.Values{}
		if cfg.SSLMode != "" {
			q.Set("sslmode", cfg.SSLMode)
		}
		if connectTimeout > 0 {
			q.Set("connect_timeout", strconv.Itoa(int(connectTimeout.Seconds())))
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     addr,
			Path:     "/" + cfg.Database,
			RawQuery: q.Encode(),
		}
		return u.String()
	}
}

// duckDBSandbox keeps in-process DuckDB from touching the host: no file
// readers, COPY, ATTACH or extension loading, and no SET to undo it.
const duckDBSandbox = "enable_external_access=false&lock_configuration=true"

// Redact returns a copy of a connection or auth config with secrets masked.
func Redact(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		switch strings.ToLower(k) {
		case "password", "secret_key", "account_key", "access_token", "credentials_json":
			out[k] = "********"
		default:
			out[k] = v
		}
	}
	return out
}

func describe(ds domain.DataSource) string {
	return fmt.Sprintf("%s (%s)", ds.Name, ds.DBType)
}
