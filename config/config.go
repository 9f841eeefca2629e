// Package config loads the YAML configuration of a process using
// sqlmodel: the database connection, the result cache and the code
// generator.
//
//	database:
//	  dialect: postgres
//	  dsn: postgres://app@localhost/app?sslmode=disable
//	  max_open_conns: 20
//	  slow_threshold: 200ms
//	  metrics: true
//	cache:
//	  enabled: true
//	  ttl: 30s
//	gen:
//	  packages: ./models/...
package config

import (
	stdsql "database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/dialect"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/service"
)

// Config is the root of a configuration file.
type Config struct {
	Database Database `yaml:"database"`
	Cache    Cache    `yaml:"cache,omitempty"`
	Gen      Gen      `yaml:"gen,omitempty"`

	once  sync.Once
	cache *sqlmodel.MemoryCache
}

// Database configures the connection pool and the driver stack.
type Database struct {
	// Dialect is one of mysql, postgres or sqlite.
	Dialect string `yaml:"dialect"`
	// Driver is the database/sql driver name. It defaults to the driver
	// registered for the dialect.
	Driver          string   `yaml:"driver,omitempty"`
	DSN             string   `yaml:"dsn"`
	MaxOpenConns    int      `yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int      `yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime,omitempty"`
	// SlowThreshold enables statement statistics and logs statements
	// running longer than it.
	SlowThreshold Duration `yaml:"slow_threshold,omitempty"`
	// Metrics samples the statement metrics of dialect/sql.
	Metrics bool `yaml:"metrics,omitempty"`
	// Debug logs every statement at debug level.
	Debug bool `yaml:"debug,omitempty"`
}

// Cache configures the in-memory result cache shared by services.
type Cache struct {
	Enabled bool     `yaml:"enabled,omitempty"`
	TTL     Duration `yaml:"ttl,omitempty"`
	// Size is the entry capacity. Zero means sqlmodel.DefaultMemoryCacheSize.
	Size int `yaml:"size,omitempty"`
}

// Gen configures the sqlmodel code generator.
type Gen struct {
	// Packages are the package patterns to scan for models.
	Packages StringList `yaml:"packages,omitempty"`
	// Output is the name of the file written in every package.
	Output string `yaml:"output,omitempty"`
	// Header is written at the top of every generated file.
	Header     string     `yaml:"header,omitempty"`
	BuildFlags StringList `yaml:"build_flags,omitempty"`
}

// drivers maps dialects to the database/sql drivers registered by this
// package.
var drivers = map[string]string{
	dialect.MySQL:    "mysql",
	dialect.Postgres: "postgres",
	dialect.SQLite:   "sqlite",
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting of c. The database section is
// optional, as the code generator does not connect.
func (c *Config) Validate() error {
	var errs []error
	db := c.Database
	if db.Dialect != "" || db.DSN != "" {
		if _, ok := drivers[db.Dialect]; !ok {
			errs = append(errs, sqlmodel.NewInvalidArgumentError("database.dialect", db.Dialect, "want mysql, postgres or sqlite"))
		}
		if db.DSN == "" {
			errs = append(errs, sqlmodel.NewInvalidArgumentError("database.dsn", db.DSN, "must not be empty"))
		}
	}
	if db.MaxOpenConns < 0 {
		errs = append(errs, sqlmodel.NewInvalidArgumentError("database.max_open_conns", db.MaxOpenConns, "must not be negative"))
	}
	if db.MaxIdleConns < 0 {
		errs = append(errs, sqlmodel.NewInvalidArgumentError("database.max_idle_conns", db.MaxIdleConns, "must not be negative"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, sqlmodel.NewInvalidArgumentError("cache.ttl", c.Cache.TTL, "must not be negative"))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, sqlmodel.NewInvalidArgumentError("cache.size", c.Cache.Size, "must not be negative"))
	}
	return errors.Join(errs...)
}

// Open opens the configured database. The returned driver is a
// sql.StatsDriver when a slow threshold or metrics are configured, wrapped
// in a sql.DebugDriver when debug is set.
func (c *Config) Open() (dialect.Driver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	db := c.Database
	if db.Dialect == "" {
		return nil, sqlmodel.NewInvalidArgumentError("database.dialect", db.Dialect, "a database must be configured")
	}
	name := db.Driver
	if name == "" {
		name = drivers[db.Dialect]
	}
	pool, err := stdsql.Open(name, db.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", db.Dialect, err)
	}
	if db.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(db.MaxOpenConns)
	}
	if db.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(db.MaxIdleConns)
	}
	if db.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(db.ConnMaxLifetime.Std())
	}
	base := sql.OpenDB(db.Dialect, pool)
	var drv dialect.Driver = base
	if db.SlowThreshold > 0 || db.Metrics {
		var opts []sql.StatsOption
		if db.SlowThreshold > 0 {
			opts = append(opts, sql.WithSlowThreshold(db.SlowThreshold.Std()), sql.WithSlowQueryLog(nil))
		}
		if db.Metrics {
			opts = append(opts, sql.WithMetrics())
		}
		drv = sql.NewStatsDriver(base, opts...)
	}
	if db.Debug {
		drv = sql.NewDebugDriver(drv)
	}
	slog.Debug("database opened", "dialect", db.Dialect, "driver", name)
	return drv, nil
}

// ServiceOptions returns the service options of the configuration. Every
// call shares the same cache, so that a modify through one service drops
// the cached reads of the others.
func (c *Config) ServiceOptions() []service.Option {
	if !c.Cache.Enabled {
		return nil
	}
	c.once.Do(func() { c.cache = sqlmodel.NewMemoryCache(c.Cache.Size) })
	opts := []service.Option{service.WithCache(c.cache)}
	if c.Cache.TTL > 0 {
		opts = append(opts, service.WithCacheTTL(c.Cache.TTL.Std()))
	}
	return opts
}

// Duration is a time.Duration written as a string such as "1m30s".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected duration, got %v", node.Line, node.Kind)
	}
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// StringList is a YAML value that is either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}
