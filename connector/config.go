package connector

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config represents database connection configuration.
type Config struct {
	Driver         string            `json:"driver" yaml:"driver"`
	Host           string            `json:"host" yaml:"host"`
	Port           int               `json:"port" yaml:"port"`
	Database       string            `json:"database" yaml:"database"`
	Username       string            `json:"username" yaml:"username"`
	Password       string            `json:"password" yaml:"password"`
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode"`
	Params         map[string]string `json:"params" yaml:"params"`
	Pool           PoolConfig        `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration     `json:"query_timeout" yaml:"query_timeout"`
	Retry          *RetryConfig      `json:"retry,omitempty" yaml:"retry,omitempty"`

	// StatementCacheSize bounds the prepared statement cache; 0 disables it.
	StatementCacheSize int `json:"statement_cache_size" yaml:"statement_cache_size"`
	// Locale is a BCP 47 tag used to format `${}` placeholders, e.g. "de-DE".
	Locale string `json:"locale" yaml:"locale"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time"`
}

// RetryConfig defines connection retry behavior.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`
	Backoff    float64       `json:"backoff" yaml:"backoff"`
}

var defaultPorts = map[string]int{
	"postgres":   5432,
	"pgx":        5432,
	"clickhouse": 9000,
}

// LoadConfig parses a YAML connection configuration from r and applies defaults.
//
//	driver: postgres
//	host: localhost
//	database: app
//	locale: en-US
//	statement_cache_size: 256
//	retry:
//	  max_retries: 3
//	  base_delay: 200ms
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal connection config")
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WithDefaults returns a copy of c with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.Driver == "" {
		c.Driver = "postgres"
	}
	if c.Port == 0 {
		c.Port = defaultPorts[c.Driver]
	}
	if c.Pool.MaxOpen <= 0 {
		c.Pool.MaxOpen = 10
	}
	if c.Pool.MaxIdle <= 0 {
		c.Pool.MaxIdle = 5
	}
	if c.Pool.MaxLifetime == 0 {
		c.Pool.MaxLifetime = time.Hour
	}
	if c.Pool.MaxIdleTime == 0 {
		c.Pool.MaxIdleTime = 30 * time.Minute
	}
	if c.Retry != nil && c.Retry.Backoff <= 0 {
		r := *c.Retry
		r.Backoff = 2
		c.Retry = &r
	}
	return c
}

func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("invalid port: %d", c.Port)
	}
	if c.StatementCacheSize < 0 {
		return errors.Errorf("invalid statement cache size: %d", c.StatementCacheSize)
	}
	if _, err := c.LocaleTag(); err != nil {
		return err
	}
	return nil
}

// LocaleTag parses Locale; an empty Locale yields language.Und.
func (c Config) LocaleTag() (language.Tag, error) {
	if c.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, errors.Wrapf(err, "invalid locale %q", c.Locale)
	}
	return tag, nil
}
