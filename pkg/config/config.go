package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// DevSecret is used when no signing secret is configured in debug mode.
const DevSecret = "dev-insecure-secret-change"

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	LogMode     bool   `mapstructure:"log_mode"`
}

type AuthConfig struct {
	Secret     string        `mapstructure:"secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type AMQPConfig struct {
	URL           string `mapstructure:"url"`
	Exchange      string `mapstructure:"exchange"`
	RoutingPrefix string `mapstructure:"routing_prefix"`
}

type LedgerConfig struct {
	// StrictTransactionCategory rejects transactions attached to a category
	// the caller does not own.
	StrictTransactionCategory bool `mapstructure:"strict_transaction_category"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is built once at startup and handed to the constructors that need it.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Log      LogConfig      `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8081")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_mode", false)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "budgeter")
	v.SetDefault("amqp.routing_prefix", "budgeter")
	v.SetDefault("ledger.strict_transaction_category", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from defaults, the optional YAML file at path,
// a local .env file and the process environment, in increasing precedence.
// Environment keys are the upper-cased dotted keys with "_" separators,
// e.g. DATABASE_DSN or AUTH_TOKEN_TTL.
func Load(path string) (*Config, error) {
	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// legacy variable names used by the older deployments
	if c.Database.DSN == "" {
		c.Database.DSN = os.Getenv("DB_DSN")
	}
	if c.Auth.Secret == "" {
		c.Auth.Secret = os.Getenv("JWT_SECRET")
	}
	if c.Auth.Secret == "" && c.Server.Mode == "debug" {
		c.Auth.Secret = DevSecret
	}
	return &c, nil
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if _, port, err := net.SplitHostPort(c.Server.Address); err != nil || port == "" {
		problems = append(problems, fmt.Sprintf("invalid server address '%s': expected host:port", c.Server.Address))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("invalid server mode '%s': must be one of debug, release, test", c.Server.Mode))
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server shutdown timeout must be positive")
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		problems = append(problems, "database dsn is required (DATABASE_DSN or DB_DSN)")
	}

	if c.Auth.Secret == "" {
		problems = append(problems, "auth secret is required outside debug mode (AUTH_SECRET or JWT_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid token ttl %v: must be positive", c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		problems = append(problems, fmt.Sprintf("invalid bcrypt cost %d: must be between %d and %d", c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
