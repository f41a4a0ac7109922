package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const envPrefix = "CHRONOSYNC"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Security  SecurityConfig  `mapstructure:"security"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host" envconfig:"DB_HOST"`
	Port         int    `mapstructure:"port" envconfig:"DB_PORT"`
	User         string `mapstructure:"user" envconfig:"DB_USER"`
	Password     string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name         string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode      string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate" envconfig:"DB_AUTO_MIGRATE"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url" envconfig:"REDIS_URL"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret" envconfig:"JWT_SECRET"`
	Issuer      string `mapstructure:"issuer"`
	ExpiryHours int    `mapstructure:"expiry_hours" envconfig:"JWT_EXPIRY_HOURS"`
}

type SecurityConfig struct {
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	PrincipalTTL   time.Duration `mapstructure:"principal_ttl"`
	TokenStore     string        `mapstructure:"token_store" envconfig:"TOKEN_STORE"`
	MaxUsernameTry int           `mapstructure:"max_username_attempts"`
}

type RateLimitConfig struct {
	LoginRPS   float64 `mapstructure:"login_rps"`
	LoginBurst int     `mapstructure:"login_burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"LOG_LEVEL"`
	Format string `mapstructure:"format" envconfig:"LOG_FORMAT"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// BootstrapConfig creates the first firm and administrator on an empty
// database when AdminPassword is set.
type BootstrapConfig struct {
	FirmName      string `mapstructure:"firm_name"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password" envconfig:"BOOTSTRAP_ADMIN_PASSWORD"`
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("redis.key_prefix", "chronosync")
	v.SetDefault("jwt.issuer", "chronosync")
	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.principal_ttl", 30*time.Second)
	v.SetDefault("security.token_store", "redis")
	v.SetDefault("security.max_username_attempts", 5)
	v.SetDefault("rate_limit.login_rps", 5)
	v.SetDefault("rate_limit.login_burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.namespace", "chronosync")
	v.SetDefault("bootstrap.firm_name", "Default")
	v.SetDefault("bootstrap.admin_username", "admin")
}

// LoadConfig reads config.yaml (or $CONFIG_FILE), then applies
// CHRONOSYNC_* environment overrides.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/chronosync")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyEnv overrides fields tagged with envconfig, e.g. CHRONOSYNC_DB_HOST.
// Unset variables leave the file values in place.
func applyEnv(config *Config) error {
	sections := map[string]any{
		"server":    &config.Server,
		"database":  &config.Database,
		"redis":     &config.Redis,
		"jwt":       &config.JWT,
		"security":  &config.Security,
		"log":       &config.Log,
		"bootstrap": &config.Bootstrap,
	}
	for name, section := range sections {
		if err := envconfig.Process(envPrefix, section); err != nil {
			return fmt.Errorf("failed to read %s env: %w", name, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, errors.New("server.port must be positive"))
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.JWT.ExpiryHours <= 0 {
		errs = append(errs, errors.New("jwt.expiry_hours must be positive"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Security.TokenStore {
	case "redis", "postgres":
	default:
		errs = append(errs, fmt.Errorf("security.token_store must be redis or postgres, got %q", c.Security.TokenStore))
	}
	if c.Security.TokenStore == "redis" && c.Redis.URL == "" {
		errs = append(errs, errors.New("redis.url is required for the redis token store"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
