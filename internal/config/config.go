package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "RECIPE"

// Config holds application level configuration aggregated from env/config files/flags.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		Secret     string
		BcryptCost int
	}
	Session struct {
		Store       string
		TTL         time.Duration
		RememberTTL time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
		Keep      int
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
	Seed struct {
		Password string
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":      "server.addr",
	"db":        "database.path",
	"log-level": "log.level",
}

// RegisterFlags adds the flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("addr", "", "http listen address")
	fs.String("db", "", "sqlite database path")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
}

// Load reads configuration from defaults, an optional config file, a .env
// file, environment variables and finally flags (highest precedence).
// fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	// .env never overrides variables that are already set
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/recipes.db")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.bcryptcost", 12)
	v.SetDefault("session.store", "sqlite")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.rememberttl", "720h")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "recipe-box/backups")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.keep", 7)
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("seed.password", "")

	// DB_PATH is kept for existing deployments
	if err := v.BindEnv("database.path", envPrefix+"_DATABASE_PATH", "DB_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind database path env: %w", err)
	}

	configFile := ""
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Session.Store {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		return fmt.Errorf("session ttl values must be positive")
	}
	if c.Session.RememberTTL < c.Session.TTL {
		return fmt.Errorf("session remember ttl must not be shorter than session ttl")
	}
	if c.Storage.Keep < 0 {
		return fmt.Errorf("storage keep must not be negative")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}
