package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // "file" or "sqlite"
	FilePath   string `mapstructure:"file_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
	LogMode    bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost      int      `mapstructure:"bcrypt_cost"`
	EncryptionKey   string   `mapstructure:"encryption_key"`
	PrivilegedNames []string `mapstructure:"privileged_names"`
}

type RateLimitConfig struct {
	AuthPerMinute int `mapstructure:"auth_per_minute"`
	AuthBurst     int `mapstructure:"auth_burst"`
}

type AuditConfig struct {
	File string `mapstructure:"file"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Security  SecurityConfig  `mapstructure:"security"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Backup    BackupConfig    `mapstructure:"backup"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
// A missing file is fine; defaults plus environment overrides still apply.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		var c Config
		c, err = load(path)
		if err != nil {
			return
		}
		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func load(path string) (Config, error) {
	v := viper.New()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	setDefaults(v)

	// environment overrides, e.g. AH_SERVER_PORT=9000
	v.SetEnvPrefix("AH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.file_path", "data/accounts.json")
	v.SetDefault("store.sqlite_path", "data/accounts.db")
	v.SetDefault("store.log_mode", false)

	v.SetDefault("jwt.issuer", "account-hub")
	v.SetDefault("jwt.expire_hours", 168) // 7 days

	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.privileged_names", []string{"admin"})

	v.SetDefault("ratelimit.auth_per_minute", 30)
	v.SetDefault("ratelimit.auth_burst", 10)

	v.SetDefault("audit.file", "data/audit.jsonl")
	v.SetDefault("backup.dir", "data/backups")
}

// Validate fails closed in release mode: a deployment must not start with
// an empty signing secret or an empty backup encryption key.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("store.backend must be \"file\" or \"sqlite\", got %q", c.Store.Backend)
	}

	if c.Server.Mode == "release" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret must be set in release mode")
		}
		if c.Security.EncryptionKey == "" {
			return fmt.Errorf("security.encryption_key must be set in release mode")
		}
	}
	return nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
