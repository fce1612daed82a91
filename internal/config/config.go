package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string          `yaml:"env" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Invites   InviteConfig    `yaml:"invites"`
	Cache     CacheConfig     `yaml:"cache"`
}

type HTTPConfig struct {
	Address      string   `yaml:"address" env-default:""`
	AllowOrigins []string `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"DATABASE_DSN"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"30m"`
}

type SchedulerConfig struct {
	LifecycleInterval time.Duration `yaml:"lifecycle_interval" env-default:"1m"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" env-default:"5m"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" env-default:"30m"`
	MessageRetention  time.Duration `yaml:"message_retention" env-default:"168h"`
}

type InviteConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env-default:"24h"`
}

type CacheConfig struct {
	SessionTTL     time.Duration `yaml:"session_ttl" env-default:"15m"`
	ParticipantTTL time.Duration `yaml:"participant_ttl" env-default:"30m"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	cfg.setDefaults()

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if len(c.HTTP.AllowOrigins) == 0 {
		c.HTTP.AllowOrigins = []string{"http://localhost:3000"}
	}
}
