package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa toda la configuración del proceso.
type Config struct {
	AppName string `mapstructure:"app_name"`

	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Adherence AdherenceConfig `mapstructure:"adherence"`
	Emergency EmergencyConfig `mapstructure:"emergency"`
	Host      HostConfig      `mapstructure:"host"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig elige el backend del Store.
// driver: memory | postgres | redis
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db"`
	RedisPrefix string `mapstructure:"redis_prefix"`
	QuotaBytes  int    `mapstructure:"quota_bytes"`
}

type AdherenceConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	GraceWindow  time.Duration `mapstructure:"grace_window"`
}

type EmergencyConfig struct {
	Rehearsal       bool          `mapstructure:"rehearsal"`
	LocationTimeout time.Duration `mapstructure:"location_timeout"`
	HoldDuration    time.Duration `mapstructure:"hold_duration"`
	IncidentLimit   int           `mapstructure:"incident_limit"`
}

// HostConfig apunta al puente de la plataforma anfitriona (notificaciones,
// voz, llamadas, SMS, ubicación). Vacío => gateways de consola.
type HostConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load lee config.yaml (opcional), variables CARE_* y los env heredados
// (PORT, DB_DSN, LOG_LEVEL, LOG_FORMAT, APP_NAME).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/care-monitor")

	setDefaults(v)

	v.SetEnvPrefix("CARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return decode(v)
}

// FromViper permite construir Config desde una instancia preparada (tests).
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	overrideWithEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "care-monitor")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_prefix", "care:")
	v.SetDefault("storage.quota_bytes", 5*1024*1024)

	v.SetDefault("adherence.tick_interval", 30*time.Second)
	v.SetDefault("adherence.grace_window", 60*time.Minute)

	v.SetDefault("emergency.rehearsal", false)
	v.SetDefault("emergency.location_timeout", 8*time.Second)
	v.SetDefault("emergency.hold_duration", 2*time.Second)
	v.SetDefault("emergency.incident_limit", 20)

	v.SetDefault("host.timeout", 5*time.Second)
}

func overrideWithEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		cfg.Storage.DSN = dsn
		if cfg.Storage.Driver == "memory" {
			cfg.Storage.Driver = "postgres"
		}
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		cfg.Log.Format = f
	}
	if app := os.Getenv("APP_NAME"); app != "" {
		cfg.AppName = app
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return errors.New("storage.dsn is required for postgres")
		}
	case "redis":
		if strings.TrimSpace(cfg.Storage.RedisAddr) == "" {
			return errors.New("storage.redis_addr is required for redis")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}

	if cfg.Adherence.TickInterval <= 0 {
		return errors.New("adherence.tick_interval must be positive")
	}
	if cfg.Adherence.GraceWindow <= 0 {
		return errors.New("adherence.grace_window must be positive")
	}
	if cfg.Emergency.HoldDuration <= 0 {
		return errors.New("emergency.hold_duration must be positive")
	}
	if cfg.Emergency.IncidentLimit <= 0 {
		return errors.New("emergency.incident_limit must be positive")
	}
	return nil
}
