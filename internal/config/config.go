// Package config загружает настройки сервера cvagent из окружения (CVAGENT_SERVER_*),
// необязательного файла конфигурации и значений по умолчанию.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Ключи конфигурации сервера
const (
	keyAddr            = "addr"
	keyDBPath          = "db-path"
	keyJWTSecret       = "jwt-secret"
	keyTokenTTL        = "token-ttl"
	keyRateLimit       = "rate-limit"
	keyAuthRateLimit   = "auth-rate-limit"
	keyRateWindow      = "rate-window"
	keyLogLevel        = "log-level"
	keyShutdownTimeout = "shutdown-timeout"
	keyJanitorInterval = "janitor-interval"
	keyConfigFile      = "config"
)

// EnvPrefix префикс переменных окружения сервера
const EnvPrefix = "CVAGENT_SERVER"

const minSecretLength = 16

var (
	ErrMissingSecret = errors.New("jwt secret is required")
	ErrWeakSecret    = fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
)

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	Addr      string
	DBPath    string
	JWTSecret string
	LogLevel  string

	TokenTTL        time.Duration
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
	JanitorInterval time.Duration

	// RateLimit лимит запросов с одного IP за RateWindow для всех путей
	RateLimit int
	// AuthRateLimit лимит для /api/auth/login и /api/auth/register
	AuthRateLimit int
}

// NewViper создает viper с префиксом CVAGENT_SERVER и значениями по умолчанию
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyAddr, ":8080")
	v.SetDefault(keyDBPath, "cvagent.db")
	v.SetDefault(keyTokenTTL, 24*time.Hour)
	v.SetDefault(keyRateLimit, 120)
	v.SetDefault(keyAuthRateLimit, 10)
	v.SetDefault(keyRateWindow, time.Minute)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyShutdownTimeout, 5*time.Second)
	v.SetDefault(keyJanitorInterval, time.Hour)
	return v
}

// Load читает ServerConfig из viper и проверяет его
// Если задан CVAGENT_SERVER_CONFIG, значения дополнительно читаются из файла
func Load(v *viper.Viper) (ServerConfig, error) {
	if file := v.GetString(keyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return ServerConfig{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := ServerConfig{
		Addr:            v.GetString(keyAddr),
		DBPath:          v.GetString(keyDBPath),
		JWTSecret:       v.GetString(keyJWTSecret),
		LogLevel:        v.GetString(keyLogLevel),
		TokenTTL:        v.GetDuration(keyTokenTTL),
		RateWindow:      v.GetDuration(keyRateWindow),
		ShutdownTimeout: v.GetDuration(keyShutdownTimeout),
		JanitorInterval: v.GetDuration(keyJanitorInterval),
		RateLimit:       v.GetInt(keyRateLimit),
		AuthRateLimit:   v.GetInt(keyAuthRateLimit),
	}

	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate проверяет обязательные поля и диапазоны
func (c ServerConfig) Validate() error {
	switch {
	case c.JWTSecret == "":
		return ErrMissingSecret
	case len(c.JWTSecret) < minSecretLength:
		return ErrWeakSecret
	case c.Addr == "":
		return errors.New("listen address is required")
	case c.DBPath == "":
		return errors.New("database path is required")
	case c.TokenTTL <= 0:
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	case c.RateLimit < 0 || c.AuthRateLimit < 0:
		return errors.New("rate limits must not be negative")
	case (c.RateLimit > 0 || c.AuthRateLimit > 0) && c.RateWindow <= 0:
		return fmt.Errorf("rate window must be positive, got %s", c.RateWindow)
	case c.JanitorInterval <= 0:
		return fmt.Errorf("janitor interval must be positive, got %s", c.JanitorInterval)
	}
	return nil
}
