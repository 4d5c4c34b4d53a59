package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	StorageConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	Storage
	Security
}

// Load reads the process configuration from the environment. The token
// secrets and expiries have no defaults: a missing or invalid value is a
// startup failure.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("[config Load] failed to read environment: %w", err)
	}

	tokens, err := loadTokens(k)
	if err != nil {
		return nil, err
	}
	security, err := loadSecurity(k)
	if err != nil {
		return nil, err
	}

	return mainConfig{
		EnvVars: EnvVars{
			Port:     stringOr(k, portEnvVar, "8000"),
			AppName:  stringOr(k, appNameVar, "VidTube"),
			Env:      strings.ToUpper(stringOr(k, envVar, "DEV")),
			LogLevel: stringOr(k, logLevelVar, "info"),
		},
		Cors:     NewCors(k.String(corsOriginVar)),
		Tokens:   tokens,
		Storage:  loadStorage(k),
		Security: security,
	}, nil
}

// envKey maps environment variable names to koanf keys, ignoring anything
// this service does not read.
func envKey(name string) string {
	key := strings.ToLower(name)
	if _, ok := knownKeys[key]; !ok {
		return ""
	}
	return key
}

func stringOr(k *koanf.Koanf, key, defaultValue string) string {
	if v := strings.TrimSpace(k.String(key)); v != "" {
		return v
	}
	return defaultValue
}

// ParseDuration accepts Go duration syntax plus a whole-day suffix ("10d").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}
