// Package config carga la configuración del servicio desde env (y .env vía main).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	// Zonas embebidas: la imagen puede no traer tzdata.
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	devJWTSecret = "patitas-dev-secret-change-me"
	defaultTZ    = "America/Mexico_City"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"APP_ENV"`
	AppName   string `mapstructure:"APP_NAME"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// DBDSN vacío => storage in-memory.
	DBDSN string `mapstructure:"DB_DSN"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	MediaRoot string `mapstructure:"MEDIA_ROOT"`
	MediaURL  string `mapstructure:"MEDIA_URL"`

	// TZ es la zona de las fechas que capturan los formularios.
	TZ string `mapstructure:"APP_TZ"`

	// DevAuth acepta X-Debug-User-ID cuando no viene Authorization. Opt-in explícito.
	DevAuth bool `mapstructure:"DEV_AUTH"`
}

// Load lee env con defaults de desarrollo.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "patitas-a-casa")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("DEV_AUTH", false)
	v.SetDefault("APP_TZ", defaultTZ)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default devuelve la config de desarrollo sin leer env (tests / router sin opciones).
func Default() *Config {
	return &Config{
		Port:      "8080",
		Env:       "development",
		AppName:   "patitas-a-casa",
		LogLevel:  "info",
		LogFormat: "text",
		JWTSecret: devJWTSecret,
		JWTTTL:    24 * time.Hour,
		MediaRoot: "./media",
		MediaURL:  "/media/",
		TZ:        defaultTZ,
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.IsProduction() {
		if c.JWTSecret == devJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DevAuth {
			return errors.New("DEV_AUTH cannot be enabled in production")
		}
	}
	return nil
}

// Location resuelve APP_TZ; vacío cae en America/Mexico_City.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.TZ)
	if name == "" {
		name = defaultTZ
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("APP_TZ: %w", err)
	}
	return loc, nil
}

func (c *Config) IsProduction() bool {
	return isProduction(c.Env)
}

func isProduction(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod"
}
