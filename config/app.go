package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	AccessTTL  time.Duration `env:"ACCESS_TTL" default:"30m"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" default:"168h"`
}
