package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	appenv "github.com/stridelog/stridelog/internal/env"
)

type Config struct {
	Port      string             `env:"PORT" envDefault:"8080"`
	Env       appenv.Environment `env:"ENV" envDefault:"development"`
	SessionID string             `env:"SESSION_ID"`
	Strava    Strava             `envPrefix:"STRAVA_"`
	Oura      Oura               `envPrefix:"OURA_"`
	Redis     Redis              `envPrefix:"REDIS_"`
	Cache     Cache              `envPrefix:"CACHE_"`
}

type Strava struct {
	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`
	AccessToken  string `env:"ACCESS_TOKEN"`
	RefreshToken string `env:"REFRESH_TOKEN,required"`
	// TokenExpiry is the access token expiry as unix seconds; zero means
	// expired, forcing a refresh on first use.
	TokenExpiry int64 `env:"TOKEN_EXPIRY"`
}

type Oura struct {
	AccessToken string `env:"ACCESS_TOKEN,required"`
}

type Redis struct {
	// URL left empty runs with the in-memory cache backend.
	URL string `env:"URL"`
}

type Cache struct {
	TTL time.Duration `env:"TTL" envDefault:"24h"`
}

func Read() (Config, error) {
	return env.ParseAs[Config]()
}
