package config

import (
	"fmt"
	"log"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Storage    Storage
	Redis      Redis
	HTTPServer HTTPServer
	Ingest     Ingest
	Provider   Provider
}

type Storage struct {
	Timeout  time.Duration `env:"BD_TIMEOUT" env-default:"10s"`
	Host     string        `env:"BD_HOST" env-default:"localhost"`
	Port     int           `env:"BD_PORT" env-default:"5432"`
	User     string        `env:"BD_USER" env-default:"postgres"`
	Password string        `env:"BD_PASSWORD"`
	DBName   string        `env:"BD_DBNAME" env-default:"converter"`
	SSLMode  string        `env:"BD_SSL_MODE" env-default:"disable"`
	Schema   string        `env:"BD_SCHEMA" env-default:"public"`
}

type Redis struct {
	Host     string        `env:"REDIS_HOST"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `env:"REDIS_TTL" env-default:"1h"`
}

type HTTPServer struct {
	Port        string        `env:"HTTP_PORT" env-default:"8082"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"2m"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Ingest struct {
	Base           string        `env:"INGEST_BASE" env-default:"USD"`
	FiatURL        string        `env:"INGEST_FIAT_URL" env-default:"https://api.exchangerate-api.com/v4/latest"`
	CryptoURL      string        `env:"INGEST_CRYPTO_URL" env-default:"https://api.coinbase.com/v2/exchange-rates"`
	CryptoCode     string        `env:"INGEST_CRYPTO_CODE" env-default:"BTC"`
	CryptoFallback float64       `env:"INGEST_CRYPTO_FALLBACK" env-default:"0.000025"`
	Timeout        time.Duration `env:"INGEST_TIMEOUT" env-default:"10s"`
	Interval       time.Duration `env:"INGEST_INTERVAL" env-default:"0s"`
	AuthToken      string        `env:"INGEST_AUTH_TOKEN"`
	Migrate        bool          `env:"INGEST_MIGRATE" env-default:"true"`
}

type Provider struct {
	EndpointURL     string        `env:"PROVIDER_ENDPOINT_URL" env-default:"http://localhost:8082/fetch-exchange-rates"`
	APIKey          string        `env:"PROVIDER_API_KEY"`
	RefreshInterval time.Duration `env:"PROVIDER_REFRESH_INTERVAL" env-default:"5m"`
	Timeout         time.Duration `env:"PROVIDER_TIMEOUT" env-default:"15s"`
	CachePath       string        `env:"PROVIDER_CACHE_PATH" env-default:"converter_cache.db"`
	CacheKey        string        `env:"PROVIDER_CACHE_KEY" env-default:"exchange_rates_cache"`
	UseDB           bool          `env:"PROVIDER_USE_DB" env-default:"true"`
	Currencies      string        `env:"PROVIDER_CURRENCIES" env-default:"USD,EUR,GBP,JPY,CNY,AUD,CAD,CHF"`
}

func NewConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("Error reading env: ", err)
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN is the key=value form accepted by pgxpool.
func (s Storage) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		s.Host,
		s.Port,
		s.User,
		s.Password,
		s.DBName,
		s.SSLMode,
		s.Schema,
	)
}

// URL is the same connection in URL form, as migrate drivers expect it.
func (s Storage) URL(scheme string) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(s.User, s.Password),
		Host:   fmt.Sprintf("%s:%d", s.Host, s.Port),
		Path:   "/" + s.DBName,
	}

	q := u.Query()
	q.Set("sslmode", s.SSLMode)
	q.Set("search_path", s.Schema)
	u.RawQuery = q.Encode()

	return u.String()
}

func (c *Config) Split(fieldName string) []string {
	v := reflect.ValueOf(&c.Provider).Elem()
	f := v.FieldByName(fieldName)
	if !f.IsValid() || f.Kind() != reflect.String {
		return nil
	}
	str := f.String()
	if str == "" {
		return nil
	}

	parts := strings.Split(str, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
