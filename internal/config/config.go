package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// AllowedOrigins restricts websocket upgrades; empty allows any origin.
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Contest struct {
		CacheTTL        string `yaml:"cache_ttl"`
		DefaultDuration string `yaml:"default_duration"`
	} `yaml:"contest"`
	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`
	Judge0 struct {
		URL       string `yaml:"url"`
		AuthToken string `yaml:"auth_token"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"judge0"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies CONTEST_* environment overrides.
// A .env file in the working directory is loaded first if present. A missing
// YAML file is not an error; the environment alone can configure the service.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CONTEST_SERVER_PORT")
	setString(&cfg.Redis.Addr, "CONTEST_REDIS_ADDR")
	setString(&cfg.Redis.Password, "CONTEST_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CONTEST_REDIS_DB")
	setString(&cfg.Redis.TTL, "CONTEST_REDIS_TTL")
	setString(&cfg.Postgres.URL, "CONTEST_POSTGRES_URL")
	setString(&cfg.Contest.CacheTTL, "CONTEST_CACHE_TTL")
	setString(&cfg.Contest.DefaultDuration, "CONTEST_DEFAULT_DURATION")
	setString(&cfg.NATS.URL, "CONTEST_NATS_URL")
	setString(&cfg.NATS.Subject, "CONTEST_NATS_SUBJECT")
	setString(&cfg.Judge0.URL, "CONTEST_JUDGE0_URL")
	setString(&cfg.Judge0.AuthToken, "CONTEST_JUDGE0_AUTH_TOKEN")
	setString(&cfg.Judge0.Timeout, "CONTEST_JUDGE0_TIMEOUT")
	setString(&cfg.Log.Level, "CONTEST_LOG_LEVEL")
	setString(&cfg.Log.Format, "CONTEST_LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
