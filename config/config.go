package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr    string           `yaml:"http_addr"`
	CORSOrigins []string         `yaml:"cors_origins"`
	LogPath     string           `yaml:"log_path"`
	LogLevel    string           `yaml:"log_level"`
	DBPath      string           `yaml:"db_path"`
	Catalog     CatalogConfig    `yaml:"catalog"`
	Selection   SelectionConfig  `yaml:"selection"`
	Scheduler   SchedulerConfig  `yaml:"scheduler"`
	ImageCheck  ImageCheckConfig `yaml:"image_check"`
}

type CatalogConfig struct {
	Source      string   `yaml:"source"` // sample, file, s3, postgres
	Path        string   `yaml:"path"`
	DatabaseURL string   `yaml:"-"`
	S3          S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type SelectionConfig struct {
	Store         string        `yaml:"store"` // sqlite, redis, memory
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"-"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTTL      time.Duration `yaml:"redis_ttl"`
	KeyPrefix     string        `yaml:"key_prefix"`
	MaxSessions   int           `yaml:"max_sessions"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type SchedulerConfig struct {
	Interval time.Duration `yaml:"reload_interval"`
	Cron     string        `yaml:"reload_cron"`
}

type ImageCheckConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
	ProxyURL string        `yaml:"proxy_url"`
}

func defaults() *Config {
	return &Config{
		HTTPAddr:    ":8080",
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		LogPath:     "listings.log",
		LogLevel:    "info",
		DBPath:      "listings.db",
		Catalog:     CatalogConfig{Source: "sample"},
		Selection: SelectionConfig{
			Store:       "sqlite",
			RedisAddr:   "localhost:6379",
			KeyPrefix:   "selection:",
			MaxSessions: 10000,
			SessionTTL:  10 * time.Minute,
		},
		ImageCheck: ImageCheckConfig{Timeout: 10 * time.Second},
	}
}

// Load reads the optional YAML file named by CONFIG_FILE (default
// config/listings.yaml) and then applies environment overrides, .env included.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	path := getEnv("CONFIG_FILE", "config/listings.yaml")
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}

	c.Catalog.Source = getEnv("CATALOG_SOURCE", c.Catalog.Source)
	c.Catalog.Path = getEnv("CATALOG_PATH", c.Catalog.Path)
	c.Catalog.DatabaseURL = getEnv("DATABASE_URL", c.Catalog.DatabaseURL)
	c.Catalog.S3.Bucket = getEnv("S3_BUCKET", c.Catalog.S3.Bucket)
	c.Catalog.S3.Key = getEnv("S3_KEY", c.Catalog.S3.Key)
	c.Catalog.S3.Region = getEnv("S3_REGION", c.Catalog.S3.Region)
	c.Catalog.S3.Endpoint = getEnv("S3_ENDPOINT", c.Catalog.S3.Endpoint)
	c.Catalog.S3.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	c.Catalog.S3.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	c.Selection.Store = getEnv("SELECTION_STORE", c.Selection.Store)
	c.Selection.RedisAddr = getEnv("REDIS_ADDR", c.Selection.RedisAddr)
	c.Selection.RedisPassword = os.Getenv("REDIS_PASSWORD")
	c.Selection.RedisDB = getEnvInt("REDIS_DB", c.Selection.RedisDB)
	c.Selection.MaxSessions = getEnvInt("SELECTION_MAX_SESSIONS", c.Selection.MaxSessions)

	c.Scheduler.Cron = getEnv("RELOAD_CRON", c.Scheduler.Cron)
	c.ImageCheck.ProxyURL = getEnv("IMAGE_CHECK_PROXY", c.ImageCheck.ProxyURL)

	var err error
	if c.Scheduler.Interval, err = getEnvDuration("RELOAD_INTERVAL", c.Scheduler.Interval); err != nil {
		return err
	}
	if c.ImageCheck.Interval, err = getEnvDuration("IMAGE_CHECK_INTERVAL", c.ImageCheck.Interval); err != nil {
		return err
	}
	if c.ImageCheck.Timeout, err = getEnvDuration("IMAGE_CHECK_TIMEOUT", c.ImageCheck.Timeout); err != nil {
		return err
	}
	if c.Selection.RedisTTL, err = getEnvDuration("REDIS_TTL", c.Selection.RedisTTL); err != nil {
		return err
	}
	if c.Selection.SessionTTL, err = getEnvDuration("SELECTION_SESSION_TTL", c.Selection.SessionTTL); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case "sample":
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required for the file catalog source")
		}
	case "s3":
		if c.Catalog.S3.Bucket == "" || c.Catalog.S3.Key == "" {
			return fmt.Errorf("S3_BUCKET and S3_KEY are required for the s3 catalog source")
		}
	case "postgres":
		if c.Catalog.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres catalog source")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	switch c.Selection.Store {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown selection store %q", c.Selection.Store)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
