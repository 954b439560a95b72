package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Backend struct {
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"backend"`
	Storage struct {
		// Backend selects where the cart blob lives: "sql" or "s3".
		Backend string `yaml:"backend"`
		Driver  string `yaml:"driver"`
		DSN     string `yaml:"dsn"`
		S3      struct {
			AccessKey string `yaml:"access_key"`
			SecretKey string `yaml:"secret_key"`
			Bucket    string `yaml:"bucket"`
			Region    string `yaml:"region"`
			Endpoint  string `yaml:"endpoint"`
			Prefix    string `yaml:"prefix"`
		} `yaml:"s3"`
	} `yaml:"storage"`
	Cache struct {
		// Backend selects the read cache: "memory" or "redis".
		Backend   string `yaml:"backend"`
		RedisAddr string `yaml:"redis_addr"`
		AllTTL    string `yaml:"all_ttl"`
		ActiveTTL string `yaml:"active_ttl"`
		DetailTTL string `yaml:"detail_ttl"`
	} `yaml:"cache"`
	Cart struct {
		DebounceMS int `yaml:"debounce_ms"`
	} `yaml:"cart"`
	Session struct {
		SigningKey string `yaml:"signing_key"`
	} `yaml:"session"`
}

func LoadConfig() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}
	return cfg
}

// Duration parses a yaml duration string, falling back when empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: bad duration %q, using %s", raw, fallback)
		return fallback
	}
	return d
}
