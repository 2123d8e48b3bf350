package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Session struct {
		TTL           string `yaml:"ttl"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"session"`
	Dataset struct {
		ID  string `yaml:"id"`
		Dir string `yaml:"dir"`
		TTL string `yaml:"ttl"`
	} `yaml:"dataset"`
	Share struct {
		UploadURL   string `yaml:"upload_url"`
		APIKey      string `yaml:"api_key"`
		Timeout     string `yaml:"timeout"`
		PageURL     string `yaml:"page_url"`
		Text        string `yaml:"text"`
		JPEGQuality int    `yaml:"jpeg_quality"`
		Width       int    `yaml:"width"`
		Height      int    `yaml:"height"`
	} `yaml:"share"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// the service can run on defaults. SHARE_API_KEY overrides share.api_key.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if key := os.Getenv("SHARE_API_KEY"); key != "" {
		cfg.Share.APIKey = key
	}
	return cfg, nil
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

// SessionTTL is how long an untouched session lives. session.ttl wins over
// the older redis.ttl key.
func (c Config) SessionTTL() time.Duration {
	if c.Session.TTL != "" {
		return TTLDuration(c.Session.TTL, 30*time.Minute)
	}
	return TTLDuration(c.Redis.TTL, 30*time.Minute)
}

func (c Config) SweepInterval() time.Duration {
	return TTLDuration(c.Session.SweepInterval, time.Minute)
}
