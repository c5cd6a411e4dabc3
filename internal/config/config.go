package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string `yaml:"port"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
		CORSOrigin     string `yaml:"cors_origin"`
	} `yaml:"server"`
	Admin struct {
		Token string `yaml:"token"`
	} `yaml:"admin"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		Retention string `yaml:"retention"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		CacheTTL string `yaml:"cache_ttl"`
		Seed     bool   `yaml:"seed"`
	} `yaml:"catalog"`
	Session struct {
		DefaultTTLMinutes int    `yaml:"default_ttl_minutes"`
		Retention         string `yaml:"retention"`
		LockQuiz          bool   `yaml:"lock_quiz"`
	} `yaml:"session"`
	Media struct {
		Dir            string `yaml:"dir"`
		Transform      string `yaml:"transform"`
		PortraitWidth  int    `yaml:"portrait_width"`
		PortraitHeight int    `yaml:"portrait_height"`
	} `yaml:"media"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		Production bool   `yaml:"production"`
	} `yaml:"log"`
}

// DefaultAdminToken is used when neither the file nor ADMIN_TOKEN sets one.
const DefaultAdminToken = "dev-admin-token"

// Load reads YAML config from path, then applies environment overrides
// and defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	cfg.Catalog.Seed = true
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		c.Admin.Token = token
	}
}

func (c *Config) applyDefaults() {
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 10 << 20
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = "*"
	}
	if c.Admin.Token == "" {
		c.Admin.Token = DefaultAdminToken
	}
	if c.Session.DefaultTTLMinutes <= 0 {
		c.Session.DefaultTTLMinutes = 60
	}
	if c.Media.Dir == "" {
		c.Media.Dir = "storage"
	}
	if c.Media.Transform == "" {
		c.Media.Transform = "portrait"
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
