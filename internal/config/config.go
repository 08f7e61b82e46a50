package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"canchero/internal/grid"
)

type Config struct {
	Server struct {
		Port           int    `yaml:"port"`
		APIKey         string `yaml:"api_key"`
		RateLimitRPS   int    `yaml:"rate_limit_rps"`
		RateLimitBurst int    `yaml:"rate_limit_burst"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Telegram struct {
		BotToken     string  `yaml:"bot_token"`
		OwnerChatIDs []int64 `yaml:"owner_chat_ids"`
	} `yaml:"telegram"`

	Booking struct {
		MaxAdvanceDays int `yaml:"max_advance_days"`
	} `yaml:"booking"`

	Grid struct {
		OpenHour  int `yaml:"open_hour"`
		CloseHour int `yaml:"close_hour"`
	} `yaml:"grid"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitRPS <= 0 {
		c.Server.RateLimitRPS = 20
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 40
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/canchero.db"
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9091
	}
	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = 30
	}
	if c.Grid.OpenHour == 0 && c.Grid.CloseHour == 0 {
		c.Grid.OpenHour = grid.DefaultOpenHour
		c.Grid.CloseHour = grid.DefaultCloseHour
	}
}
