package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Listen         string `yaml:"listen"`
		ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
		WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	} `yaml:"server"`

	Directions struct {
		BaseURL     string `yaml:"base_url"`
		AccessToken string `yaml:"access_token"`
		TimeoutMs   int    `yaml:"timeout_ms"`
		Profile     string `yaml:"profile"`
		Locale      string `yaml:"locale"`
	} `yaml:"directions"`

	LocalEngine struct {
		// DatasetDir is the directory holding the locally loaded routing
		// dataset. Empty disables the offline fallback.
		DatasetDir   string `yaml:"dataset_dir"`
		SpeechLocale string `yaml:"speech_locale"`
	} `yaml:"local_engine"`

	TrafficDump struct {
		Enabled     bool   `yaml:"enabled"`
		Dir         string `yaml:"dir"`
		MaxBytes    int    `yaml:"max_bytes"`
		MaskSecrets bool   `yaml:"mask_secrets"`
	} `yaml:"traffic_dump"`

	Logging struct {
		Level     string `yaml:"level"`
		AccessLog bool   `yaml:"access_log"`
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		cfg.Server.Listen = ":3400"
	}
	if cfg.Server.ReadTimeoutMs <= 0 {
		cfg.Server.ReadTimeoutMs = 60000
	}
	if cfg.Server.WriteTimeoutMs <= 0 {
		cfg.Server.WriteTimeoutMs = 60000
	}
	if cfg.Directions.TimeoutMs <= 0 {
		cfg.Directions.TimeoutMs = 30000
	}
	if strings.TrimSpace(cfg.Directions.Profile) == "" {
		cfg.Directions.Profile = "driving"
	}
	if strings.TrimSpace(cfg.LocalEngine.SpeechLocale) == "" {
		cfg.LocalEngine.SpeechLocale = "en-US"
	}
	if strings.TrimSpace(cfg.TrafficDump.Dir) == "" {
		cfg.TrafficDump.Dir = "./dumps"
	}
	if cfg.TrafficDump.MaxBytes == 0 {
		cfg.TrafficDump.MaxBytes = 1 * 1024 * 1024
	}
	// default true
	if !cfg.TrafficDump.MaskSecrets {
		cfg.TrafficDump.MaskSecrets = true
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	// default true for local debugging
	if !cfg.Logging.AccessLog {
		cfg.Logging.AccessLog = true
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("RDB_LISTEN")); v != "" {
		cfg.Server.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("RDB_BASE_URL")); v != "" {
		cfg.Directions.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("RDB_ACCESS_TOKEN")); v != "" {
		cfg.Directions.AccessToken = v
	}
	if v := strings.TrimSpace(os.Getenv("RDB_DATASET_DIR")); v != "" {
		cfg.LocalEngine.DatasetDir = v
	}
	cfg.TrafficDump.Enabled = envBool("RDB_TRAFFIC_DUMP_ENABLED", cfg.TrafficDump.Enabled)
	if v := strings.TrimSpace(os.Getenv("RDB_TRAFFIC_DUMP_DIR")); v != "" {
		cfg.TrafficDump.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("RDB_TRAFFIC_DUMP_MAX_BYTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TrafficDump.MaxBytes = n
		}
	}
	cfg.TrafficDump.MaskSecrets = envBool("RDB_TRAFFIC_DUMP_MASK_SECRETS", cfg.TrafficDump.MaskSecrets)
	if v := strings.TrimSpace(os.Getenv("RDB_READ_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.ReadTimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("RDB_WRITE_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.WriteTimeoutMs = n
		}
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Directions.BaseURL) == "" {
		return errors.New("directions.base_url is required (or set RDB_BASE_URL)")
	}
	if strings.TrimSpace(cfg.Directions.AccessToken) == "" {
		return errors.New("directions.access_token is required (or set RDB_ACCESS_TOKEN)")
	}
	if cfg.TrafficDump.MaxBytes < 0 {
		return errors.New("traffic_dump.max_bytes must be non-negative")
	}
	return nil
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
