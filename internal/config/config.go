package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/ganot/tally-mcp/internal/productive"
)

// ErrMissingCredentials is returned by Validate when the API token or the
// organization id is empty.
var ErrMissingCredentials = errors.New("missing Productive credentials")

// Transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config defines application configuration.
type Config struct {
	Productive ProductiveConfig `yaml:"productive"`
	View       ViewConfig       `yaml:"view"`
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
}

type ProductiveConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIToken string        `yaml:"api_token"`
	OrgID    string        `yaml:"org_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ViewConfig struct {
	SimplifyJiraLinks bool   `yaml:"simplify_jira_links"`
	VisibleSpanDays   int    `yaml:"visible_span_days"`
	Timezone          string `yaml:"timezone"`
}

type ServerConfig struct {
	Transport string `yaml:"transport"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	// AuthToken, when set, is required as a bearer token on HTTP requests.
	AuthToken string `yaml:"auth_token"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path redirects logs to a file instead of stderr.
	Path string `yaml:"path"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Productive: ProductiveConfig{
			BaseURL: productive.DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		View: ViewConfig{
			SimplifyJiraLinks: true,
			VisibleSpanDays:   7,
		},
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "127.0.0.1",
			Port:      8080,
		},
		DB: DBConfig{
			Path: "~/.tally/activity.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. path takes precedence over TALLY_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TALLY_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	dbPath, err := homedir.Expand(cfg.DB.Path)
	if err != nil {
		return Config{}, fmt.Errorf("expand db path: %w", err)
	}
	cfg.DB.Path = dbPath
	if cfg.Log.Path != "" {
		logPath, err := homedir.Expand(cfg.Log.Path)
		if err != nil {
			return Config{}, fmt.Errorf("expand log path: %w", err)
		}
		cfg.Log.Path = logPath
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TALLY_API_TOKEN"); v != "" {
		cfg.Productive.APIToken = v
	}
	if v := os.Getenv("TALLY_ORG_ID"); v != "" {
		cfg.Productive.OrgID = v
	}
	if v := os.Getenv("TALLY_API_BASE_URL"); v != "" {
		cfg.Productive.BaseURL = v
	}
	if v := os.Getenv("TALLY_SIMPLIFY_JIRA_LINKS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TALLY_SIMPLIFY_JIRA_LINKS: %w", err)
		}
		cfg.View.SimplifyJiraLinks = b
	}
	if v := os.Getenv("TALLY_VISIBLE_SPAN_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TALLY_VISIBLE_SPAN_DAYS: %w", err)
		}
		cfg.View.VisibleSpanDays = days
	}
	if v := os.Getenv("TALLY_TIMEZONE"); v != "" {
		cfg.View.Timezone = v
	}
	if v := os.Getenv("TALLY_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("TALLY_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TALLY_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TALLY_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("TALLY_AUTH_TOKEN"); v != "" {
		cfg.Server.AuthToken = v
	}
	if v := os.Getenv("TALLY_DB_PATH"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("TALLY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TALLY_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	return nil
}

// Validate checks the settings needed to talk to the API.
func (c Config) Validate() error {
	if c.Productive.APIToken == "" || c.Productive.OrgID == "" {
		return ErrMissingCredentials
	}
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport %q", c.Server.Transport)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone, defaulting to the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.View.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.View.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.View.Timezone, err)
	}
	return loc, nil
}

func loadFromFile(path string, cfg *Config) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
