package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"dueline/internal/domain"
)

// Config models dueline.yml.
type Config struct {
	Dashboard struct {
		HorizonDays int    `yaml:"horizon_days" json:"horizon_days"`
		Timezone    string `yaml:"timezone" json:"timezone"`
		Locale      string `yaml:"locale" json:"locale"`
	} `yaml:"dashboard" json:"dashboard"`
	Store struct {
		File bool `yaml:"file" json:"file"`
		Seed bool `yaml:"seed" json:"seed"`
	} `yaml:"store" json:"store"`
	User   domain.UserProfile `yaml:"user" json:"user"`
	Server struct {
		Addr     string `yaml:"addr" json:"addr"`
		BasePath string `yaml:"base_path" json:"base_path"`
	} `yaml:"server" json:"server"`
	Export struct {
		Title string `yaml:"title" json:"title"`
	} `yaml:"export" json:"export"`
	Log struct {
		Level string `yaml:"level" json:"level"`
		JSON  bool   `yaml:"json" json:"json"`
	} `yaml:"log" json:"log"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with dueline config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Dashboard.HorizonDays < 1 || c.Dashboard.HorizonDays > 365 {
		return fmt.Errorf("config.dashboard.horizon_days must be between 1 and 365")
	}
	if c.Dashboard.Locale != "pt-BR" {
		return fmt.Errorf("config.dashboard.locale must be 'pt-BR'")
	}
	if c.Dashboard.Timezone != "" {
		if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
			return fmt.Errorf("config.dashboard.timezone: %w", err)
		}
	}
	if c.User.ID == "" {
		return fmt.Errorf("config.user.id is required")
	}
	if c.User.Name == "" {
		return fmt.Errorf("config.user.name is required")
	}
	switch c.User.Role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleAnalyst, domain.RoleAuditor:
	default:
		return fmt.Errorf("config.user.role %q is not one of admin, manager, analyst, auditor", c.User.Role)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.log.level %q is invalid", c.Log.Level)
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "dueline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Missing keys keep
// their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `dashboard:
  horizon_days: 7
  timezone: America/Sao_Paulo
  locale: pt-BR

store:
  # keep the database under .dueline/ instead of in memory
  file: false
  seed: true

user:
  id: "1"
  name: João Silva
  email: joao.silva@empresa.com
  role: admin

server:
  addr: 127.0.0.1:8080
  base_path: /v0

export:
  title: Relatório de Instrumentos Contratuais

log:
  level: info
  json: false
`
