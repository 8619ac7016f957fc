package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "codegraph.yaml"

// Extractor configures one ingestion source. Language selects a built-in
// walker; Command runs an external one, with "{root}" replaced by the
// project root.
type Extractor struct {
	Name     string   `yaml:"name" validate:"required"`
	Language string   `yaml:"language" validate:"omitempty,oneof=python typescript"`
	Command  []string `yaml:"command" validate:"required_without=Language"`
}

type Config struct {
	Project struct {
		Root string `yaml:"root" validate:"required"`
	} `yaml:"project"`
	Extractors []Extractor `yaml:"extractors" validate:"required,min=1,dive"`
	Snapshot   struct {
		Path string `yaml:"path" validate:"required"`
	} `yaml:"snapshot"`
	Ingest struct {
		MaxLineBytes int `yaml:"max_line_bytes" validate:"gte=1024"`
	} `yaml:"ingest"`
	Server struct {
		HTTPAddr     string `yaml:"http_addr"`
		Watch        bool   `yaml:"watch"`
		MaxDiffBytes int    `yaml:"max_diff_bytes" validate:"gte=1"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=text json"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present:
// TypeScript then Python, both in-process, over the working directory.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Extractors = []Extractor{
		{Name: "typescript", Language: "typescript"},
		{Name: "python", Language: "python"},
	}
	cfg.Snapshot.Path = ".codegraph/graph.json"
	cfg.Ingest.MaxLineBytes = 4 << 20
	cfg.Server.Watch = true
	cfg.Server.MaxDiffBytes = 100 * 1024
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

var validate = validator.New()

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// 4. Validate
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CODEGRAPH_ROOT"); v != "" {
		cfg.Project.Root = v
	}
	if v := os.Getenv("CODEGRAPH_SNAPSHOT"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("CODEGRAPH_HTTP_ADDR"); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := os.Getenv("CODEGRAPH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CODEGRAPH_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CODEGRAPH_WATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CODEGRAPH_WATCH: %w", err)
		}
		cfg.Server.Watch = b
	}
	return nil
}
