package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultPort           = 8080
	DefaultMaxUploadBytes = 10 << 20
	DefaultDiagramWidth   = 800
	DefaultDiagramHeight  = 600
)

// Config is the service configuration. Values come from an optional YAML
// file and are then overridden by environment variables.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Gemini struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`

	Prompt struct {
		Path string `yaml:"path"`
	} `yaml:"prompt"`

	Upload struct {
		MaxBytes int64 `yaml:"maxBytes"`
	} `yaml:"upload"`

	Diagram struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"diagram"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
}

// Default returns a Config with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = DefaultPort
	cfg.Gemini.Model = DefaultModel
	cfg.Upload.MaxBytes = DefaultMaxUploadBytes
	cfg.Diagram.Width = DefaultDiagramWidth
	cfg.Diagram.Height = DefaultDiagramHeight
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CORS.AllowedOrigins = []string{"*"}
	return cfg
}

// LoadDotEnv loads a .env file into the process environment. It reports
// whether a file was found; a missing file is not an error.
func LoadDotEnv(paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load env file: %w", err)
	}
	return true, nil
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("GEMINI_API_KEY", &c.Gemini.APIKey)
	str("GEMINI_MODEL", &c.Gemini.Model)
	str("PROMPT_PATH", &c.Prompt.Path)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if err := num("PORT", &c.Server.Port); err != nil {
		return err
	}
	if err := num("DIAGRAM_WIDTH", &c.Diagram.Width); err != nil {
		return err
	}
	if err := num("DIAGRAM_HEIGHT", &c.Diagram.Height); err != nil {
		return err
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		c.Upload.MaxBytes = n
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	return nil
}

// Validate checks the values every command needs. requireAPIKey is set by
// commands that call the model.
func (c *Config) Validate(requireAPIKey bool) error {
	var problems []string
	if requireAPIKey && c.Gemini.APIKey == "" {
		problems = append(problems, "GEMINI_API_KEY must be set")
	}
	if c.Gemini.Model == "" {
		problems = append(problems, "gemini model must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("port %d out of range", c.Server.Port))
	}
	if c.Upload.MaxBytes <= 0 {
		problems = append(problems, "max upload bytes must be positive")
	}
	if c.Diagram.Width <= 0 || c.Diagram.Height <= 0 {
		problems = append(problems, "diagram canvas must be positive")
	} else if c.Diagram.Width*3 != c.Diagram.Height*4 {
		problems = append(problems, fmt.Sprintf("diagram canvas %dx%d is not 4:3", c.Diagram.Width, c.Diagram.Height))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// APIConfigured reports whether a Gemini key is present.
func (c *Config) APIConfigured() bool {
	return c.Gemini.APIKey != ""
}
