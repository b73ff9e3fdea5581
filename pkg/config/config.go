package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/scheduler"
)

// DotEnvPaths are tried in order; the first file that exists is loaded
var DotEnvPaths = []string{".env", "../.env", "../../.env"}

type Config struct {
	Port    string `env:"PORT" envDefault:"8000"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`
	Log     struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"text"`
	} `envPrefix:"LOG_"`
	RulesFile      string `env:"RULES_FILE"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"1048576"`
}

// LoadDotEnv loads the first .env file found and returns its path, or "" if none exists
func LoadDotEnv(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return p
		}
	}
	return ""
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// first error only, keeps the log line readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// Rules loads the engine rules named by RULES_FILE, or the defaults
func (c *Config) Rules() (scheduler.Rules, error) {
	return LoadRules(c.RulesFile)
}

// LoadRules reads a YAML rules file over the default rules. Keys missing from
// the file keep their default values. An empty path returns the defaults.
func LoadRules(path string) (scheduler.Rules, error) {
	rules := scheduler.DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("reading rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return rules, err
	}
	return rules, nil
}
