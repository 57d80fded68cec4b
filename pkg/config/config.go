package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	LLM     LLMConfig    `yaml:"llm"`
	Log     LogConfig    `yaml:"log"`
	Retry   RetryConfig  `yaml:"retry"`
	Rate    RateConfig   `yaml:"rate"`
	Tokens  TokensConfig `yaml:"tokens"`
	Matrix  MatrixConfig `yaml:"matrix"`
	DataDir string       `yaml:"data_dir"`
}

// LLMConfig holds text-generation service settings.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// RetryConfig holds the generation retry policy.
type RetryConfig struct {
	MaxAttempts  int `yaml:"max_attempts"`
	DelaySeconds int `yaml:"delay_seconds"`
}

// RateConfig holds request pacing settings for the generation client.
type RateConfig struct {
	RPM   int `yaml:"rpm"`
	Burst int `yaml:"burst"`
}

// TokensConfig holds per-stage output token budgets.
type TokensConfig struct {
	Analysis     int `yaml:"analysis"`
	Personas     int `yaml:"personas"`
	Axes         int `yaml:"axes"`
	Matrix       int `yaml:"matrix"`
	Review       int `yaml:"review"`
	Discussion   int `yaml:"discussion"`
	QA           int `yaml:"qa"`
	Modification int `yaml:"modification"`
}

// MatrixConfig holds matrix generation settings.
type MatrixConfig struct {
	DefaultPersonas int      `yaml:"default_personas"`
	AgeRanges       []string `yaml:"age_ranges"`
}

// Load reads configuration from a YAML file with environment variable
// overrides and default values for anything unset.
func Load(configPath string) (cfg Config, err error) {
	path := configPath
	if path == "" {
		var homeDir string
		homeDir, err = os.UserHomeDir()
		if err != nil {
			err = errors.Wrap(err, "failed to get user home directory")
			return cfg, err
		}
		path = filepath.Join(homeDir, ".persona-matrix", "config.yaml")
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && configPath == "" {
			// No config file is fine as long as the API key comes from the
			// environment.
			cfg = applyDefaults(cfg)
			err = validate(cfg)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	cfg = applyDefaults(cfg)
	err = validate(cfg)

	return cfg, err
}

// applyDefaults fills unset fields, including the API key from the environment.
func applyDefaults(in Config) (cfg Config) {
	cfg = in

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("PERSONA_MATRIX_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 1.0
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.DelaySeconds == 0 {
		cfg.Retry.DelaySeconds = 2
	}

	if cfg.Rate.RPM == 0 {
		cfg.Rate.RPM = 60
	}
	if cfg.Rate.Burst == 0 {
		cfg.Rate.Burst = 5
	}

	if cfg.Tokens.Analysis == 0 {
		cfg.Tokens.Analysis = 3000
	}
	if cfg.Tokens.Personas == 0 {
		cfg.Tokens.Personas = 4000
	}
	if cfg.Tokens.Axes == 0 {
		cfg.Tokens.Axes = 6000
	}
	if cfg.Tokens.Matrix == 0 {
		cfg.Tokens.Matrix = 16384
	}
	if cfg.Tokens.Review == 0 {
		cfg.Tokens.Review = 6000
	}
	if cfg.Tokens.Discussion == 0 {
		cfg.Tokens.Discussion = 5000
	}
	if cfg.Tokens.QA == 0 {
		cfg.Tokens.QA = 3000
	}
	if cfg.Tokens.Modification == 0 {
		cfg.Tokens.Modification = 4000
	}

	if cfg.Matrix.DefaultPersonas == 0 {
		cfg.Matrix.DefaultPersonas = 3
	}
	if len(cfg.Matrix.AgeRanges) == 0 {
		cfg.Matrix.AgeRanges = []string{"25-29", "30-39", "40-49"}
	}

	if cfg.DataDir == "" {
		homeDir, homeErr := os.UserHomeDir()
		if homeErr == nil {
			cfg.DataDir = filepath.Join(homeDir, ".persona-matrix")
		} else {
			cfg.DataDir = ".persona-matrix"
		}
	}

	return cfg
}

// validate checks required configuration values.
func validate(cfg Config) (err error) {
	if cfg.LLM.APIKey == "" {
		err = errors.New("api key not configured: set llm.api_key or the PERSONA_MATRIX_API_KEY environment variable")
		return err
	}
	return err
}
