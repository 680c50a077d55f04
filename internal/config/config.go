package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Granola       Granola       `yaml:"granola"`
	Summarization Summarization `yaml:"summarization"`
	Output        Output        `yaml:"output"`
	Server        Server        `yaml:"server"`
	Schedule      Schedule      `yaml:"schedule"`
	Logging       Logging       `yaml:"logging"`
}

type Granola struct {
	Folder             string `yaml:"folder" env:"GRANOLA_FOLDER"`
	BaseURL            string `yaml:"base_url"`
	IncludeTranscripts bool   `yaml:"include_transcripts"`
	AccessToken        string `yaml:"-" env:"GRANOLA_ACCESS_TOKEN"`
}

type Summarization struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	MaxTokens       int    `yaml:"max_tokens"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
}

type Output struct {
	Dir    string `yaml:"dir" env:"WEEKLYNOTES_OUTPUT_DIR"`
	Format string `yaml:"format"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Schedule struct {
	Cron string `yaml:"cron"`
}

type Logging struct {
	File string `yaml:"file"`
}

// ConfigDir returns the XDG config directory for weeklynotes.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "weeklynotes")
}

// DataDir returns the XDG data directory for weeklynotes.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "weeklynotes")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/weeklynotes/config.yaml > ./config.yaml
// It returns "" when no file exists; the embedded defaults apply then.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file, then applies the environment.
// An empty path loads the embedded defaults.
func Load(path string) (*Config, error) {
	data := DefaultConfigYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored and real variables win.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("loading %s: %w", file, err)
	}
	return nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Granola: Granola{
			Folder:  "crm-shared",
			BaseURL: "https://api.granola.ai",
		},
		Summarization: Summarization{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Output:   Output{Format: "json"},
		Server:   Server{Port: 8000},
		Schedule: Schedule{Cron: "0 9 * * 1"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// applyEnv overlays the environment variables named in the env tags.
// Unset variables keep the file's values.
func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// APIKey returns the key for the configured summarization provider.
func (c *Config) APIKey() string {
	if c.Summarization.Provider == "openai" {
		return c.Summarization.OpenAIAPIKey
	}
	return c.Summarization.AnthropicAPIKey
}

// GetOutputDir returns the effective report directory from config or the
// XDG default.
func (c *Config) GetOutputDir() string {
	if c.Output.Dir != "" {
		return c.Output.Dir
	}
	return filepath.Join(DataDir(), "summaries")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
