package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the precheck configuration. Fields are named so the
// zero value of every bool is the default behavior.
type Config struct {
	Threshold          int           `yaml:"threshold"`
	Format             string        `yaml:"format"`
	WithTests          bool          `yaml:"withTests"`
	TaskTimeoutSeconds int           `yaml:"taskTimeoutSeconds"`
	DetectDepth        int           `yaml:"detectDepth"`
	RulesFile          string        `yaml:"rulesFile,omitempty"`
	DisabledTasks      []string      `yaml:"disabledTasks,omitempty"`
	History            HistoryConfig `yaml:"history"`
}

// HistoryConfig controls run-history persistence.
type HistoryConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Threshold:          80,
		Format:             "text",
		TaskTimeoutSeconds: 60,
		DetectDepth:        3,
	}
}

// ConfigDir returns the platform-appropriate config directory for precheck.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "precheck"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "precheck"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "precheck"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "precheck"), nil
	default:
		return filepath.Join(home, ".config", "precheck"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only explicitly set values should be present).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Threshold > 0 {
		dst.Threshold = src.Threshold
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.TaskTimeoutSeconds > 0 {
		dst.TaskTimeoutSeconds = src.TaskTimeoutSeconds
	}
	if src.DetectDepth > 0 {
		dst.DetectDepth = src.DetectDepth
	}
	if src.RulesFile != "" {
		dst.RulesFile = src.RulesFile
	}
	if len(src.DisabledTasks) > 0 {
		dst.DisabledTasks = src.DisabledTasks
	}
	if src.History.Path != "" {
		dst.History.Path = src.History.Path
	}
	dst.WithTests = dst.WithTests || src.WithTests
	dst.History.Disabled = dst.History.Disabled || src.History.Disabled
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("PRECHECK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Threshold = n
		}
	}
	if v := os.Getenv("PRECHECK_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("PRECHECK_WITH_TESTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.WithTests = b
		}
	}
	if v := os.Getenv("PRECHECK_TASK_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TaskTimeoutSeconds = n
		}
	}
	if v := os.Getenv("PRECHECK_DETECT_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DetectDepth = n
		}
	}
	if v := os.Getenv("PRECHECK_RULES_FILE"); v != "" {
		cfg.RulesFile = v
	}
	if v := os.Getenv("PRECHECK_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	if overrides == nil {
		return nil
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is
// unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "threshold":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("threshold must be an integer: %w", err)
		}
		if n < 0 || n > 100 {
			return fmt.Errorf("threshold must be between 0 and 100, got %d", n)
		}
		cfg.Threshold = n
	case "format":
		cfg.Format = value
	case "withTests":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("withTests must be a boolean: %w", err)
		}
		cfg.WithTests = b
	case "taskTimeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("taskTimeout must be an integer: %w", err)
		}
		cfg.TaskTimeoutSeconds = n
	case "detectDepth":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("detectDepth must be an integer: %w", err)
		}
		cfg.DetectDepth = n
	case "rulesFile":
		cfg.RulesFile = value
	case "historyPath":
		cfg.History.Path = value
	case "historyDisabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("historyDisabled must be a boolean: %w", err)
		}
		cfg.History.Disabled = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
