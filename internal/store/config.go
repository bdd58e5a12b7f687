package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"contentdesk/internal/perm"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileName = "config.toml"
	envConfigDir   = "CONTENTDESK_CONFIG_DIR"
)

type Config struct {
	// DBDir overrides the store directory (defaults to the config dir).
	DBDir string `toml:"db_dir"`
	// Actor is the acting actor id when --actor is not given.
	Actor string `toml:"actor"`
	// LogLevel is one of debug|info|warn|error.
	LogLevel string `toml:"log_level"`
	// ViewsPath points at a views.yaml overriding the built-in filter sections.
	ViewsPath string `toml:"views_path"`
	// DebounceMS is the schedule re-fetch debounce.
	DebounceMS int `toml:"debounce_ms"`

	Policy perm.Policy `toml:"policy"`
	TUI    TUIConfig   `toml:"tui"`
}

type TUIConfig struct {
	// Theme is one of auto|dark|light.
	Theme string `toml:"theme"`
	// Granularity is the schedule granularity the board opens in (day|week|month).
	Granularity string `toml:"granularity"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:   "info",
		DebounceMS: 300,
		TUI: TUIConfig{
			Theme:       "auto",
			Granularity: "week",
		},
	}
}

// Debounce returns the configured debounce, or zero to use the loader default.
func (c Config) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.contentdesk).
	if v := strings.TrimSpace(os.Getenv(envConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig reads the global config. A missing file yields the defaults.
func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return defaultConfig(), err
	}
	return readConfig(path)
}

// LoadOrCreate reads the config at path, writing the defaults first if it is missing.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	return readConfig(path)
}

func SaveConfig(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return writeConfig(path, cfg)
}

func readConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// Unique temp file + rename so CLI, TUI and web never see a torn config.
	return atomicWriteFile(dir, "config.toml.*.tmp", path, data, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
