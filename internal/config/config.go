package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/fehbrank/internal/model"
)

// Config holds all fehbrank configuration.
type Config struct {
	General     GeneralConfig       `toml:"general"`
	Household   model.Household     `toml:"household"`
	Assumptions AssumptionOverrides `toml:"assumptions"`
	AddOns      AddOnConfig         `toml:"addons"`
	Appearance  AppearanceConfig    `toml:"appearance"`
	Log         LogConfig           `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataPath       string `toml:"data_path,omitempty"`
	TopN           int    `toml:"top_n"`
	Utilization    string `toml:"utilization"`
	NationwideOnly bool   `toml:"nationwide_only"`
}

// AddOnConfig selects FEDVIP dental and vision coverage added to every
// medical plan's total. A plan ID takes precedence over a monthly amount.
type AddOnConfig struct {
	DentalPlan    string   `toml:"dental_plan,omitempty"`
	VisionPlan    string   `toml:"vision_plan,omitempty"`
	DentalMonthly *float64 `toml:"dental_monthly,omitempty"`
	VisionMonthly *float64 `toml:"vision_monthly,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			TopN:        10,
			Utilization: string(model.UtilizationModerate),
		},
		Household: model.Household{
			Enrollment: model.SelfOnly,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fehbrank")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fehbrank")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file at path on top of the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// DataPath returns the dataset location from env var or config, in that order.
// Empty means the bundled sample dataset.
func DataPath(cfg Config) string {
	if p := os.Getenv("FEHBRANK_DATA"); p != "" {
		return p
	}
	return cfg.General.DataPath
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
