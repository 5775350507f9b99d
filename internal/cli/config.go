package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"

	"caseboard/internal/history"
	"caseboard/internal/store"
)

// Config errors.
var (
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrDataDirEmpty       = errors.New("data_dir must not be empty")
	ErrBadLockTimeout     = errors.New("lock_timeout_ms must be positive")
	ErrBadHistoryDepth    = errors.New("history_depth must be positive")
)

// ConfigFileName is the project-level config file name.
const ConfigFileName = ".caseboard.json"

// Config holds all configuration options. Config files are JWCC (JSON with
// comments and trailing commas).
type Config struct {
	// From config files (serialized)
	DataDir       string `json:"data_dir"`
	Actor         string `json:"actor,omitempty"`
	LockTimeoutMS int    `json:"lock_timeout_ms,omitempty"`
	HistoryDepth  int    `json:"history_depth,omitempty"`
	Editor        string `json:"editor,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"`
	DataDirAbs   string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir:       ".caseboard",
		LockTimeoutMS: int(store.DefaultLockTimeout / time.Millisecond),
		HistoryDepth:  history.DefaultDepth,
	}
}

// LockTimeout returns the configured lock timeout as a duration.
func (c Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

// globalConfigPath returns $XDG_CONFIG_HOME/caseboard/config.json if set,
// otherwise ~/.config/caseboard/config.json, or empty when no home is known.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "caseboard", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "caseboard", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	DataDirOverride string            // --data-dir flag value; empty means no override
	ActorOverride   string            // --actor flag value; empty means no override
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/caseboard/config.json)
// 3. Project config file (.caseboard.json) or explicit -c path
// 4. CLI overrides.
//
// Actor falls back to $USER when nothing else names one. All paths in the
// returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadOptionalConfig(globalConfigPath(input.Env))
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.DataDirOverride != "" {
		cfg.DataDir = input.DataDirOverride
	}

	if input.ActorOverride != "" {
		cfg.Actor = input.ActorOverride
	}

	if cfg.Actor == "" {
		cfg.Actor = input.Env["USER"]
	}

	if cfg.Actor == "" {
		cfg.Actor = "unknown"
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.DataDir) {
		cfg.DataDirAbs = cfg.DataDir
	} else {
		cfg.DataDirAbs = filepath.Join(workDir, cfg.DataDir)
	}

	return cfg, nil
}

// loadProjectConfig loads .caseboard.json from the working directory, or an
// explicit config file which must exist.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		return loadOptionalConfig(filepath.Join(workDir, ConfigFileName))
	}

	cfgFile := configPath
	if !filepath.IsAbs(cfgFile) {
		cfgFile = filepath.Join(workDir, cfgFile)
	}

	if _, err := os.Stat(cfgFile); err != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, err)
	}

	return cfg, cfgFile, nil
}

// loadOptionalConfig loads a config file that may not exist. A missing file
// returns a zero config and an empty path.
func loadOptionalConfig(path string) (Config, string, error) {
	if path == "" {
		return Config{}, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, "", nil
		}

		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, path, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JWCC to plain JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JWCC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}

	if overlay.Actor != "" {
		base.Actor = overlay.Actor
	}

	if overlay.LockTimeoutMS != 0 {
		base.LockTimeoutMS = overlay.LockTimeoutMS
	}

	if overlay.HistoryDepth != 0 {
		base.HistoryDepth = overlay.HistoryDepth
	}

	if overlay.Editor != "" {
		base.Editor = overlay.Editor
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrDataDirEmpty
	}

	if cfg.LockTimeoutMS <= 0 {
		return ErrBadLockTimeout
	}

	if cfg.HistoryDepth <= 0 {
		return ErrBadHistoryDepth
	}

	return nil
}

// FormatConfig renders the serializable config fields as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(data), nil
}
