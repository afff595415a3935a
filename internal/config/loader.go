package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/spritecore/internal/canvas"
)

// Environment variables applied on top of the loaded file.
const (
	EnvMaxEntities   = "SPRITECORE_MAX_ENTITIES"
	EnvCanvasMode    = "SPRITECORE_CANVAS_MODE"
	EnvMetricsListen = "SPRITECORE_METRICS_LISTEN"
	EnvDB            = "SPRITECORE_DB"
)

// Load loads the engine configuration.
// Search order: customPath -> ~/.spritecore/configs/engine.yaml -> ./configs/engine.yaml -> embedded default
// Keys missing from the file keep their default values. Environment
// overrides are applied last and the result is validated.
func Load(customPath string) (EngineConfig, error) {
	cfg, err := load(customPath)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func load(customPath string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("engine.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultEngineConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/engine.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultEngineConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultEngineYAML, &cfg); err != nil {
		return DefaultEngineConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".spritecore", "configs", filename)
}

// ApplyEnv overrides cfg fields from SPRITECORE_* environment variables.
func ApplyEnv(cfg *EngineConfig) error {
	if val := os.Getenv(EnvMaxEntities); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxEntities, val, err)
		}
		cfg.Budgets.MaxEntities = n
	}
	if val := os.Getenv(EnvCanvasMode); val != "" {
		cfg.Canvas.Mode = val
	}
	if val := os.Getenv(EnvMetricsListen); val != "" {
		cfg.Metrics.Listen = val
	}
	if val := os.Getenv(EnvDB); val != "" {
		cfg.Storage.Path = val
	}
	return nil
}

// Validate rejects configurations the engine cannot run with.
func (c EngineConfig) Validate() error {
	var errs []error
	if c.Budgets.MaxEntities <= 0 {
		errs = append(errs, fmt.Errorf("budgets.max_entities must be positive, got %d", c.Budgets.MaxEntities))
	}
	if c.Budgets.MaxTextures <= 0 {
		errs = append(errs, fmt.Errorf("budgets.max_textures must be positive, got %d", c.Budgets.MaxTextures))
	}
	if c.Budgets.MaxCallsPerFrame <= 0 {
		errs = append(errs, fmt.Errorf("budgets.max_calls_per_frame must be positive, got %d", c.Budgets.MaxCallsPerFrame))
	}
	if c.Timing.FixedDT <= 0 {
		errs = append(errs, fmt.Errorf("timing.fixed_dt must be positive, got %v", c.Timing.FixedDT))
	}
	if c.Timing.MaxFrameDelta < c.Timing.FixedDT {
		errs = append(errs, fmt.Errorf("timing.max_frame_delta (%v) must be at least fixed_dt (%v)", c.Timing.MaxFrameDelta, c.Timing.FixedDT))
	}
	if c.Canvas.PixelsPerUnit < 0 {
		errs = append(errs, fmt.Errorf("canvas.pixels_per_unit must not be negative, got %v", c.Canvas.PixelsPerUnit))
	}
	if _, err := canvas.ParseMode(c.Canvas.Mode); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
