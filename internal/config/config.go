// Package config provides YAML-based engine configuration loading with
// environment overrides.
package config

import (
	"github.com/vovakirdan/spritecore/internal/canvas"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/metrics"
)

// EngineConfig contains all configuration for one engine instance.
type EngineConfig struct {
	Budgets BudgetsConfig `yaml:"budgets"`
	Timing  TimingConfig  `yaml:"timing"`
	Canvas  CanvasConfig  `yaml:"canvas"`
	Metrics MetricsConfig `yaml:"metrics"`
	Storage StorageConfig `yaml:"storage"`
}

// BudgetsConfig defines the hard and advisory frame budgets.
type BudgetsConfig struct {
	MaxEntities      int `yaml:"max_entities"`
	MaxTextures      int `yaml:"max_textures"`
	MaxCallsPerFrame int `yaml:"max_calls_per_frame"`
}

// TimingConfig defines the fixed step and watchdog parameters.
type TimingConfig struct {
	FixedDT       float64 `yaml:"fixed_dt"`
	MaxFrameDelta float64 `yaml:"max_frame_delta"`
	WatchdogMS    float64 `yaml:"watchdog_ms"`
}

// CanvasConfig defines the virtual canvas.
type CanvasConfig struct {
	Mode          string     `yaml:"mode"`
	PixelsPerUnit float32    `yaml:"pixels_per_unit"`
	ClearColor    [4]float32 `yaml:"clear_color"`
}

// MetricsConfig defines the soft performance budgets and the debug listener.
type MetricsConfig struct {
	History      int     `yaml:"history"`
	P99BudgetMS  float64 `yaml:"p99_budget_ms"`
	MeanBudgetMS float64 `yaml:"mean_budget_ms"`
	CheckEvery   int     `yaml:"check_every"`
	Listen       string  `yaml:"listen"`
}

// StorageConfig defines where the SQLite database lives.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// CoreBudgets converts the budgets section.
func (c EngineConfig) CoreBudgets() core.Budgets {
	return core.Budgets{
		MaxEntities:      c.Budgets.MaxEntities,
		MaxTextures:      c.Budgets.MaxTextures,
		MaxCallsPerFrame: c.Budgets.MaxCallsPerFrame,
	}
}

// Runtime converts the timing section.
func (c EngineConfig) Runtime() core.RuntimeConfig {
	return core.RuntimeConfig{
		FixedDT:       c.Timing.FixedDT,
		MaxFrameDelta: c.Timing.MaxFrameDelta,
		WatchdogMS:    c.Timing.WatchdogMS,
	}
}

// CanvasMode parses the configured canvas mode.
func (c EngineConfig) CanvasMode() (canvas.Mode, error) {
	return canvas.ParseMode(c.Canvas.Mode)
}

// ClearColor returns the configured clear color.
func (c EngineConfig) ClearColor() core.Color {
	cc := c.Canvas.ClearColor
	return core.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

// MetricsBudgets converts the metrics section.
func (c EngineConfig) MetricsBudgets() metrics.Budgets {
	return metrics.Budgets{
		P99MS:    c.Metrics.P99BudgetMS,
		MeanMS:   c.Metrics.MeanBudgetMS,
		MaxCalls: c.Budgets.MaxCallsPerFrame,
	}
}
