package config

import (
	_ "embed"

	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/metrics"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

// DefaultEngineConfig returns the hardcoded engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Budgets: BudgetsConfig{
			MaxEntities:      core.DefaultMaxEntities,
			MaxTextures:      core.DefaultMaxTextures,
			MaxCallsPerFrame: core.DefaultMaxCallsPerFrame,
		},
		Timing: TimingConfig{
			FixedDT:       core.DefaultFixedDT,
			MaxFrameDelta: core.DefaultMaxFrameDelta,
			WatchdogMS:    core.DefaultWatchdogMS,
		},
		Canvas: CanvasConfig{
			Mode:       "pixel_exact",
			ClearColor: [4]float32{0, 0, 0, 1},
		},
		Metrics: MetricsConfig{
			History:      metrics.DefaultHistory,
			P99BudgetMS:  metrics.DefaultP99BudgetMS,
			MeanBudgetMS: metrics.DefaultMeanBudgetMS,
			CheckEvery:   metrics.DefaultCheckEvery,
		},
		Storage: StorageConfig{
			Path: "~/.spritecore/spritecore.db",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultEngineYAML
}
