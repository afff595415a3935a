package core

// Record strides of the flat exchange formats.
const (
	TransformStride = 6  // id, x, y, rotation, scale_x, scale_y
	SpriteStride    = 11 // id, texture, u0, v0, u1, v1, r, g, b, a, z
)

// Default budgets for a FrameState and the frame loop.
const (
	DefaultMaxEntities      = 10000
	DefaultMaxTextures      = 1000
	DefaultMaxCallsPerFrame = 3
	DefaultFixedDT          = 1.0 / 60.0
	DefaultMaxFrameDelta    = 0.25
	DefaultWatchdogMS       = 2.0
)

// Budgets bounds the size of the authoritative frame tables.
// Entity and transform excess is truncated; texture excess is rejected.
type Budgets struct {
	MaxEntities      int // Transform rows kept per write
	MaxTextures      int // Texture slots before registration fails
	MaxCallsPerFrame int // Advisory exchange calls per frame
}

// DefaultBudgets returns the stock capacity budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		MaxEntities:      DefaultMaxEntities,
		MaxTextures:      DefaultMaxTextures,
		MaxCallsPerFrame: DefaultMaxCallsPerFrame,
	}
}

// RuntimeConfig contains the timing parameters of the frame loop.
type RuntimeConfig struct {
	FixedDT       float64 // Logic tick length in seconds
	MaxFrameDelta float64 // Wall delta clamp in seconds
	WatchdogMS    float64 // Script tick duration that triggers a warning
	Seed          int64   // Seed handed to scripts for deterministic runs
}

// DefaultConfig returns a RuntimeConfig with the stock timing.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		FixedDT:       DefaultFixedDT,
		MaxFrameDelta: DefaultMaxFrameDelta,
		WatchdogMS:    DefaultWatchdogMS,
		Seed:          1,
	}
}
