package engine

import (
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/spritecore/internal/metrics"
)

// watchdog times script ticks. Slow ticks are counted and logged, never
// interrupted. Warnings go through a token bucket so a script that is slow
// on every tick does not flood the log.
type watchdog struct {
	budget  time.Duration
	limiter *rate.Limiter
	logger  *log.Logger
	metrics *metrics.Collector
	clock   func() time.Time
}

func newWatchdog(budgetMS float64, logger *log.Logger, m *metrics.Collector, clock func() time.Time) *watchdog {
	return &watchdog{
		budget:  time.Duration(budgetMS * float64(time.Millisecond)),
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:  logger,
		metrics: m,
		clock:   clock,
	}
}

// run calls fn and reports it when it overruns the budget.
func (w *watchdog) run(scriptID string, fn func() error) error {
	start := w.clock()
	err := fn()
	w.observe(scriptID, w.clock().Sub(start))
	return err
}

func (w *watchdog) observe(scriptID string, d time.Duration) {
	if w.budget <= 0 || d <= w.budget {
		return
	}
	w.metrics.RecordWatchdogSpike()
	if !w.limiter.Allow() {
		w.metrics.RecordDroppedWarning()
		return
	}
	w.logger.Warn("script tick over budget",
		"script", scriptID,
		"tick_ms", float64(d)/float64(time.Millisecond),
		"budget_ms", float64(w.budget)/float64(time.Millisecond),
	)
}
