package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter mirrors frame metrics into prometheus collectors. Each Exporter
// owns a private registry so several engines can live in one process.
type Exporter struct {
	registry *prometheus.Registry

	frameDuration   prometheus.Histogram
	framesTotal     prometheus.Counter
	drawCalls       prometheus.Gauge
	sprites         prometheus.Gauge
	skipped         prometheus.Gauge
	exchangeCalls   prometheus.Gauge
	watchdogSpikes  prometheus.Counter
	droppedWarnings prometheus.Counter
}

// NewExporter creates an Exporter with its own registry.
func NewExporter() *Exporter {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Exporter{
		registry: reg,
		frameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spritecore_frame_cpu_seconds",
			Help:    "CPU time spent building a frame",
			Buckets: []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.0166, 0.033, 0.1},
		}),
		framesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "spritecore_frames_total",
			Help: "Frames completed",
		}),
		drawCalls: f.NewGauge(prometheus.GaugeOpts{
			Name: "spritecore_draw_calls",
			Help: "Draw batches in the last frame",
		}),
		sprites: f.NewGauge(prometheus.GaugeOpts{
			Name: "spritecore_sprites_drawn",
			Help: "Sprites drawn in the last frame",
		}),
		skipped: f.NewGauge(prometheus.GaugeOpts{
			Name: "spritecore_sprites_skipped",
			Help: "Sprites without a transform in the last frame",
		}),
		exchangeCalls: f.NewGauge(prometheus.GaugeOpts{
			Name: "spritecore_exchange_calls",
			Help: "Exchange submissions in the last frame",
		}),
		watchdogSpikes: f.NewCounter(prometheus.CounterOpts{
			Name: "spritecore_watchdog_spikes_total",
			Help: "Script ticks that ran over the watchdog budget",
		}),
		droppedWarnings: f.NewCounter(prometheus.CounterOpts{
			Name: "spritecore_watchdog_warnings_dropped_total",
			Help: "Watchdog warnings suppressed by the log throttle",
		}),
	}
}

// Observe records one completed frame.
func (e *Exporter) Observe(f Frame) {
	e.frameDuration.Observe(f.CPUFrameMS / 1000)
	e.framesTotal.Inc()
	e.drawCalls.Set(float64(f.DrawCalls))
	e.sprites.Set(float64(f.SpritesSubmitted))
	e.skipped.Set(float64(f.SpritesSkipped))
	e.exchangeCalls.Set(float64(f.ExchangeCalls))
	e.watchdogSpikes.Add(float64(f.WatchdogSpikes))
	e.droppedWarnings.Add(float64(f.DroppedWarnings))
}

// Registry returns the private registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
