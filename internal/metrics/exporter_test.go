package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExporterObserve(t *testing.T) {
	e := NewExporter()
	e.Observe(Frame{CPUFrameMS: 2, DrawCalls: 4, SpritesSubmitted: 100, SpritesSkipped: 3, ExchangeCalls: 2, WatchdogSpikes: 1})
	e.Observe(Frame{CPUFrameMS: 1, DrawCalls: 5, SpritesSubmitted: 90, ExchangeCalls: 1, WatchdogSpikes: 2, DroppedWarnings: 1})

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"frames", testutil.ToFloat64(e.framesTotal), 2},
		{"draw calls", testutil.ToFloat64(e.drawCalls), 5},
		{"sprites", testutil.ToFloat64(e.sprites), 90},
		{"skipped", testutil.ToFloat64(e.skipped), 0},
		{"exchange calls", testutil.ToFloat64(e.exchangeCalls), 1},
		{"watchdog spikes", testutil.ToFloat64(e.watchdogSpikes), 3},
		{"dropped warnings", testutil.ToFloat64(e.droppedWarnings), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.expected {
				t.Errorf("%s = %v, expected %v", tc.name, tc.got, tc.expected)
			}
		})
	}
	if n := testutil.CollectAndCount(e.frameDuration); n != 1 {
		t.Errorf("CollectAndCount(frameDuration) = %d, expected 1", n)
	}
}

func TestExportersAreIndependent(t *testing.T) {
	a, b := NewExporter(), NewExporter()
	a.Observe(Frame{DrawCalls: 1})
	if got := testutil.ToFloat64(b.framesTotal); got != 0 {
		t.Errorf("second exporter saw %v frames, expected 0", got)
	}
}

func TestCollectorFeedsExporter(t *testing.T) {
	e := NewExporter()
	clock := &fakeClock{now: time.Unix(0, 0), step: time.Millisecond}
	c := New(Options{Exporter: e, Clock: clock.Now})
	runFrames(c, 3, 1)

	if got := testutil.ToFloat64(e.framesTotal); got != 3 {
		t.Errorf("frames_total = %v, expected 3", got)
	}
}

func TestExporterHandler(t *testing.T) {
	e := NewExporter()
	e.Observe(Frame{DrawCalls: 7})

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "spritecore_draw_calls 7") {
		t.Errorf("metrics output missing draw calls gauge:\n%s", body)
	}
}
