package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/spritecore/internal/config"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/replay"
	"github.com/vovakirdan/spritecore/internal/script"
)

// funcScript adapts closures to script.Script.
type funcScript struct {
	id     string
	start  func(h script.Host) error
	update func(h script.Host, dt float64) error
}

func (s *funcScript) ID() string { return s.id }
func (s *funcScript) Title() string { return "Test " + s.id }

func (s *funcScript) Start(h script.Host) error {
	if s.start == nil {
		return nil
	}
	return s.start(h)
}

func (s *funcScript) Update(h script.Host, dt float64) error {
	if s.update == nil {
		return nil
	}
	return s.update(h, dt)
}

func newEngine(t *testing.T, s script.Script) *Engine {
	t.Helper()
	e, err := New(s, Options{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return e
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.Budgets.MaxEntities = -1
	if _, err := New(&funcScript{id: "x"}, Options{Config: cfg}); err == nil {
		t.Error("New() with bad budget = nil error")
	}
	if _, err := New(nil, Options{}); err == nil {
		t.Error("New(nil) = nil error")
	}
}

func TestStepBeforeStart(t *testing.T) {
	e, err := New(&funcScript{id: "x"}, Options{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := e.Step(1.0 / 60); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Step() error = %v, expected ErrNotStarted", err)
	}
}

func TestStepRunsFixedTicks(t *testing.T) {
	var dts []float64
	e := newEngine(t, &funcScript{id: "ticks", update: func(h script.Host, dt float64) error {
		dts = append(dts, dt)
		return nil
	}})

	f, err := e.Step(3.5 / 64)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	// Default fixed dt is 1/60, so 3.5/64 s holds 3 ticks.
	if f.Ticks != 3 || len(dts) != 3 {
		t.Errorf("Ticks = %d (%d calls), expected 3", f.Ticks, len(dts))
	}
	if f.Number != 1 {
		t.Errorf("Number = %d, expected 1", f.Number)
	}
	if e.Time() <= 0 {
		t.Errorf("Time() = %v, expected > 0", e.Time())
	}
}

func TestStepPipeline(t *testing.T) {
	e := newEngine(t, &funcScript{
		id: "pipeline",
		start: func(h script.Host) error {
			id := h.CreateEntity()
			tex, err := h.RegisterTextureRGBA("white", 1, 1, []byte{255, 255, 255, 255})
			if err != nil {
				return err
			}
			return h.SubmitSprites([]float64{float64(id), float64(tex), 0, 0, 1, 1, 1, 1, 1, 1, 0})
		},
		update: func(h script.Host, dt float64) error {
			return h.SetTransforms([]float64{1, 10, 10, 0, 4, 4})
		},
	})

	f, err := e.Step(1.0 / 60)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if f.Stats.Sprites != 1 || len(f.Batches) != 1 || len(f.Vertices) != 4 {
		t.Errorf("frame = %+v, expected one quad in one batch", f.Stats)
	}
	if f.Hash != e.State().TransformHash() {
		t.Errorf("Hash = %d, expected state hash %d", f.Hash, e.State().TransformHash())
	}
	last := e.Metrics().Last()
	if last.ExchangeCalls != 2 || last.DrawCalls != 1 {
		t.Errorf("metrics = %+v, expected 2 exchange calls and 1 draw call", last)
	}
	if got := e.Host().Metrics(); got.DrawCalls != 1 || got.SpritesSubmitted != 1 {
		t.Errorf("Host().Metrics() = %+v", got)
	}
}

func TestSpritesPersistWithoutResubmission(t *testing.T) {
	e := newEngine(t, &funcScript{
		id: "persist",
		start: func(h script.Host) error {
			h.CreateEntity()
			return h.SubmitSprites([]float64{1, 1, 0, 0, 1, 1, 1, 1, 1, 1, 0})
		},
		update: func(h script.Host, dt float64) error {
			return h.SetTransforms([]float64{1, h.Time() * 10, 0, 0, 1, 1})
		},
	})
	for i := 0; i < 5; i++ {
		f, err := e.Step(1.0 / 60)
		if err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
		if f.Stats.Sprites != 1 {
			t.Fatalf("frame %d drew %d sprites, expected 1", f.Number, f.Stats.Sprites)
		}
	}
}

func TestScriptErrorsSurface(t *testing.T) {
	boom := errors.New("boom")
	e := newEngine(t, &funcScript{id: "err", update: func(script.Host, float64) error { return boom }})
	_, err := e.Step(1.0 / 60)
	if !errors.Is(err, boom) {
		t.Errorf("Step() error = %v, expected to wrap boom", err)
	}

	e2, err := New(&funcScript{id: "bad", start: func(script.Host) error { return boom }}, Options{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := e2.Start(); !errors.Is(err, boom) {
		t.Errorf("Start() error = %v, expected to wrap boom", err)
	}
}

func TestStrideErrorReachesScript(t *testing.T) {
	var got error
	e := newEngine(t, &funcScript{id: "stride", update: func(h script.Host, dt float64) error {
		got = h.SetTransforms(make([]float64, 7))
		return nil
	}})
	if _, err := e.Step(1.0 / 60); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if !errors.Is(got, core.ErrStrideMismatch) {
		t.Fatalf("SetTransforms(7) error = %v, expected stride mismatch", got)
	}
	if got.Error() != "ARG_ERROR: set_transforms stride mismatch (got=1, want=6)" {
		t.Errorf("Error() = %q", got.Error())
	}
}

func TestWatchdogCountsSlowTicks(t *testing.T) {
	// Every clock read advances 5ms, so each tick measures 5ms against a 2ms budget.
	now := time.Unix(0, 0)
	clock := func() time.Time {
		now = now.Add(5 * time.Millisecond)
		return now
	}
	e, err := New(&funcScript{id: "slow"}, Options{Clock: clock})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	spikes, dropped := 0, 0
	for i := 0; i < 10; i++ {
		if _, err := e.Step(1.0 / 60); err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
		spikes += e.Metrics().Last().WatchdogSpikes
		dropped += e.Metrics().Last().DroppedWarnings
	}
	if spikes != 10 {
		t.Errorf("watchdog spikes = %d, expected 10", spikes)
	}
	// Burst of 3 warnings, the rest are throttled.
	if dropped != 7 {
		t.Errorf("dropped warnings = %d, expected 7", dropped)
	}
}

func TestPersistRestore(t *testing.T) {
	store := &memStore{data: make(map[string]any)}
	s := &funcScript{id: "kv"}
	e, err := New(s, Options{Store: store})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	h := e.Host()

	if err := h.Persist("foo", 123); err != nil {
		t.Fatalf("Persist() failed: %v", err)
	}
	v, ok, err := h.Restore("foo")
	if err != nil || !ok || v != 123.0 {
		t.Errorf("Restore() = %v, %v, %v, expected 123", v, ok, err)
	}
	if store.data["kv/foo"] != 123.0 {
		t.Errorf("backing store = %v, expected write-through", store.data)
	}

	// A fresh engine over the same store sees the value.
	e2, _ := New(&funcScript{id: "kv"}, Options{Store: store})
	if v, ok, _ := e2.Host().Restore("foo"); !ok || v != 123.0 {
		t.Errorf("Restore() on new engine = %v, %v", v, ok)
	}

	if err := h.Persist("bad", []int{1}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Persist(slice) error = %v, expected invalid argument", err)
	}
	if _, ok, _ := h.Restore("missing"); ok {
		t.Error("Restore(missing) ok = true")
	}
}

type memStore struct{ data map[string]any }

func (m *memStore) Persist(ns, key string, v any) error {
	m.data[ns+"/"+key] = v
	return nil
}

func (m *memStore) Restore(ns, key string) (any, bool, error) {
	v, ok := m.data[ns+"/"+key]
	return v, ok, nil
}

func TestRecordAndReplay(t *testing.T) {
	mover := func() *funcScript {
		return &funcScript{
			id:    "mover",
			start: func(h script.Host) error { h.CreateEntity(); return nil },
			update: func(h script.Host, dt float64) error {
				x := 0.0
				if h.Input().Has("right") {
					x = 50
				}
				return h.SetTransforms([]float64{1, x + h.Time(), 0, 0, 1, 1})
			},
		}
	}

	var buf strings.Builder
	rec := newEngine(t, mover())
	rec.Record(&buf)
	for i := 0; i < 6; i++ {
		var in core.InputSnapshot
		if i%2 == 1 {
			in.Press("right")
		}
		rec.SetInput(in)
		if _, err := rec.Step(1.0 / 60); err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}

	player, err := replay.NewPlayer(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("NewPlayer() failed: %v", err)
	}
	rep := newEngine(t, mover())
	rep.Replay(player)
	if err := rep.RunFrames(6, nil); err != nil {
		t.Fatalf("replay diverged: %v", err)
	}
	if !player.Done() {
		t.Error("player not exhausted after replay")
	}

	// A different script diverges on the first frame.
	player, _ = replay.NewPlayer(strings.NewReader(buf.String()))
	other := newEngine(t, &funcScript{id: "other", update: func(h script.Host, dt float64) error {
		return h.SetTransforms([]float64{1, 999, 0, 0, 1, 1})
	}})
	other.Replay(player)
	err = other.RunFrames(6, nil)
	var mm *replay.MismatchError
	if !errors.As(err, &mm) || mm.Frame != 1 {
		t.Errorf("RunFrames() error = %v, expected mismatch at frame 1", err)
	}
}

func TestDeterministicHashes(t *testing.T) {
	run := func() []uint64 {
		e := newEngine(t, &funcScript{id: "det", update: func(h script.Host, dt float64) error {
			ts := h.Time()
			return h.SetTransforms([]float64{1, ts * 3, ts * 7, ts, 1, 1, 2, -ts, ts * ts, 0, 2, 2})
		}})
		var hashes []uint64
		for i := 0; i < 30; i++ {
			f, err := e.Step(1.0 / 60)
			if err != nil {
				return nil
			}
			hashes = append(hashes, f.Hash)
		}
		return hashes
	}
	a, b := run(), run()
	if len(a) != 30 {
		t.Fatalf("run produced %d hashes", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d hash differs: %d vs %d", i+1, a[i], b[i])
		}
	}
}

func TestReset(t *testing.T) {
	starts := 0
	e := newEngine(t, &funcScript{id: "reset", start: func(h script.Host) error {
		starts++
		h.CreateEntity()
		return h.SetTransforms([]float64{1, 0, 0, 0, 1, 1})
	}})
	if _, err := e.Step(1.0 / 60); err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if err := e.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if starts != 2 {
		t.Errorf("Start ran %d times, expected 2", starts)
	}
	if e.State().EntityCount() != 1 || e.Time() != 0 {
		t.Errorf("after Reset entities=%d time=%v", e.State().EntityCount(), e.Time())
	}
}

func TestRunRecord(t *testing.T) {
	e := newEngine(t, &funcScript{id: "summary", update: func(h script.Host, dt float64) error {
		return h.SetTransforms([]float64{1, 2, 3, 0, 1, 1})
	}})
	if err := e.RunFrames(5, nil); err != nil {
		t.Fatalf("RunFrames() failed: %v", err)
	}

	r := e.RunRecord()
	if r.Script != "summary" || r.Frames != 5 {
		t.Errorf("RunRecord() = %+v, expected script summary with 5 frames", r)
	}
	if r.TransformHash != e.State().TransformHash() {
		t.Errorf("TransformHash = %x, expected %x", r.TransformHash, e.State().TransformHash())
	}
}
