package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"syshealth/internal/collector"
	"syshealth/internal/sampler"
	"syshealth/internal/snapshot"

	"go.uber.org/zap"
)

// fakeSource отдает фиксированные значения
type fakeSource struct {
	loads collector.LoadAverages
	mem   collector.MemoryInfo
}

func (f fakeSource) LoadAverages(context.Context) (collector.LoadAverages, error) {
	return f.loads, nil
}

func (f fakeSource) MemoryInfo(context.Context) (collector.MemoryInfo, error) {
	return f.mem, nil
}

// countingSampler публикует снимок с номером тика и может блокироваться
type countingSampler struct {
	store   *snapshot.Store
	ticks   atomic.Uint64
	running atomic.Int32
	overlap atomic.Bool

	// если не nil, тик ждет сигнала
	entered chan struct{}
	release chan struct{}
}

func (c *countingSampler) Tick(ctx context.Context) snapshot.Snapshot {
	if c.running.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.running.Add(-1)

	if c.entered != nil {
		c.entered <- struct{}{}
		<-c.release
	}

	s := snapshot.Snapshot{Tick: c.ticks.Add(1), DiskIOStatus: snapshot.DiskIODisabled}
	c.store.Publish(s)
	return s
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestScheduler_EndToEnd(t *testing.T) {
	store := snapshot.NewStore()
	src := fakeSource{
		loads: collector.LoadAverages{
			Load1:  snapshot.LoadFromFloat(0.50),
			Load5:  snapshot.LoadFromFloat(0.30),
			Load15: snapshot.LoadFromFloat(0.10),
		},
		mem: collector.MemoryInfo{TotalUnits: 1024, FreeUnits: 256, UnitSize: 1 << 20},
	}
	smp := sampler.New(src, store, zap.NewNop(), sampler.Options{})
	s := New(Options{Interval: 10 * time.Millisecond}, smp, store, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return !s.Read().IsPlaceholder() })

	got := s.Read()
	if got.Load1.String() != "0.50" || got.Load5.String() != "0.30" || got.Load15.String() != "0.10" {
		t.Errorf("loads = %s/%s/%s, want 0.50/0.30/0.10", got.Load1, got.Load5, got.Load15)
	}
	if got.TotalMemoryMB != 1024 || got.FreeMemoryMB != 256 || got.UsedMemoryMB != 768 {
		t.Errorf("memory = %d/%d/%d, want 1024/256/768", got.TotalMemoryMB, got.FreeMemoryMB, got.UsedMemoryMB)
	}
}

func TestScheduler_PlaceholderBeforeFirstTick(t *testing.T) {
	store := snapshot.NewStore()
	store.Publish(snapshot.Snapshot{Tick: 99})

	c := &countingSampler{store: store}
	s := New(Options{Interval: time.Hour}, c, store, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	// Start сбрасывает хранилище к заглушке
	if got := s.Read(); !got.IsPlaceholder() {
		t.Errorf("Read() before first tick = %+v, want placeholder", got)
	}
	if s.State() != Running {
		t.Errorf("State() = %s, want running", s.State())
	}
}

func TestScheduler_StartFailures(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		interval time.Duration
		ctx      context.Context
	}{
		{"zero interval", 0, context.Background()},
		{"negative interval", -time.Second, context.Background()},
		{"canceled context", time.Second, canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := snapshot.NewStore()
			c := &countingSampler{store: store}
			s := New(Options{Interval: tt.interval}, c, store, zap.NewNop())

			err := s.Start(tt.ctx)
			if !errors.Is(err, ErrScheduleArm) {
				t.Fatalf("Start() error = %v, want ErrScheduleArm", err)
			}
			if s.State() != Stopped {
				t.Errorf("State() = %s, want stopped", s.State())
			}

			// откат не оставляет запущенного цикла, Stop - no-op
			s.Stop()
			if s.State() != Stopped {
				t.Errorf("State() after Stop = %s, want stopped", s.State())
			}
		})
	}
}

func TestScheduler_Idempotent(t *testing.T) {
	store := snapshot.NewStore()
	c := &countingSampler{store: store}
	s := New(Options{Interval: time.Hour}, c, store, zap.NewNop())

	// Stop на остановленном планировщике
	s.Stop()
	if s.State() != Stopped {
		t.Fatalf("State() = %s, want stopped", s.State())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if s.State() != Running {
		t.Fatalf("State() = %s, want running", s.State())
	}

	s.Stop()
	s.Stop()
	if s.State() != Stopped {
		t.Errorf("State() = %s, want stopped", s.State())
	}
}

func TestScheduler_StopWaitsForInFlightTick(t *testing.T) {
	store := snapshot.NewStore()
	c := &countingSampler{
		store:   store,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := New(Options{Interval: time.Millisecond}, c, store, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// ждем, пока тик начнется и заблокируется
	<-c.entered

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a tick was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(c.release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the tick completed")
	}

	// тик, начатый до Stop, успел опубликовать
	got := s.Read()
	if got.Tick != 1 {
		t.Errorf("Read() after Stop tick = %d, want 1", got.Tick)
	}
}

func TestScheduler_NoTickAfterStop(t *testing.T) {
	store := snapshot.NewStore()
	c := &countingSampler{store: store}
	s := New(Options{Interval: time.Millisecond}, c, store, zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return c.ticks.Load() >= 3 })

	s.Stop()
	last := s.Read()
	ticksAtStop := c.ticks.Load()

	time.Sleep(30 * time.Millisecond)

	if got := c.ticks.Load(); got != ticksAtStop {
		t.Errorf("ticks advanced after Stop: %d -> %d", ticksAtStop, got)
	}
	if got := s.Read(); got.Tick != last.Tick || got.Tick != ticksAtStop {
		t.Errorf("Read() after Stop = tick %d, want %d", got.Tick, ticksAtStop)
	}
	if c.overlap.Load() {
		t.Error("ticks executed concurrently")
	}
}

func TestScheduler_RestartKeepsTicksIncreasing(t *testing.T) {
	store := snapshot.NewStore()
	smp := sampler.New(fakeSource{mem: collector.MemoryInfo{UnitSize: 1}}, store, zap.NewNop(), sampler.Options{})
	s := New(Options{Interval: time.Millisecond}, smp, store, zap.NewNop())

	var mu sync.Mutex
	var seen []uint64
	record := func() {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.Read().Tick)
	}

	for i := 0; i < 2; i++ {
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		before := smp.Ticks()
		waitFor(t, 2*time.Second, func() bool { return smp.Ticks() > before })
		s.Stop()
		record()
	}

	if len(seen) != 2 || seen[1] <= seen[0] {
		t.Errorf("ticks across restarts = %v, want strictly increasing", seen)
	}
}

func TestScheduler_GetStats(t *testing.T) {
	store := snapshot.NewStore()
	s := New(Options{Interval: 5 * time.Second}, &countingSampler{store: store}, store, zap.NewNop())

	stats := s.GetStats()
	if stats["interval"] != "5s" {
		t.Errorf("interval = %v, want 5s", stats["interval"])
	}
	if stats["state"] != "stopped" || stats["running"] != false {
		t.Errorf("unexpected state in stats: %v", stats)
	}
	if stats["last_tick"] != uint64(0) {
		t.Errorf("last_tick = %v, want 0", stats["last_tick"])
	}
}
