package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"syshealth/internal/snapshot"

	"go.uber.org/zap"
)

// ErrScheduleArm расписание не удалось запустить
var ErrScheduleArm = errors.New("failed to arm sampling schedule")

// State состояние планировщика
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Sampler выполняет один тик сбора
type Sampler interface {
	Tick(ctx context.Context) snapshot.Snapshot
}

// Options параметры расписания
type Options struct {
	Interval    time.Duration
	TickTimeout time.Duration
}

// Scheduler отвечает за жизненный цикл периодического сбора
type Scheduler struct {
	opts    Options
	sampler Sampler
	store   *snapshot.Store
	logger  *zap.Logger

	// mu сериализует Start и Stop
	mu    sync.Mutex
	state atomic.Int32
	run   *run
}

// run ресурсы одного запуска, живут только в состоянии Running
type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New создает новый планировщик
func New(opts Options, sampler Sampler, store *snapshot.Store, logger *zap.Logger) *Scheduler {
	if opts.TickTimeout <= 0 {
		opts.TickTimeout = opts.Interval
	}

	return &Scheduler{
		opts:    opts,
		sampler: sampler,
		store:   store,
		logger:  logger,
	}
}

// Start запускает планировщик. Повторный вызов в состоянии Running ничего не делает
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == Running {
		s.logger.Debug("Scheduler already running")
		return nil
	}

	s.setState(Starting)
	s.logger.Info("Starting scheduler", zap.Duration("interval", s.opts.Interval))

	r, err := s.arm(ctx)
	if err != nil {
		// откатываемся, ресурсы запуска еще не созданы
		s.setState(Stopped)
		s.logger.Error("Failed to start scheduler", zap.Error(err))
		return err
	}

	s.run = r
	s.setState(Running)

	s.logger.Info("Scheduler started successfully",
		zap.Duration("interval", s.opts.Interval),
		zap.Duration("tick_timeout", s.opts.TickTimeout))
	return nil
}

// arm сбрасывает хранилище к заглушке и взводит таймер
func (s *Scheduler) arm(ctx context.Context) (*run, error) {
	if s.opts.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %s", ErrScheduleArm, s.opts.Interval)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScheduleArm, err)
	}

	s.store.Reset()

	// Цикл останавливает только Stop, отмена родителя его не касается
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	timer := time.NewTimer(s.opts.Interval)
	go s.monitoringLoop(loopCtx, timer, r.done)

	return r, nil
}

// Stop останавливает планировщик и ждет завершения текущего тика.
// После возврата ни один тик не выполняется
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != Running || s.run == nil {
		s.logger.Info("Scheduler was not active or already stopped")
		return
	}

	s.setState(Stopping)
	s.logger.Info("Stopping scheduler")

	s.run.cancel()
	<-s.run.done
	s.run = nil

	s.setState(Stopped)
	s.logger.Info("Scheduler was active and has been stopped",
		zap.Uint64("last_tick", s.store.Read().Tick))
}

// monitoringLoop основной цикл. Следующий тик взводится после окончания
// предыдущего (fixed-delay), пропущенные тики схлопываются
func (s *Scheduler) monitoringLoop(ctx context.Context, timer *time.Timer, done chan<- struct{}) {
	defer close(done)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			// Stop мог прийти одновременно с таймером
			if ctx.Err() != nil {
				s.logger.Debug("Monitoring loop stopped")
				return
			}
			s.tick(ctx)
			timer.Reset(s.opts.Interval)
		case <-ctx.Done():
			s.logger.Debug("Monitoring loop stopped")
			return
		}
	}
}

// tick выполняет один сбор. Stop не прерывает тик, только таймаут
func (s *Scheduler) tick(ctx context.Context) {
	s.logger.Debug("Timer fired, collecting metrics")

	tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.TickTimeout)
	defer cancel()

	s.sampler.Tick(tickCtx)
}

// State возвращает текущее состояние
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
}

// Read возвращает текущий снимок
func (s *Scheduler) Read() snapshot.Snapshot {
	return s.store.Read()
}

// Store возвращает хранилище снимков
func (s *Scheduler) Store() *snapshot.Store {
	return s.store
}

// GetStats возвращает статистику работы
func (s *Scheduler) GetStats() map[string]interface{} {
	current := s.store.Read()
	return map[string]interface{}{
		"interval":  s.opts.Interval.String(),
		"state":     s.State().String(),
		"running":   s.State() == Running,
		"last_tick": current.Tick,
	}
}
