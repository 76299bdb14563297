package profiler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// MountPath префикс pprof маршрутов на основном роутере
const MountPath = "/debug"

// Config представляет конфигурацию профилировщика
type Config struct {
	Enable      bool   // включить профилирование
	CPUProfile  string // путь к файлу CPU профиля
	MemProfile  string // путь к файлу профиля памяти
	ProfileTime int    // время записи CPU профиля в секундах
}

// Profiler управляет профилированием приложения
type Profiler struct {
	config Config
	logger *zap.Logger

	mu      sync.Mutex
	cpuFile *os.File
	cancel  context.CancelFunc
}

// New создает новый профилировщик
func New(config Config, logger *zap.Logger) *Profiler {
	return &Profiler{
		config: config,
		logger: logger,
	}
}

// Enabled сообщает, включено ли профилирование
func (p *Profiler) Enabled() bool {
	return p.config.Enable
}

// Handler возвращает pprof обработчики для монтирования в MountPath
func (p *Profiler) Handler() http.Handler {
	return middleware.Profiler()
}

// Start запускает профилирование
func (p *Profiler) Start(ctx context.Context) error {
	if !p.config.Enable {
		p.logger.Info("Profiling disabled")
		return nil
	}

	p.logger.Info("Starting profiler",
		zap.String("pprof_path", MountPath+"/pprof/"),
		zap.String("cpu_profile", p.config.CPUProfile),
		zap.String("mem_profile", p.config.MemProfile))

	if p.config.CPUProfile != "" {
		if err := p.startCPUProfile(ctx); err != nil {
			return fmt.Errorf("failed to start CPU profiling: %w", err)
		}
	}

	p.LogMemStats()
	return nil
}

// Stop останавливает профилирование
func (p *Profiler) Stop() error {
	if !p.config.Enable {
		return nil
	}

	var errs []error

	if err := p.stopCPUProfile(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop CPU profiling: %w", err))
	}

	if p.config.MemProfile != "" {
		if err := p.writeMemProfile(); err != nil {
			errs = append(errs, fmt.Errorf("failed to write memory profile: %w", err))
		}
	}

	p.LogMemStats()

	if len(errs) > 0 {
		return fmt.Errorf("profiler shutdown errors: %w", errors.Join(errs...))
	}

	p.logger.Info("Profiler stopped")
	return nil
}

// startCPUProfile начинает CPU профилирование в файл
func (p *Profiler) startCPUProfile(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	file, err := os.Create(p.config.CPUProfile)
	if err != nil {
		return fmt.Errorf("failed to create CPU profile file: %w", err)
	}

	if err := pprof.StartCPUProfile(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to start CPU profiling: %w", err)
	}
	p.cpuFile = file

	p.logger.Info("Started CPU profiling", zap.String("file", p.config.CPUProfile))

	// Автоматически останавливаем через заданное время
	if p.config.ProfileTime > 0 {
		timerCtx, cancel := context.WithCancel(ctx)
		p.cancel = cancel
		go func() {
			timer := time.NewTimer(time.Duration(p.config.ProfileTime) * time.Second)
			defer timer.Stop()
			select {
			case <-timer.C:
				if err := p.stopCPUProfile(); err != nil {
					p.logger.Error("Failed to stop CPU profiling", zap.Error(err))
				}
			case <-timerCtx.Done():
			}
		}()
	}

	return nil
}

// stopCPUProfile останавливает CPU профилирование, повторный вызов ничего не делает
func (p *Profiler) stopCPUProfile() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.cpuFile == nil {
		return nil
	}

	pprof.StopCPUProfile()

	err := p.cpuFile.Close()
	p.cpuFile = nil
	if err != nil {
		return fmt.Errorf("failed to close CPU profile file: %w", err)
	}

	p.logger.Info("Stopped CPU profiling", zap.String("file", p.config.CPUProfile))
	return nil
}

// writeMemProfile записывает профиль памяти в файл
func (p *Profiler) writeMemProfile() error {
	file, err := os.Create(p.config.MemProfile)
	if err != nil {
		return fmt.Errorf("failed to create memory profile file: %w", err)
	}
	defer file.Close()

	// Принудительно запускаем GC для точного профиля памяти
	runtime.GC()

	if err := pprof.WriteHeapProfile(file); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}

	p.logger.Info("Written memory profile", zap.String("file", p.config.MemProfile))
	return nil
}

// GetMemStats возвращает статистику памяти
func (p *Profiler) GetMemStats() runtime.MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m
}

// LogMemStats логирует статистику памяти
func (p *Profiler) LogMemStats() {
	if !p.config.Enable {
		return
	}

	m := p.GetMemStats()
	p.logger.Info("Memory statistics",
		zap.Uint64("alloc_mb", m.Alloc/1024/1024),
		zap.Uint64("total_alloc_mb", m.TotalAlloc/1024/1024),
		zap.Uint64("sys_mb", m.Sys/1024/1024),
		zap.Uint32("num_gc", m.NumGC),
		zap.Int("goroutines", runtime.NumGoroutine()),
	)
}
