package sampler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"syshealth/internal/collector"
	"syshealth/internal/snapshot"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Publisher принимает готовый снимок
type Publisher interface {
	Publish(snapshot.Snapshot)
}

// Options дополнительные параметры сэмплера
type Options struct {
	// DiskProbe nil - мониторинг диска отключен
	DiskProbe collector.DiskProbe
	// Now источник времени, по умолчанию time.Now
	Now func() time.Time
}

// Sampler выполняет один тик: опрашивает источник, собирает снимок и публикует его
type Sampler struct {
	source    collector.Source
	disk      collector.DiskProbe
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time

	// номер последнего тика, живет дольше одного запуска планировщика
	tick atomic.Uint64
}

// New создает новый сэмплер
func New(source collector.Source, publisher Publisher, logger *zap.Logger, opts Options) *Sampler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Sampler{
		source:    source,
		disk:      opts.DiskProbe,
		publisher: publisher,
		logger:    logger,
		now:       now,
	}
}

// Ticks возвращает количество выполненных тиков
func (s *Sampler) Ticks() uint64 {
	return s.tick.Load()
}

// Tick собирает метрики и публикует ровно один снимок.
// Ошибки отдельных метрик не прерывают тик, поле получает значение по умолчанию
func (s *Sampler) Tick(ctx context.Context) snapshot.Snapshot {
	start := s.now()

	var (
		loads    collector.LoadAverages
		loadErr  error
		memInfo  collector.MemoryInfo
		memErr   error
		diskIO   collector.DiskIOStats
		diskErr  error
		useDisk  = s.disk != nil
		fetchers errgroup.Group
	)

	// Собираем метрики параллельно, ошибки не отменяют соседей
	fetchers.Go(func() error {
		loads, loadErr = s.source.LoadAverages(ctx)
		return nil
	})
	fetchers.Go(func() error {
		memInfo, memErr = s.source.MemoryInfo(ctx)
		return nil
	})
	if useDisk {
		fetchers.Go(func() error {
			diskIO, diskErr = s.disk.DiskIO(ctx)
			return nil
		})
	}
	_ = fetchers.Wait()

	snap := snapshot.Snapshot{
		DiskIOStatus: snapshot.DiskIODisabled,
	}

	// Загрузка CPU
	if loadErr != nil {
		s.logger.Warn("Failed to collect metric, using default",
			zap.String("component", snapshot.FieldLoad),
			zap.Error(loadErr))
		snap.Degraded = append(snap.Degraded, snapshot.FieldLoad)
	} else {
		snap.Load1 = loads.Load1
		snap.Load5 = loads.Load5
		snap.Load15 = loads.Load15
	}

	// Память
	if memErr != nil {
		s.logger.Warn("Failed to collect metric, using default",
			zap.String("component", snapshot.FieldMemory),
			zap.Error(memErr))
		snap.Degraded = append(snap.Degraded, snapshot.FieldMemory)
	} else {
		mem, ok := snapshot.MemoryFromUnits(memInfo.TotalUnits, memInfo.FreeUnits, memInfo.UnitSize)
		if !ok {
			s.logger.Warn("Memory statistics are inconsistent, degrading",
				zap.Uint64("total_units", memInfo.TotalUnits),
				zap.Uint64("free_units", memInfo.FreeUnits),
				zap.Uint64("unit_size", memInfo.UnitSize))
			snap.Degraded = append(snap.Degraded, snapshot.FieldMemory)
		}
		snap.TotalMemoryMB = mem.TotalMB
		snap.FreeMemoryMB = mem.FreeMB
		snap.UsedMemoryMB = mem.UsedMB
	}

	// Диск, по возможности
	if useDisk {
		if diskErr != nil {
			s.logger.Warn("Failed to collect metric, using default",
				zap.String("component", snapshot.FieldDiskIO),
				zap.Error(diskErr))
			snap.Degraded = append(snap.Degraded, snapshot.FieldDiskIO)
			snap.DiskIOStatus = fmt.Sprintf("unavailable: %v", diskErr)
		} else {
			snap.DiskIOStatus = formatDiskIO(diskIO)
		}
	}

	snap.Tick = s.tick.Add(1)
	snap.CollectedAt = s.now()

	s.publisher.Publish(snap)

	s.logger.Info("Metrics snapshot published",
		zap.Uint64("tick", snap.Tick),
		zap.Strings("degraded", snap.Degraded),
		zap.Duration("collect_time", snap.CollectedAt.Sub(start)))

	return snap
}

// formatDiskIO форматирует счетчики диска в строку статуса
func formatDiskIO(st collector.DiskIOStats) string {
	return fmt.Sprintf("Devices: %d, Reads: %d (%d MB), Writes: %d (%d MB)",
		st.Devices,
		st.ReadCount, st.ReadBytes/(1024*1024),
		st.WriteCount, st.WriteBytes/(1024*1024))
}
