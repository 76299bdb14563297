package collector

import (
	"context"
	"fmt"

	"syshealth/internal/snapshot"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

const (
	// KindGopsutil переносимый источник на gopsutil
	KindGopsutil = "gopsutil"
	// KindSysinfo источник на системном вызове sysinfo(2), только Linux
	KindSysinfo = "sysinfo"
)

// New создает источник метрик по имени
func New(kind string, logger *zap.Logger) (Source, error) {
	switch kind {
	case KindGopsutil, "":
		return NewGopsutil(logger), nil
	case KindSysinfo:
		src, err := NewSysinfo(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create sysinfo source: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
}

// Gopsutil собирает метрики через gopsutil
type Gopsutil struct {
	logger *zap.Logger
}

// NewGopsutil создает новый источник на gopsutil
func NewGopsutil(logger *zap.Logger) *Gopsutil {
	return &Gopsutil{
		logger: logger,
	}
}

// LoadAverages собирает среднюю нагрузку
func (g *Gopsutil) LoadAverages(ctx context.Context) (LoadAverages, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAverages{}, fmt.Errorf("failed to get load average: %w", err)
	}

	return LoadAverages{
		Load1:  snapshot.LoadFromFloat(avg.Load1),
		Load5:  snapshot.LoadFromFloat(avg.Load5),
		Load15: snapshot.LoadFromFloat(avg.Load15),
	}, nil
}

// MemoryInfo собирает метрики памяти. gopsutil отдает байты, поэтому единица = 1
func (g *Gopsutil) MemoryInfo(ctx context.Context) (MemoryInfo, error) {
	vmStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryInfo{}, fmt.Errorf("failed to get memory statistics: %w", err)
	}

	return MemoryInfo{
		TotalUnits: vmStat.Total,
		FreeUnits:  vmStat.Free,
		UnitSize:   1,
	}, nil
}

// GopsutilDisk снимает счетчики ввода-вывода через gopsutil
type GopsutilDisk struct {
	logger *zap.Logger
}

// NewDiskProbe создает пробу дискового ввода-вывода
func NewDiskProbe(logger *zap.Logger) *GopsutilDisk {
	return &GopsutilDisk{
		logger: logger,
	}
}

// DiskIO суммирует статистику по всем устройствам
func (d *GopsutilDisk) DiskIO(ctx context.Context) (DiskIOStats, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return DiskIOStats{}, fmt.Errorf("failed to get disk I/O counters: %w", err)
	}

	var stats DiskIOStats
	for name, c := range counters {
		d.logger.Debug("Disk counters",
			zap.String("device", name),
			zap.Uint64("reads", c.ReadCount),
			zap.Uint64("writes", c.WriteCount))

		stats.Devices++
		stats.ReadCount += c.ReadCount
		stats.WriteCount += c.WriteCount
		stats.ReadBytes += c.ReadBytes
		stats.WriteBytes += c.WriteBytes
	}

	return stats, nil
}
