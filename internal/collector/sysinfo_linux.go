//go:build linux

package collector

import (
	"context"
	"fmt"

	"syshealth/internal/snapshot"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// siLoadShift число бит дробной части в sysinfo.loads
const siLoadShift = 16

// Sysinfo читает метрики системным вызовом sysinfo(2)
type Sysinfo struct {
	logger   *zap.Logger
	pageSize uint64
	sysinfo  func(*unix.Sysinfo_t) error
}

// NewSysinfo создает источник на sysinfo(2)
func NewSysinfo(logger *zap.Logger) (*Sysinfo, error) {
	return &Sysinfo{
		logger:   logger,
		pageSize: uint64(unix.Getpagesize()),
		sysinfo:  unix.Sysinfo,
	}, nil
}

// read выполняет системный вызов
func (s *Sysinfo) read(ctx context.Context) (*unix.Sysinfo_t, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var info unix.Sysinfo_t
	if err := s.sysinfo(&info); err != nil {
		return nil, fmt.Errorf("sysinfo failed: %w", err)
	}
	return &info, nil
}

// LoadAverages возвращает нагрузку в формате ядра с фиксированной точкой
func (s *Sysinfo) LoadAverages(ctx context.Context) (LoadAverages, error) {
	info, err := s.read(ctx)
	if err != nil {
		return LoadAverages{}, fmt.Errorf("failed to get load average: %w", err)
	}

	return LoadAverages{
		Load1:  snapshot.LoadFromFixed(uint64(info.Loads[0]), siLoadShift),
		Load5:  snapshot.LoadFromFixed(uint64(info.Loads[1]), siLoadShift),
		Load15: snapshot.LoadFromFixed(uint64(info.Loads[2]), siLoadShift),
	}, nil
}

// MemoryInfo возвращает объем памяти в единицах mem_unit.
// Если ядро вернуло mem_unit == 0, используем размер страницы
func (s *Sysinfo) MemoryInfo(ctx context.Context) (MemoryInfo, error) {
	info, err := s.read(ctx)
	if err != nil {
		return MemoryInfo{}, fmt.Errorf("failed to get memory statistics: %w", err)
	}

	unit := uint64(info.Unit)
	if unit == 0 {
		s.logger.Debug("sysinfo mem_unit is zero, falling back to page size",
			zap.Uint64("page_size", s.pageSize))
		unit = s.pageSize
	}

	return MemoryInfo{
		TotalUnits: uint64(info.Totalram),
		FreeUnits:  uint64(info.Freeram),
		UnitSize:   unit,
	}, nil
}
