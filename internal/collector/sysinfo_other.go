//go:build !linux

package collector

import (
	"context"

	"go.uber.org/zap"
)

// Sysinfo недоступен вне Linux
type Sysinfo struct{}

// NewSysinfo всегда возвращает ErrUnsupported
func NewSysinfo(logger *zap.Logger) (*Sysinfo, error) {
	logger.Warn("sysinfo source requested on unsupported platform")
	return nil, ErrUnsupported
}

func (s *Sysinfo) LoadAverages(ctx context.Context) (LoadAverages, error) {
	return LoadAverages{}, ErrUnsupported
}

func (s *Sysinfo) MemoryInfo(ctx context.Context) (MemoryInfo, error) {
	return MemoryInfo{}, ErrUnsupported
}
