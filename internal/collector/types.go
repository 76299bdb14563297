package collector

import (
	"context"
	"errors"

	"syshealth/internal/snapshot"
)

var (
	// ErrUnsupported источник недоступен на этой платформе
	ErrUnsupported = errors.New("metrics source is not supported on this platform")

	// ErrUnknownSource неизвестное имя источника
	ErrUnknownSource = errors.New("unknown metrics source")
)

// Source предоставляет системные метрики
//
//go:generate mockgen -destination=mock_collector/mock_collector.go -package=mock_collector syshealth/internal/collector Source,DiskProbe
type Source interface {
	// LoadAverages возвращает среднюю нагрузку за 1, 5 и 15 минут
	LoadAverages(ctx context.Context) (LoadAverages, error)

	// MemoryInfo возвращает объем памяти в единицах источника.
	// UnitSize == 0 означает, что размер единицы неизвестен
	MemoryInfo(ctx context.Context) (MemoryInfo, error)
}

// DiskProbe опционально снимает счетчики дискового ввода-вывода
type DiskProbe interface {
	DiskIO(ctx context.Context) (DiskIOStats, error)
}

// LoadAverages содержит среднюю нагрузку на CPU
type LoadAverages struct {
	Load1  snapshot.LoadAverage `json:"load_1"`
	Load5  snapshot.LoadAverage `json:"load_5"`
	Load15 snapshot.LoadAverage `json:"load_15"`
}

// MemoryInfo содержит объем памяти в единицах размера UnitSize байт
type MemoryInfo struct {
	TotalUnits uint64 `json:"total_units"`
	FreeUnits  uint64 `json:"free_units"`
	UnitSize   uint64 `json:"unit_size"`
}

// DiskIOStats содержит суммарные счетчики по всем устройствам
type DiskIOStats struct {
	Devices    int    `json:"devices"`
	ReadCount  uint64 `json:"read_count"`
	WriteCount uint64 `json:"write_count"`
	ReadBytes  uint64 `json:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes"`
}
