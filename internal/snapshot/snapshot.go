package snapshot

import (
	"math/bits"
	"slices"
	"time"
)

const (
	// DiskIODisabled статус диска, когда сбор отключен
	DiskIODisabled = "Monitoring Disabled"

	// Имена полей для Degraded
	FieldLoad   = "load"
	FieldMemory = "memory"
	FieldDiskIO = "disk_io"

	bytesPerMB = 1024 * 1024
)

// Snapshot содержит один полный набор метрик.
// После публикации не изменяется, только заменяется целиком
type Snapshot struct {
	Load1  LoadAverage `json:"load_1m"`
	Load5  LoadAverage `json:"load_5m"`
	Load15 LoadAverage `json:"load_15m"`

	TotalMemoryMB uint64 `json:"total_memory_mb"`
	FreeMemoryMB  uint64 `json:"free_memory_mb"`
	UsedMemoryMB  uint64 `json:"used_memory_mb"`

	DiskIOStatus string `json:"disk_io_status"`

	Tick        uint64    `json:"tick"`
	CollectedAt time.Time `json:"collected_at"`

	// Degraded перечисляет поля, замененные значениями по умолчанию
	Degraded []string `json:"degraded,omitempty"`
}

// Placeholder возвращает снимок "еще не собрано"
func Placeholder() Snapshot {
	return Snapshot{DiskIOStatus: "N/A"}
}

// IsPlaceholder сообщает, что первый тик еще не прошел
func (s Snapshot) IsPlaceholder() bool {
	return s.Tick == 0
}

// IsDegraded проверяет, было ли поле заменено значением по умолчанию
func (s Snapshot) IsDegraded(field string) bool {
	return slices.Contains(s.Degraded, field)
}

// clone копирует срез Degraded, чтобы читатели не делили память с хранилищем
func (s Snapshot) clone() Snapshot {
	s.Degraded = slices.Clone(s.Degraded)
	return s
}

// Memory содержит объем памяти в мегабайтах
type Memory struct {
	TotalMB uint64
	FreeMB  uint64
	UsedMB  uint64
}

// MemoryFromUnits переводит страницы/единицы источника в мегабайты.
// ok == false означает, что данные пришлось деградировать:
// нулевой размер единицы или free > total
func MemoryFromUnits(totalUnits, freeUnits, unitSize uint64) (Memory, bool) {
	if unitSize == 0 {
		return Memory{}, false
	}

	ok := true
	if freeUnits > totalUnits {
		freeUnits = totalUnits
		ok = false
	}

	total := unitsToMB(totalUnits, unitSize)
	free := unitsToMB(freeUnits, unitSize)

	return Memory{
		TotalMB: total,
		FreeMB:  free,
		UsedMB:  total - free,
	}, ok
}

// unitsToMB считает units*unitSize/1MiB через 128-битное произведение
func unitsToMB(units, unitSize uint64) uint64 {
	hi, lo := bits.Mul64(units, unitSize)
	if hi >= bytesPerMB {
		// результат не помещается в uint64
		return ^uint64(0)
	}
	quo, _ := bits.Div64(hi, lo, bytesPerMB)
	return quo
}
