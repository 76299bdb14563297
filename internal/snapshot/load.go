package snapshot

import (
	"fmt"
	"math"
	"strconv"
)

// LoadAverage хранит среднюю нагрузку в формате с фиксированной точкой:
// целая часть и сотые доли (0..99)
type LoadAverage struct {
	Int  uint64
	Frac uint8
}

// LoadFromFloat округляет значение до сотых.
// Отрицательные значения и NaN превращаются в 0.00
func LoadFromFloat(v float64) LoadAverage {
	if math.IsNaN(v) || v <= 0 {
		return LoadAverage{}
	}
	if v >= math.MaxUint64/100 {
		return LoadAverage{Int: math.MaxUint64 / 100, Frac: 99}
	}

	hundredths := uint64(math.Round(v * 100))
	return LoadAverage{
		Int:  hundredths / 100,
		Frac: uint8(hundredths % 100),
	}
}

// LoadFromFixed конвертирует значение ядра с фиксированной точкой
// (shift бит дробной части). Округление как в /proc/loadavg
func LoadFromFixed(v uint64, shift uint) LoadAverage {
	if shift == 0 || shift > 32 {
		return LoadAverage{Int: v}
	}

	one := uint64(1) << shift
	// +0.005, чтобы 0.30 не превратилось в 0.29
	v += one / 200

	return LoadAverage{
		Int:  v >> shift,
		Frac: uint8(((v & (one - 1)) * 100) >> shift),
	}
}

// Float возвращает значение как float64
func (l LoadAverage) Float() float64 {
	return float64(l.Int) + float64(l.Frac)/100
}

// String форматирует значение как int.frac с двумя знаками
func (l LoadAverage) String() string {
	return fmt.Sprintf("%d.%02d", l.Int, l.Frac)
}

// MarshalJSON пишет значение числом с двумя знаками после точки
func (l LoadAverage) MarshalJSON() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalJSON читает число, округляя до сотых
func (l *LoadAverage) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid load average %s: %w", data, err)
	}
	*l = LoadFromFloat(v)
	return nil
}
