package zabbix

import (
	"fmt"
	"strings"
)

// Типы значений элементов данных Zabbix
const (
	ValueTypeFloat    = 0
	ValueTypeChar     = 1
	ValueTypeUnsigned = 3
)

// Ключи trapper элементов syshealth
const (
	KeyLoad1       = "syshealth.cpu.load[avg1]"
	KeyLoad5       = "syshealth.cpu.load[avg5]"
	KeyLoad15      = "syshealth.cpu.load[avg15]"
	KeyMemoryTotal = "syshealth.memory.total"
	KeyMemoryFree  = "syshealth.memory.free"
	KeyMemoryUsed  = "syshealth.memory.used"
	KeyDiskIO      = "syshealth.disk.io"
	KeyDegraded    = "syshealth.degraded"
	KeyTick        = "syshealth.tick"
)

// SenderData представляет данные для отправки через Zabbix Sender
type SenderData struct {
	Host  string `json:"host"`
	Key   string `json:"key"`
	Value string `json:"value"`
	Clock int64  `json:"clock,omitempty"`
}

// SenderRequest представляет запрос Zabbix Sender
type SenderRequest struct {
	Request string       `json:"request"`
	Data    []SenderData `json:"data"`
	Clock   int64        `json:"clock,omitempty"`
}

// SenderResponse представляет ответ Zabbix Sender
type SenderResponse struct {
	Response string `json:"response"`
	Info     string `json:"info,omitempty"`
}

// SenderInfo разобранное поле info ответа
type SenderInfo struct {
	Processed int
	Failed    int
	Total     int
}

// ParseInfo разбирает строку вида "processed: 3; failed: 0; total: 3; seconds spent: 0.000055"
func (r SenderResponse) ParseInfo() (SenderInfo, error) {
	var info SenderInfo
	for _, part := range strings.Split(r.Info, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}

		var dst *int
		switch strings.TrimSpace(name) {
		case "processed":
			dst = &info.Processed
		case "failed":
			dst = &info.Failed
		case "total":
			dst = &info.Total
		default:
			continue
		}

		if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", dst); err != nil {
			return SenderInfo{}, fmt.Errorf("invalid sender info %q: %w", r.Info, err)
		}
	}
	return info, nil
}

// MetricItem представляет элемент данных для Zabbix
type MetricItem struct {
	Key         string
	Name        string
	ValueType   int
	Units       string
	Description string
}

// GetSyshealthItems возвращает trapper элементы, которые заполняет syshealth
func GetSyshealthItems() []MetricItem {
	return []MetricItem{
		// CPU метрики
		{
			Key:         KeyLoad1,
			Name:        "Load average (1m)",
			ValueType:   ValueTypeFloat,
			Description: "1 minute load average",
		},
		{
			Key:         KeyLoad5,
			Name:        "Load average (5m)",
			ValueType:   ValueTypeFloat,
			Description: "5 minute load average",
		},
		{
			Key:         KeyLoad15,
			Name:        "Load average (15m)",
			ValueType:   ValueTypeFloat,
			Description: "15 minute load average",
		},

		// Memory метрики
		{
			Key:         KeyMemoryTotal,
			Name:        "Total memory",
			ValueType:   ValueTypeUnsigned,
			Units:       "MB",
			Description: "Total physical memory",
		},
		{
			Key:         KeyMemoryFree,
			Name:        "Free memory",
			ValueType:   ValueTypeUnsigned,
			Units:       "MB",
			Description: "Free physical memory",
		},
		{
			Key:         KeyMemoryUsed,
			Name:        "Used memory",
			ValueType:   ValueTypeUnsigned,
			Units:       "MB",
			Description: "Total minus free memory",
		},

		// Прочее
		{
			Key:         KeyDiskIO,
			Name:        "Disk I/O status",
			ValueType:   ValueTypeChar,
			Description: "Disk I/O summary or monitoring state",
		},
		{
			Key:         KeyDegraded,
			Name:        "Degraded fields",
			ValueType:   ValueTypeChar,
			Description: "Fields defaulted during the last sample",
		},
		{
			Key:         KeyTick,
			Name:        "Sample tick",
			ValueType:   ValueTypeUnsigned,
			Description: "Sequence number of the last sample",
		},
	}
}
