package zabbix

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"syshealth/internal/snapshot"
	"syshealth/pkg/zabbix"

	"go.uber.org/zap"
)

// DataSender отправляет пачку элементов на сервер
type DataSender interface {
	SendData(ctx context.Context, data []zabbix.SenderData) error
}

// ExporterConfig параметры отправки
type ExporterConfig struct {
	HostName         string
	Interval         time.Duration
	MaxRetries       int
	RetryBackoffBase time.Duration
}

// Exporter периодически читает хранилище и отправляет новый снимок в Zabbix.
// Работает со своим интервалом, независимо от сэмплера
type Exporter struct {
	config ExporterConfig
	sender DataSender
	reader snapshot.Reader
	logger *zap.Logger

	// последний отправленный тик, доступен только из Run
	lastSent uint64
}

// NewExporter создает новый экспортер
func NewExporter(config ExporterConfig, sender DataSender, reader snapshot.Reader, logger *zap.Logger) *Exporter {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}

	return &Exporter{
		config: config,
		sender: sender,
		reader: reader,
		logger: logger,
	}
}

// Run отправляет снимки до отмены контекста
func (e *Exporter) Run(ctx context.Context) error {
	if e.config.Interval <= 0 {
		return fmt.Errorf("zabbix export interval must be positive, got %s", e.config.Interval)
	}

	e.logger.Info("Starting Zabbix exporter",
		zap.String("host", e.config.HostName),
		zap.Duration("interval", e.config.Interval))

	ticker := time.NewTicker(e.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := e.Push(ctx); err != nil {
				e.logger.Error("Failed to send metrics after retries", zap.Error(err))
			}
		case <-ctx.Done():
			e.logger.Info("Zabbix exporter stopped", zap.Uint64("last_sent_tick", e.lastSent))
			return nil
		}
	}
}

// Push отправляет текущий снимок, если он новее отправленного.
// Заглушка не отправляется никогда
func (e *Exporter) Push(ctx context.Context) (bool, error) {
	current := e.reader.Read()
	if current.IsPlaceholder() {
		e.logger.Debug("No snapshot collected yet, skipping push")
		return false, nil
	}
	if current.Tick == e.lastSent {
		e.logger.Debug("Snapshot already sent", zap.Uint64("tick", current.Tick))
		return false, nil
	}

	if err := e.sendWithRetry(ctx, SnapshotToSenderData(e.config.HostName, current)); err != nil {
		return false, err
	}

	e.lastSent = current.Tick
	e.logger.Debug("Snapshot pushed to Zabbix", zap.Uint64("tick", current.Tick))
	return true, nil
}

// sendWithRetry отправляет данные с повторными попытками
func (e *Exporter) sendWithRetry(ctx context.Context, data []zabbix.SenderData) error {
	var lastErr error
	backoff := e.config.RetryBackoffBase

	for attempt := 0; attempt < e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			e.logger.Warn("Retrying metric send",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", e.config.MaxRetries),
				zap.Duration("backoff", backoff))

			// Ждем с экспоненциальным back-off
			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}

			backoff *= 2
		}

		err := e.sender.SendData(ctx, data)
		if err == nil {
			if attempt > 0 {
				e.logger.Info("Metrics sent successfully after retry",
					zap.Int("attempts", attempt+1))
			}
			return nil
		}

		lastErr = err
		e.logger.Warn("Failed to send metrics",
			zap.Error(err),
			zap.Int("attempt", attempt+1))
	}

	return fmt.Errorf("failed to send metrics after %d attempts: %w", e.config.MaxRetries, lastErr)
}

// SnapshotToSenderData конвертирует снимок в элементы Zabbix Sender
func SnapshotToSenderData(hostName string, s snapshot.Snapshot) []zabbix.SenderData {
	clock := s.CollectedAt.Unix()
	if s.CollectedAt.IsZero() {
		clock = 0
	}

	degraded := "none"
	if len(s.Degraded) > 0 {
		degraded = strings.Join(s.Degraded, ",")
	}

	values := map[string]string{
		zabbix.KeyLoad1:       s.Load1.String(),
		zabbix.KeyLoad5:       s.Load5.String(),
		zabbix.KeyLoad15:      s.Load15.String(),
		zabbix.KeyMemoryTotal: strconv.FormatUint(s.TotalMemoryMB, 10),
		zabbix.KeyMemoryFree:  strconv.FormatUint(s.FreeMemoryMB, 10),
		zabbix.KeyMemoryUsed:  strconv.FormatUint(s.UsedMemoryMB, 10),
		zabbix.KeyDiskIO:      s.DiskIOStatus,
		zabbix.KeyDegraded:    degraded,
		zabbix.KeyTick:        strconv.FormatUint(s.Tick, 10),
	}

	// порядок элементов как в каталоге
	items := zabbix.GetSyshealthItems()
	data := make([]zabbix.SenderData, 0, len(items))
	for _, item := range items {
		data = append(data, zabbix.SenderData{
			Host:  hostName,
			Key:   item.Key,
			Value: values[item.Key],
			Clock: clock,
		})
	}

	return data
}
