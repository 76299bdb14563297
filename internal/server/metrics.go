package server

import (
	"syshealth/internal/snapshot"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "syshealth"

// snapshotCollector читает хранилище в момент опроса Prometheus.
// До первого тика метрики снимка не отдаются
type snapshotCollector struct {
	reader snapshot.Reader

	load      *prometheus.Desc
	memory    *prometheus.Desc
	tick      *prometheus.Desc
	timestamp *prometheus.Desc
	degraded  *prometheus.Desc
}

func newSnapshotCollector(reader snapshot.Reader) *snapshotCollector {
	return &snapshotCollector{
		reader: reader,
		load: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "load_average"),
			"System load average over the window.",
			[]string{"window"}, nil),
		memory: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "memory", "megabytes"),
			"Physical memory in megabytes.",
			[]string{"state"}, nil),
		tick: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sample_tick"),
			"Sequence number of the last published sample.",
			nil, nil),
		timestamp: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sample_timestamp_seconds"),
			"Unix time of the last published sample.",
			nil, nil),
		degraded: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "field_degraded"),
			"1 if the field was defaulted during the last sample.",
			[]string{"field"}, nil),
	}
}

func (c *snapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.load
	ch <- c.memory
	ch <- c.tick
	ch <- c.timestamp
	ch <- c.degraded
}

func (c *snapshotCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.reader.Read()
	if s.IsPlaceholder() {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.load, prometheus.GaugeValue, s.Load1.Float(), "1m")
	ch <- prometheus.MustNewConstMetric(c.load, prometheus.GaugeValue, s.Load5.Float(), "5m")
	ch <- prometheus.MustNewConstMetric(c.load, prometheus.GaugeValue, s.Load15.Float(), "15m")

	ch <- prometheus.MustNewConstMetric(c.memory, prometheus.GaugeValue, float64(s.TotalMemoryMB), "total")
	ch <- prometheus.MustNewConstMetric(c.memory, prometheus.GaugeValue, float64(s.FreeMemoryMB), "free")
	ch <- prometheus.MustNewConstMetric(c.memory, prometheus.GaugeValue, float64(s.UsedMemoryMB), "used")

	ch <- prometheus.MustNewConstMetric(c.tick, prometheus.GaugeValue, float64(s.Tick))
	ch <- prometheus.MustNewConstMetric(c.timestamp, prometheus.GaugeValue, float64(s.CollectedAt.UnixNano())/1e9)

	for _, field := range []string{snapshot.FieldLoad, snapshot.FieldMemory, snapshot.FieldDiskIO} {
		v := 0.0
		if s.IsDegraded(field) {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.degraded, prometheus.GaugeValue, v, field)
	}
}
