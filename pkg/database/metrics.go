package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshot is a point-in-time copy of connection pool statistics.
type PoolSnapshot struct {
	Acquired        int32
	Idle            int32
	Total           int32
	Max             int32
	Constructing    int32
	AcquireCount    int64
	AcquireSeconds  float64
	CanceledAcquire int64
	EmptyAcquire    int64
	NewConns        int64
}

// snapshotPool reads pgxpool statistics.
func snapshotPool(pool *pgxpool.Pool) func() PoolSnapshot {
	return func() PoolSnapshot {
		s := pool.Stat()
		return PoolSnapshot{
			Acquired:        s.AcquiredConns(),
			Idle:            s.IdleConns(),
			Total:           s.TotalConns(),
			Max:             s.MaxConns(),
			Constructing:    s.ConstructingConns(),
			AcquireCount:    s.AcquireCount(),
			AcquireSeconds:  s.AcquireDuration().Seconds(),
			CanceledAcquire: s.CanceledAcquireCount(),
			EmptyAcquire:    s.EmptyAcquireCount(),
			NewConns:        s.NewConnsCount(),
		}
	}
}

type poolMetric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(PoolSnapshot) float64
}

// PoolStatsCollector exports connection pool statistics of one storage backend.
type PoolStatsCollector struct {
	snapshot func() PoolSnapshot
	backend  string
	metrics  []poolMetric
}

// NewPoolStatsCollector creates a collector for a pgxpool.
func NewPoolStatsCollector(pool *pgxpool.Pool, backend string) *PoolStatsCollector {
	return newPoolStatsCollector(snapshotPool(pool), backend)
}

func newPoolStatsCollector(snapshot func() PoolSnapshot, backend string) *PoolStatsCollector {
	labels := []string{"backend"}
	gauge := func(name, help string, v func(PoolSnapshot) float64) poolMetric {
		return poolMetric{prometheus.NewDesc("storefront_storage_pool_"+name, help, labels, nil), prometheus.GaugeValue, v}
	}
	counter := func(name, help string, v func(PoolSnapshot) float64) poolMetric {
		return poolMetric{prometheus.NewDesc("storefront_storage_pool_"+name, help, labels, nil), prometheus.CounterValue, v}
	}

	return &PoolStatsCollector{
		snapshot: snapshot,
		backend:  backend,
		metrics: []poolMetric{
			gauge("acquired_connections", "Connections currently checked out.", func(s PoolSnapshot) float64 { return float64(s.Acquired) }),
			gauge("idle_connections", "Connections currently idle.", func(s PoolSnapshot) float64 { return float64(s.Idle) }),
			gauge("total_connections", "Connections currently open.", func(s PoolSnapshot) float64 { return float64(s.Total) }),
			gauge("max_connections", "Configured connection limit.", func(s PoolSnapshot) float64 { return float64(s.Max) }),
			gauge("constructing_connections", "Connections being established.", func(s PoolSnapshot) float64 { return float64(s.Constructing) }),
			counter("acquires_total", "Connection acquires.", func(s PoolSnapshot) float64 { return float64(s.AcquireCount) }),
			counter("acquire_seconds_total", "Time spent acquiring connections.", func(s PoolSnapshot) float64 { return s.AcquireSeconds }),
			counter("canceled_acquires_total", "Acquires canceled by their context.", func(s PoolSnapshot) float64 { return float64(s.CanceledAcquire) }),
			counter("empty_acquires_total", "Acquires that waited for a free connection.", func(s PoolSnapshot) float64 { return float64(s.EmptyAcquire) }),
			counter("new_connections_total", "Connections opened.", func(s PoolSnapshot) float64 { return float64(s.NewConns) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(s), c.backend)
	}
}

// RegisterPoolMetrics registers a pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, backend string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, backend))
}
