// Package metrics 批处理运行指标
// 使用独立的 Registry，运行结束后写入 node_exporter textfile 格式文件。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ptbxl_annotator"

// Metrics 一次批处理运行的指标集合
// 所有方法对 nil 接收者安全，未启用指标时可直接传 nil。
type Metrics struct {
	registry *prometheus.Registry

	recordsProcessed prometheus.Counter
	documentsWritten *prometheus.CounterVec
	lookupMisses     *prometheus.CounterVec
	duplicateRecords prometheus.Counter
	batchDuration    prometheus.Histogram
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		recordsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_processed_total",
				Help:      "Number of annotation table rows turned into documents",
			},
		),
		documentsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_written_total",
				Help:      "Number of annotation documents handed to each store",
			},
			[]string{"store"},
		),
		lookupMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dictionary_misses_total",
				Help:      "Dictionary lookups that found no phrase, by code kind",
			},
			[]string{"kind"},
		),
		duplicateRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicate_records_total",
				Help:      "Rows whose record name was already produced earlier in the table",
			},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Wall time of a complete annotation run",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.recordsProcessed,
		m.documentsWritten,
		m.lookupMisses,
		m.duplicateRecords,
		m.batchDuration,
	)
	return m
}

// Registry 返回内部 Registry（测试与自定义导出使用）
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordProcessed 记录一行处理完成
func (m *Metrics) RecordProcessed() {
	if m == nil {
		return
	}
	m.recordsProcessed.Inc()
}

// DocumentsWritten 记录某个存储写入的文档数
func (m *Metrics) DocumentsWritten(store string, n int) {
	if m == nil {
		return
	}
	m.documentsWritten.WithLabelValues(store).Add(float64(n))
}

// LookupMiss 记录一次字典未命中
func (m *Metrics) LookupMiss(kind string) {
	if m == nil {
		return
	}
	m.lookupMisses.WithLabelValues(kind).Inc()
}

// DuplicateRecord 记录一条重复的记录名
func (m *Metrics) DuplicateRecord() {
	if m == nil {
		return
	}
	m.duplicateRecords.Inc()
}

// ObserveBatch 记录整批耗时
func (m *Metrics) ObserveBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}

// WriteTextfile 以 Prometheus 文本格式写入文件；path 为空时不写
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
