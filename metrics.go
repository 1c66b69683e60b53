package ddbgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRun is called after each Run or Call on a connection.
	RecordRun(duration time.Duration, err error)

	// RecordUpload is called after each upload with the number of variables.
	RecordUpload(count int, duration time.Duration, err error)

	// RecordPoll is called after each queue poll. hit reports whether a
	// message was returned.
	RecordPoll(hit bool, duration time.Duration)

	// RecordHandles is called whenever the number of live handles changes.
	RecordHandles(live uint64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(time.Duration, error)         {}
func (NoopMetricsCollector) RecordUpload(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPoll(bool, time.Duration)         {}
func (NoopMetricsCollector) RecordHandles(uint64)                   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount       atomic.Int64
	RunErrors      atomic.Int64
	RunTotalNanos  atomic.Int64
	UploadCount    atomic.Int64
	UploadItems    atomic.Int64
	UploadErrors   atomic.Int64
	PollCount      atomic.Int64
	PollHits       atomic.Int64
	PollTotalNanos atomic.Int64
	LiveHandles    atomic.Uint64
	PeakHandles    atomic.Uint64
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// RecordUpload implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpload(count int, _ time.Duration, err error) {
	b.UploadCount.Add(1)
	b.UploadItems.Add(int64(count))
	if err != nil {
		b.UploadErrors.Add(1)
	}
}

// RecordPoll implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPoll(hit bool, duration time.Duration) {
	b.PollCount.Add(1)
	b.PollTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.PollHits.Add(1)
	}
}

// RecordHandles implements MetricsCollector.
func (b *BasicMetricsCollector) RecordHandles(live uint64) {
	b.LiveHandles.Store(live)
	for {
		peak := b.PeakHandles.Load()
		if live <= peak || b.PeakHandles.CompareAndSwap(peak, live) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:     b.RunCount.Load(),
		RunErrors:    b.RunErrors.Load(),
		RunAvgNanos:  avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		UploadCount:  b.UploadCount.Load(),
		UploadItems:  b.UploadItems.Load(),
		UploadErrors: b.UploadErrors.Load(),
		PollCount:    b.PollCount.Load(),
		PollHits:     b.PollHits.Load(),
		PollAvgNanos: avg(b.PollTotalNanos.Load(), b.PollCount.Load()),
		LiveHandles:  b.LiveHandles.Load(),
		PeakHandles:  b.PeakHandles.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount     int64
	RunErrors    int64
	RunAvgNanos  int64
	UploadCount  int64
	UploadItems  int64
	UploadErrors int64
	PollCount    int64
	PollHits     int64
	PollAvgNanos int64
	LiveHandles  uint64
	PeakHandles  uint64
}
