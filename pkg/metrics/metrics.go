package metrics

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Metrics collects counters for archive operations in this process
type Metrics struct {
	mu sync.RWMutex

	// Build metrics
	EntriesArchivedTotal int64
	BytesArchivedTotal   int64

	// Read path metrics
	EntriesListedTotal       int64
	EntriesExtractedTotal    int64
	BytesExtractedTotal      int64
	PayloadBytesSkippedTotal int64
	MissingEntriesTotal      int64
	CorruptArchivesTotal     int64

	// Per-operation metrics
	EntryFailuresTotal  map[string]int64 // by operation
	OperationCountTotal map[string]int64 // by operation
	OperationDurationNs map[string]int64 // by operation
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		EntryFailuresTotal:  make(map[string]int64),
		OperationCountTotal: make(map[string]int64),
		OperationDurationNs: make(map[string]int64),
	}
}

// RecordArchived records one record written to an archive
func (m *Metrics) RecordArchived(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntriesArchivedTotal++
	m.BytesArchivedTotal += bytes
}

// RecordListed records entries returned by a listing
func (m *Metrics) RecordListed(entries int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntriesListedTotal += entries
}

// RecordExtracted records one payload written to disk
func (m *Metrics) RecordExtracted(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntriesExtractedTotal++
	m.BytesExtractedTotal += bytes
}

// RecordSkipped records payload bytes passed over without reading
func (m *Metrics) RecordSkipped(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PayloadBytesSkippedTotal += bytes
}

// RecordEntryFailure records a per-entry failure that did not abort the operation
func (m *Metrics) RecordEntryFailure(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntryFailuresTotal[operation]++
}

// RecordMissing records requested names that were not found in an archive
func (m *Metrics) RecordMissing(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MissingEntriesTotal += count
}

// RecordCorruptArchive records a read pass that hit broken framing
func (m *Metrics) RecordCorruptArchive() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CorruptArchivesTotal++
}

// RecordOperation records a completed operation and how long it took
func (m *Metrics) RecordOperation(operation string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OperationCountTotal[operation]++
	m.OperationDurationNs[operation] += duration.Nanoseconds()

	log.Debug().
		Str("operation", operation).
		Dur("duration", duration).
		Int64("count", m.OperationCountTotal[operation]).
		Msg("operation completed")
}

// GetPrometheusMetrics returns metrics in Prometheus format
func (m *Metrics) GetPrometheusMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := make(map[string]interface{})

	metrics["unpacker_entries_archived_total"] = m.EntriesArchivedTotal
	metrics["unpacker_bytes_archived_total"] = m.BytesArchivedTotal
	metrics["unpacker_entries_listed_total"] = m.EntriesListedTotal
	metrics["unpacker_entries_extracted_total"] = m.EntriesExtractedTotal
	metrics["unpacker_bytes_extracted_total"] = m.BytesExtractedTotal
	metrics["unpacker_payload_bytes_skipped_total"] = m.PayloadBytesSkippedTotal
	metrics["unpacker_missing_entries_total"] = m.MissingEntriesTotal
	metrics["unpacker_corrupt_archives_total"] = m.CorruptArchivesTotal

	for operation, count := range m.EntryFailuresTotal {
		metrics["unpacker_entry_failures_total{operation=\""+operation+"\"}"] = count
	}
	for operation, count := range m.OperationCountTotal {
		metrics["unpacker_operations_total{operation=\""+operation+"\"}"] = count
		metrics["unpacker_operation_seconds_total{operation=\""+operation+"\"}"] = float64(m.OperationDurationNs[operation]) / 1e9
	}

	return metrics
}

// LogSummary logs a summary of current metrics
func (m *Metrics) LogSummary() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var failures, operations int64
	for _, count := range m.EntryFailuresTotal {
		failures += count
	}
	for _, count := range m.OperationCountTotal {
		operations += count
	}

	log.Info().
		Int64("operations", operations).
		Int64("entries_archived", m.EntriesArchivedTotal).
		Int64("bytes_archived", m.BytesArchivedTotal).
		Int64("entries_listed", m.EntriesListedTotal).
		Int64("entries_extracted", m.EntriesExtractedTotal).
		Int64("bytes_extracted", m.BytesExtractedTotal).
		Int64("payload_bytes_skipped", m.PayloadBytesSkippedTotal).
		Int64("missing_entries", m.MissingEntriesTotal).
		Int64("entry_failures", failures).
		Int64("corrupt_archives", m.CorruptArchivesTotal).
		Msg("metrics summary")
}

// Global metrics instance
var GlobalMetrics = NewMetrics()

// Convenience functions for global metrics
func RecordArchived(bytes int64) {
	GlobalMetrics.RecordArchived(bytes)
}

func RecordListed(entries int64) {
	GlobalMetrics.RecordListed(entries)
}

func RecordExtracted(bytes int64) {
	GlobalMetrics.RecordExtracted(bytes)
}

func RecordSkipped(bytes int64) {
	GlobalMetrics.RecordSkipped(bytes)
}

func RecordEntryFailure(operation string) {
	GlobalMetrics.RecordEntryFailure(operation)
}

func RecordMissing(count int64) {
	GlobalMetrics.RecordMissing(count)
}

func RecordCorruptArchive() {
	GlobalMetrics.RecordCorruptArchive()
}

func RecordOperation(operation string, duration time.Duration) {
	GlobalMetrics.RecordOperation(operation, duration)
}

func LogMetricsSummary() {
	GlobalMetrics.LogSummary()
}
