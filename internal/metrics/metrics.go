package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediascan_scan_runs_total",
			Help: "Total number of scan runs",
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediascan_scan_is_running",
			Help: "Whether a scan is currently in progress (1 or 0)",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediascan_scan_last_run_duration_seconds",
			Help: "Duration of the last scan in seconds",
		},
	)

	ScanFilesFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediascan_scan_files_found_total",
			Help: "Total number of media files discovered across all scans",
		},
	)

	ScanFilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediascan_scan_files_processed_total",
			Help: "Total number of files processed, by media kind",
		},
		[]string{"kind"},
	)

	ScanErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediascan_scan_errors_total",
			Help: "Total number of per-file scan failures",
		},
	)

	ScanJunkFlagged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediascan_scan_junk_flagged_total",
			Help: "Total number of files flagged as junk",
		},
	)
)

// Duplicate resolver metrics
var (
	ResolverRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediascan_resolver_runs_total",
			Help: "Total number of duplicate resolver runs",
		},
	)

	ResolverDuplicatesMarked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediascan_resolver_duplicates_marked_total",
			Help: "Total duplicate links written, by phase (exact or near)",
		},
		[]string{"phase"},
	)

	ResolverLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediascan_resolver_last_run_duration_seconds",
			Help: "Duration of the last resolver run in seconds",
		},
	)
)

// External tool metrics
var (
	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediascan_tool_invocations_total",
			Help: "External tool invocations, by tool and status",
		},
		[]string{"tool", "status"},
	)

	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediascan_tool_duration_seconds",
			Help:    "External tool invocation duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool"},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediascan_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediascan_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediascan_db_transaction_duration_seconds",
			Help:    "Database batch transaction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"outcome"},
	)

	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediascan_db_rows_affected",
			Help:    "Rows affected by write operations",
			Buckets: []float64{1, 10, 100, 1000, 10000},
		},
		[]string{"operation"},
	)
)

// Filesystem metrics
var (
	FSRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediascan_fs_retries_total",
			Help: "Filesystem operations that needed NFS retry, by final outcome",
		},
		[]string{"operation", "outcome"},
	)

	FSStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediascan_fs_stale_errors_total",
			Help: "NFS stale file handle errors observed",
		},
		[]string{"operation"},
	)
)
