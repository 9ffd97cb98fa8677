// Package metrics declares the Prometheus instrumentation for the media
// scanner: scan runs, per-file processing, external tool invocations,
// duplicate resolution, and database activity.
//
// All metrics are registered with the default registry via promauto at
// package load; expose them by mounting promhttp.Handler.
package metrics
