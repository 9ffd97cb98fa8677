// Package logging provides a simple leveled logging interface for the
// media scanner.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Recoverable problems (per-file failures, missing tools)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the process
//
// The log level is configured via the LOG_LEVEL environment variable and
// can be overridden programmatically with SetLevel.
package logging
