// Package logging assembles structured slog loggers and formatting helpers used
// across the checklist daemon and its clients.
//
// It owns the console, JSON and styled handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers can tag log
// lines with todo IDs, operation names, and correlation IDs. The package also
// provides a no-op logger for tests, a tee handler for writing one stream in
// two formats, and retention pruning for per-run daemon log files.
package logging
