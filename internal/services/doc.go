// Package services defines shared utilities consumed by the todo service, the
// RPC and HTTP transports, and the clients.
//
// Key responsibilities:
//   - Context helpers that stamp todo IDs, operation names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper, and Kind/MarkerForKind
//     which let transports carry the error class (validation, not found,
//     storage) across a process boundary and restore it on the other side.
//
// Use these helpers when wiring new operations so error classification and
// observability stay uniform between the daemon and its clients.
package services
