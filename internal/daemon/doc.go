// Package daemon coordinates the long-running checklist process.
//
// It wires configuration, the todo store and the todo service into a single
// lifecycle with flock-based locking to prevent multiple instances against the
// same log directory, reports runtime status and database health, and owns the
// optional HTTP API (gorilla/mux) that mirrors the JSON-RPC operations for
// non-Go clients.
//
// Keep orchestration here: todo semantics live in internal/api and
// persistence in internal/todos.
package daemon
