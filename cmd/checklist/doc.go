// Package main hosts the checklist CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into JSON-RPC calls against
// the daemon (add, list, done, undone, rm, db health), daemon lifecycle
// management (daemon, start, stop, status), configuration scaffolding and the
// interactive terminal UI. Configuration resolution, socket discovery and
// client timeouts are centralized in commandContext so subcommands only deal
// with presentation.
//
// Keep this package thin: behavior belongs in the internal packages and is
// surfaced here through commands and flags.
package main
