// Package preflight provides readiness checks for the filesystem paths and
// network endpoints the checklist daemon depends on.
//
// The daemon runs RunAll before opening the database and refuses to start when
// a check fails; "checklist status" reuses the same checks when the daemon is
// offline so operators can see why it would not come up.
//
// Optional features are skipped when unconfigured (an empty api_bind skips
// the HTTP port check).
package preflight
