// Package todos persists todo items in SQLite.
//
// The Store manages the database connection, schema initialization, and the
// create, list, completion-update and delete operations the daemon exposes,
// plus stats and health diagnostics. Every read goes to the database; nothing
// is cached in process, so concurrent callers always observe committed rows.
//
// Schema changes bump the version in schema.go. There is no migration path:
// users clear the database to adopt the new schema.
package todos
