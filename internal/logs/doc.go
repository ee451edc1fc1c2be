// Package logs reads checklist log files for `checklist logs`.
//
// Last loads the trailing lines of a file with bounded memory and returns the
// byte offset to resume from; Follow polls from an offset and hands each new
// line to a callback until the context ends. A missing file is treated as an
// empty log so the CLI can be pointed at a daemon that has not started yet.
package logs
