// Package tui implements the interactive terminal client ("checklist ui").
//
// The model keeps a Board, a mirror of the daemon's last-known todo list, and
// changes it only after the daemon answers successfully, using the todo the
// daemon returned. Ids and creation times are never made up locally. Failed
// calls are written to the client log and leave the board untouched; the
// status line shows a short notice.
package tui
