// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI and the terminal UI.
//
// It owns socket lifecycle management and the request/response DTOs. Todo
// procedures accept raw JSON params so each payload is checked against its
// operation schema before it is decoded. Errors cross the socket as
// "[kind] message" strings and the client turns them back into RemoteError
// values that match the services sentinels with errors.Is.
//
// Reuse these types when adding new RPC endpoints to keep the protocol stable
// and compatible with existing command implementations.
package ipc
