// Package api defines the wire-format types and the todo service shared by the
// JSON-RPC and HTTP transports.
//
// # Key Types
//
// Todo: transport representation of a todo with snake_case JSON keys and an
// RFC3339 created_at string.
//
// CreateTodoInput, UpdateTodoCompletionInput, DeleteTodoInput: operation
// inputs. Raw payloads are checked against embedded JSON Schemas (see
// schemas/) before they are decoded, so a wrong type or a missing field is
// reported as a ValidationError carrying the offending field path rather than
// as a decoding failure.
//
// TodoService: the four todo operations plus Stats. It validates inputs,
// normalises titles to NFC, calls the store, logs storage failures where they
// happen, and returns errors tagged with services.ErrValidation,
// services.ErrNotFound or services.ErrStorage.
package api
