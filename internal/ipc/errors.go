package ipc

import (
	"errors"
	"fmt"
	"net/rpc"
	"strings"

	"checklist/internal/api"
	"checklist/internal/services"
)

// RemoteError is an error returned by the daemon, classified by kind.
type RemoteError struct {
	Kind    string
	Path    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is matches the services sentinel for the error kind.
func (e *RemoteError) Is(target error) bool {
	marker := services.MarkerForKind(e.Kind)
	return marker != nil && target == marker
}

// encodeError renders err as "[kind] message", or "[validation:path] message"
// for validation failures that name a field.
func encodeError(err error) error {
	if err == nil {
		return nil
	}
	kind := services.Kind(err)
	if kind == "" {
		return err
	}
	tag := kind
	var validation *api.ValidationError
	if errors.As(err, &validation) && validation.Path != "" {
		tag += ":" + validation.Path
	}
	return fmt.Errorf("[%s] %s", tag, err.Error())
}

// decodeError converts an rpc.ServerError back into a RemoteError. Transport
// failures are returned unchanged.
func decodeError(err error) error {
	if err == nil {
		return nil
	}
	var serverErr rpc.ServerError
	if !errors.As(err, &serverErr) {
		return err
	}
	msg := string(serverErr)
	remote := &RemoteError{Message: msg}
	if strings.HasPrefix(msg, "[") {
		if end := strings.Index(msg, "] "); end > 0 {
			tag := msg[1:end]
			kind, path, _ := strings.Cut(tag, ":")
			if services.MarkerForKind(kind) != nil {
				remote.Kind = kind
				remote.Path = path
				remote.Message = msg[end+2:]
			}
		}
	}
	return remote
}
