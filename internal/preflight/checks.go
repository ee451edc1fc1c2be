package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "(error: path not configured)"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSocket fails when another process is already answering on the IPC
// socket. A leftover socket file with no listener passes; the daemon replaces it.
func CheckSocket(ctx context.Context, path string) Result {
	const name = "IPC socket"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (available)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	dialCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "unix", path)
	if err == nil {
		_ = conn.Close()
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: another daemon is listening)", path)}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (stale socket will be replaced)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (unreachable: %v)", path, err)}
}

// CheckAPIBind verifies that the HTTP API address can be bound.
func CheckAPIBind(ctx context.Context, bind string) Result {
	const name = "HTTP API"

	bind = strings.TrimSpace(bind)
	if bind == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", bind)
	if err != nil {
		if errors.Is(err, unix.EADDRINUSE) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: address already in use)", bind)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", bind, err)}
	}
	_ = listener.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (available)", bind)}
}
