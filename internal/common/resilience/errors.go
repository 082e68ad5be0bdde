package resilience

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// IsTransientNet classifies an error as a transient network failure:
// I/O timeouts, connection resets, and premature connection closes,
// including wrapped causes. Decode and validation errors are not transient.
func IsTransientNet(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	return false
}
