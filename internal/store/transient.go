package store

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/go-redis/redis/v8"
)

// IsTransient reports whether err is a transient connectivity failure worth
// retrying. Absence markers, context cancellation, and protocol-level errors
// are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, redis.Nil) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	// go-redis surfaces pool exhaustion and closed-client failures as plain
	// errors; match the known connectivity messages.
	msg := err.Error()
	return strings.Contains(msg, "connection pool timeout") ||
		strings.Contains(msg, "client is closed") ||
		strings.Contains(msg, "connection refused")
}
