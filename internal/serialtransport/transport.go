// Package serialtransport implements the serial wire transport: open one
// port per device, write command bytes, and read a terminated frame with
// a timeout. Scoped acquisition guarantees every open is paired with a
// close on all exit paths, including cancellation.
package serialtransport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// TimeoutError reports that a read did not complete within its deadline,
// carrying an operator-facing hint for what to check.
type TimeoutError struct {
	Hint string
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("timeout: %s", e.Hint) }

// DefaultReadTimeout is the individual-read timeout: generous because the
// device may pause for several seconds while ranging.
const DefaultReadTimeout = 10 * time.Second

// Handle wraps an open serial port. It is owned by exactly one in-flight
// operation at a time; callers are responsible for external
// synchronisation (the Orchestrator's per-device mutex serves this role —
// the transport itself performs no locking beyond what the OS provides).
type Handle struct {
	port io.ReadWriteCloser
	rd   *bufio.Reader
}

// Open acquires exclusive access to portName at the given baud rate.
func Open(portName string, baud int) (*Handle, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("serialtransport: open %s: %w", portName, err)
	}
	return &Handle{port: port, rd: bufio.NewReader(port)}, nil
}

// OpenReadWriteCloser wraps an already-open io.ReadWriteCloser (e.g. a TCP
// connection to a network-attached EDM bridge, or a test double) as a
// Handle, bypassing the OS serial layer.
func OpenReadWriteCloser(rwc io.ReadWriteCloser) *Handle {
	return &Handle{port: rwc, rd: bufio.NewReader(rwc)}
}

// Write queues bytes for transmission, returning once they are all sent.
func (h *Handle) Write(b []byte) error {
	_, err := h.port.Write(b)
	if err != nil {
		return fmt.Errorf("serialtransport: write: %w", err)
	}
	return nil
}

// ReadUntil returns the next frame up to and including terminator, or
// TimeoutError after the deadline. The read runs in a goroutine so that
// context cancellation can return control to the caller even though the
// underlying Read call may still be blocked; in that case the caller must
// discard the eventually-arriving response before reusing the handle.
func (h *Handle) ReadUntil(ctx context.Context, terminator byte, timeout time.Duration) ([]byte, error) {
	type result struct {
		buf []byte
		err error
	}
	ch := make(chan result, 1)

	go func() {
		buf, err := h.rd.ReadBytes(terminator)
		ch <- result{buf: buf, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("serialtransport: read: %w", r.err)
		}
		return r.buf, nil
	case <-timer.C:
		return nil, &TimeoutError{Hint: "Could not find prism; check aim"}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close releases the port. It is safe to call more than once.
func (h *Handle) Close() error {
	if h.port == nil {
		return nil
	}
	err := h.port.Close()
	h.port = nil
	if err != nil {
		return fmt.Errorf("serialtransport: close: %w", err)
	}
	return nil
}

// WithHandle opens portName, runs fn, and guarantees Close runs on every
// exit path, including a panic unwinding through fn.
func WithHandle(portName string, baud int, fn func(*Handle) error) (err error) {
	h, err := Open(portName, baud)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(h)
}
