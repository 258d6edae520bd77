package serialtransport_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyfield-edm/internal/serialtransport"
)

// pipeConn adapts a pair of io.Pipe ends into an io.ReadWriteCloser, standing
// in for a real serial port so these tests can drive both sides of the
// connection in-process.
type pipeConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p pipeConn) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p pipeConn) Close() error {
	p.r.Close()
	return p.w.Close()
}

func newLoopback() (client *serialtransport.Handle, remote io.ReadWriteCloser) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	client = serialtransport.OpenReadWriteCloser(pipeConn{r: r1, w: w2})
	remote = pipeConn{r: r2, w: w1}
	return
}

func TestReadUntil_ReceivesFrame(t *testing.T) {
	client, remote := newLoopback()
	defer client.Close()
	defer remote.Close()

	go func() {
		remote.Write([]byte("0008390 1001021 3080834 83\n"))
	}()

	buf, err := client.ReadUntil(context.Background(), '\n', time.Second)
	require.NoError(t, err)
	assert.Equal(t, "0008390 1001021 3080834 83\n", string(buf))
}

func TestReadUntil_Timeout(t *testing.T) {
	client, remote := newLoopback()
	defer client.Close()
	defer remote.Close()

	_, err := client.ReadUntil(context.Background(), '\n', 20*time.Millisecond)
	require.Error(t, err)
	var timeoutErr *serialtransport.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Contains(t, timeoutErr.Error(), "check aim")
}

func TestReadUntil_ContextCancellation(t *testing.T) {
	client, remote := newLoopback()
	defer client.Close()
	defer remote.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ReadUntil(ctx, '\n', time.Second)
	require.Error(t, err)
}

func TestWrite_SendsBytes(t *testing.T) {
	client, remote := newLoopback()
	defer client.Close()
	defer remote.Close()

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 3)
		io.ReadFull(remote, buf)
		done <- buf
	}()

	require.NoError(t, client.Write([]byte{0x11, 0x0D, 0x0A}))
	assert.Equal(t, []byte{0x11, 0x0D, 0x0A}, <-done)
}

func TestClose_Idempotent(t *testing.T) {
	client, remote := newLoopback()
	defer remote.Close()

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}
