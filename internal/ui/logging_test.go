package ui

import (
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedProgram is a fake implementation of teaProgramProvider that
// collects every message it is sent.
type capturedProgram struct {
	msgs chan tea.Msg
}

func newCapturedProgram(buffer int) *capturedProgram {
	return &capturedProgram{msgs: make(chan tea.Msg, buffer)}
}

func (cp *capturedProgram) Send(msg tea.Msg) {
	cp.msgs <- msg
}

// next returns the next forwarded line or fails the test after a timeout.
func (cp *capturedProgram) next(t *testing.T) LogMsg {
	t.Helper()

	select {
	case msg := <-cp.msgs:
		line, ok := msg.(LogMsg)
		require.True(t, ok, "forwarded message is not a log line: %T", msg)

		return line
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for a forwarded log line")

		return ""
	}
}

// TestTeaLogWriter_Success_SlogHandler verifies that lines rendered by the
// slog handler the mount command installs arrive in the program as [LogMsg].
func TestTeaLogWriter_Success_SlogHandler(t *testing.T) {
	t.Parallel()

	program := newCapturedProgram(16)
	writer := NewTeaLogWriter(program)
	defer writer.Stop()

	logger := slog.New(tint.NewHandler(writer, &tint.Options{NoColor: true}))
	logger.Info("Mounted", "mount", "/mnt/view", "backend", "loopback")

	line := string(program.next(t))
	assert.Contains(t, line, "Mounted")
	assert.Contains(t, line, "/mnt/view")
	assert.Contains(t, line, "loopback")
}

// TestTeaLogWriter_Success_OrderPreserved verifies that lines are forwarded
// in the order they were written.
func TestTeaLogWriter_Success_OrderPreserved(t *testing.T) {
	t.Parallel()

	program := newCapturedProgram(16)
	writer := NewTeaLogWriter(program)
	defer writer.Stop()

	for _, line := range []string{"override set", "tombstone set", "override cleared"} {
		n, err := writer.Write([]byte(line))
		require.NoError(t, err)
		require.Equal(t, len(line), n)
	}

	assert.Equal(t, LogMsg("override set"), program.next(t))
	assert.Equal(t, LogMsg("tombstone set"), program.next(t))
	assert.Equal(t, LogMsg("override cleared"), program.next(t))
}

// TestTeaLogWriter_Success_StopDiscards verifies that Stop is idempotent and
// that lines written afterwards are counted as dropped, not delivered.
func TestTeaLogWriter_Success_StopDiscards(t *testing.T) {
	t.Parallel()

	program := newCapturedProgram(16)
	writer := NewTeaLogWriter(program)

	_, err := writer.Write([]byte("before stop"))
	require.NoError(t, err)
	assert.Equal(t, LogMsg("before stop"), program.next(t))

	writer.Stop()
	writer.Stop()

	n, err := writer.Write([]byte("after stop"))
	require.NoError(t, err)
	assert.Equal(t, len("after stop"), n)
	assert.Positive(t, writer.Dropped())

	select {
	case msg := <-program.msgs:
		t.Fatalf("unexpected message after stop: %v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestTeaLogWriter_Success_FullBufferDrops verifies that a full buffer never
// blocks the logging call site.
func TestTeaLogWriter_Success_FullBufferDrops(t *testing.T) {
	t.Parallel()

	// The program is never read from, so the forwarding goroutine stalls on
	// its first delivery and the channel buffer fills up behind it.
	program := newCapturedProgram(0)
	writer := NewTeaLogWriter(program)

	for i := 0; i < logBufferSize+100; i++ {
		n, err := writer.Write([]byte("x"))
		require.NoError(t, err)
		require.Equal(t, 1, n)
	}

	assert.Positive(t, writer.Dropped())
}
