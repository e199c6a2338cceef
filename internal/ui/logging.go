package ui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// LogMsg is one rendered log line, typed for identification as a [tea.Msg]
// within a [tea.Program].
type LogMsg string

// teaProgramProvider abstracts the message sink of a [tea.Program].
type teaProgramProvider interface {
	Send(msg tea.Msg)
}

// logBufferSize bounds how many rendered lines may be queued towards the
// program before Write starts dropping.
const logBufferSize = 512

// TeaLogWriter adapts a [tea.Program] into an [io.Writer], so that the slog
// handler installed by the mount command renders into the log viewport
// instead of the terminal. Lines are handed off through a buffered channel;
// when the buffer is full the line is dropped rather than stalling the
// logging call site.
type TeaLogWriter struct {
	program teaProgramProvider

	lines    chan LogMsg
	done     chan struct{}
	stopOnce sync.Once

	dropped atomic.Uint64
}

// NewTeaLogWriter returns a pointer to a new [TeaLogWriter] and starts its
// forwarding goroutine; [TeaLogWriter.Stop] releases the goroutine again.
func NewTeaLogWriter(program teaProgramProvider) *TeaLogWriter {
	wr := &TeaLogWriter{
		program: program,
		lines:   make(chan LogMsg, logBufferSize),
		done:    make(chan struct{}),
	}

	go wr.forward()

	return wr
}

// Stop ends the forwarding goroutine; safe to call more than once. Lines
// written after Stop are discarded.
func (wr *TeaLogWriter) Stop() {
	wr.stopOnce.Do(func() {
		close(wr.done)
	})
}

// Dropped returns how many lines were discarded because the buffer was full
// or the writer was already stopped.
func (wr *TeaLogWriter) Dropped() uint64 {
	return wr.dropped.Load()
}

// forward delivers queued lines to the program until Stop.
func (wr *TeaLogWriter) forward() {
	for {
		select {
		case <-wr.done:
			return
		case line := <-wr.lines:
			wr.program.Send(line)
		}
	}
}

// Write queues one rendered log line towards the program. It never blocks
// and never fails; logging must not be able to stall filesystem operations.
func (wr *TeaLogWriter) Write(p []byte) (int, error) {
	select {
	case <-wr.done:
		wr.dropped.Add(1)
	case wr.lines <- LogMsg(p):
	default:
		wr.dropped.Add(1)
	}

	return len(p), nil
}
