package ui

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/veilfs/veilfs/internal/mount"
	"github.com/veilfs/veilfs/internal/provider"
)

// fakeStatus is a fake implementation of statusProvider. It returns a fixed
// set of mount descriptions and counts how often it was polled.
type fakeStatus struct {
	polls atomic.Uint64
	infos []mount.Info
}

func (fs *fakeStatus) Status() []mount.Info {
	fs.polls.Add(1)

	return fs.infos
}

// TestTeaUI is an integration test for the command-line user interface.
func TestTeaUI(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var in bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := &fakeStatus{
		infos: []mount.Info{
			{
				MountPoint:  "/mnt/data",
				Source:      "/srv/data",
				Backend:     "loopback",
				State:       mount.StateMounted,
				MountedAt:   time.Now(),
				Files:       3,
				Directories: 1,
				Tombstones:  2,
				MemoryUsage: 4096,
				MaxBytes:    1 << 20,
				Provider: provider.StatsSnapshot{
					Reads:        5,
					Writes:       3,
					BytesRead:    2048,
					BytesWritten: 1024,
				},
			},
		},
	}

	handler := &Handler{status: status}
	model := NewTeaModel(handler, status, cancel)
	program := tea.NewProgram(model, tea.WithInput(&in), tea.WithOutput(&buf), tea.WithAltScreen(), tea.WithContext(ctx))

	handler.program = program
	handler.LogWriter = NewTeaLogWriter(handler.program)

	go func() {
		// Simulate some fast-paced logs and key presses for the UI.
		for {
			time.Sleep(time.Millisecond)
			if handler.Ready.Load() {
				program.Send(tea.WindowSizeMsg{Width: 200, Height: 200})
				time.Sleep(time.Millisecond)

				program.Send(LogMsg("log1"))
				time.Sleep(time.Millisecond)

				_, _ = handler.LogWriter.Write([]byte("log2"))
				time.Sleep(time.Millisecond)

				for i := 0; i < 150; i++ {
					_, _ = handler.LogWriter.Write([]byte("fast logs"))
				}
				time.Sleep(time.Millisecond)

				program.Send(tea.WindowSizeMsg{Width: 200, Height: 250})

				time.Sleep(2 * time.Second)
				program.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

				return
			}
			if handler.Failed.Load() {
				return
			}
		}
	}()

	if err := handler.Launch(); err != nil {
		t.Fatalf("Expected nil, got %v", err)
	}

	if buf.Len() == 0 {
		t.Fatal("UI generated no output at all")
	}

	by := buf.Bytes()

	if !bytes.Contains(by, []byte("log1")) {
		t.Fatal("UI did not show the first log message sent (via program.Send)")
	}

	if !bytes.Contains(by, []byte("log2")) {
		t.Fatal("UI did not show the second log message sent (via LogWriter)")
	}

	if !bytes.Contains(by, []byte("/mnt/data")) {
		t.Fatal("UI did not update the mount panels.")
	}

	if status.polls.Load() == 0 {
		t.Fatal("UI never polled the mount status.")
	}
}

// TestTeaUI_Ctrl_C is an integration test for the command-line user interface.
// A Ctrl+C keypress is simulated, which should trigger upstream Context
// cancellation for signalling application teardown.
func TestTeaUI_Ctrl_C(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var in bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := &fakeStatus{}

	handler := &Handler{status: status}
	model := NewTeaModel(handler, status, cancel)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithInput(&in), tea.WithOutput(&buf), tea.WithContext(ctx))

	handler.program = program
	handler.LogWriter = NewTeaLogWriter(handler.program)

	go func() {
		for {
			time.Sleep(time.Millisecond)
			if handler.Ready.Load() {
				program.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

				return
			}
			if handler.Failed.Load() {
				return
			}
		}
	}()

	err := handler.Launch()

	if err == nil {
		t.Fatalf("Expected %v, got nil", context.Canceled)
	}

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected %v, got %v", context.Canceled, err)
	}

	if buf.Len() == 0 {
		t.Fatal("UI generated no output at all")
	}
}
