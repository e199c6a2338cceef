package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/veilfs/veilfs/internal/mount"
	"github.com/veilfs/veilfs/internal/realfs"
)

//nolint:gochecknoglobals
var (
	headerColor = color.New(color.FgCyan, color.Bold)
	stateColor  = map[mount.State]*color.Color{
		mount.StateMounted:    color.New(color.FgGreen),
		mount.StateMounting:   color.New(color.FgYellow),
		mount.StateUnmounting: color.New(color.FgYellow),
		mount.StateFailed:     color.New(color.FgRed),
	}
)

//nolint:gochecknoglobals
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active mounts",
	Long:  `Display state, override counts and memory usage of all active mounts.`,
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		manager := activeManager()

		printStatus(manager.Status())

		return nil
	},
}

// activeManager returns the process-wide mount manager, creating it on first
// use. Mounts are in-memory and per-process; a fresh process has none.
func activeManager() *mount.Manager {
	managerOnce.Do(func() {
		processManager = mount.NewManager(afero.NewOsFs())
	})

	return processManager
}

func printStatus(infos []mount.Info) {
	if len(infos) == 0 {
		fmt.Fprintln(os.Stdout, "No active mounts.")

		return
	}

	real := realfs.NewHandler(afero.NewOsFs())

	for _, info := range infos {
		headerColor.Fprintln(os.Stdout, info.MountPoint)

		state := info.State.String()
		if c, ok := stateColor[info.State]; ok {
			state = c.Sprint(state)
		}
		if info.ReadOnly {
			state += " (read-only)"
		}

		memory := humanize.IBytes(uint64(info.MemoryUsage))
		if info.MaxBytes > 0 {
			memory += " of " + humanize.IBytes(uint64(info.MaxBytes))
		}

		fmt.Fprintf(os.Stdout, "  Source: %s\n", info.Source)
		fmt.Fprintf(os.Stdout, "  Backend: %s, State: %s\n", info.Backend, state)
		fmt.Fprintf(os.Stdout, "  Overrides: Files=%d, Directories=%d, Tombstones=%d\n",
			info.Files, info.Directories, info.Tombstones)
		fmt.Fprintf(os.Stdout, "  Memory: %s\n", memory)
		fmt.Fprintf(os.Stdout, "  Operations: %d (Overrides=%d, Passthrough=%d)\n",
			info.Provider.Ops(), info.Provider.OverrideHits, info.Provider.Passthroughs)

		if du, err := real.Usage(info.Source); err == nil {
			fmt.Fprintf(os.Stdout, "  Source disk: %s free of %s\n",
				humanize.IBytes(uint64(du.FreeSpace)), humanize.IBytes(uint64(du.TotalSize)))
		}
	}
}
