package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/veilfs/veilfs/internal/mount"
)

//nolint:gochecknoglobals
var (
	managerOnce    sync.Once
	processManager *mount.Manager
)

//nolint:gochecknoglobals
var unmountCmd = &cobra.Command{
	Use:   "unmount <mount-point>",
	Short: "Unmount a merged view",
	Long: `Unmount drains in-flight operations on the mount, stops its backend and
discards all in-memory overrides.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := activeManager()

		ctx, cancel := context.WithTimeout(cmd.Context(), unmountTimeout)
		defer cancel()

		if err := manager.Unmount(ctx, args[0]); err != nil {
			return fmt.Errorf("(cli-unmount) %w", err)
		}

		fmt.Fprintf(os.Stdout, "Unmounted %s, all overrides discarded.\n", args[0])

		return nil
	},
}
