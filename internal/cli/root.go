// Package cli implements the command-line surface of the application.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the root command for veilfs.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:     "veilfs",
	Version: "dev",
	Short:   "Virtual filesystem overlaying in-memory changes onto a real directory tree",
	Long: `veilfs exposes a merged view of a real directory tree and an in-memory
override layer. Writes, deletions and new files live only in memory; the
underlying tree is never modified.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion sets the reported version on the root command.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func init() { //nolint:gochecknoinits
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the veilfs version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(unmountCmd)
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
