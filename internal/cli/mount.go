package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/veilfs/veilfs/internal/config"
	"github.com/veilfs/veilfs/internal/mount"
	"github.com/veilfs/veilfs/internal/ui"
)

const (
	stackTraceBufMax = 1 << 24

	// unmountTimeout bounds draining of in-flight operations on teardown.
	unmountTimeout = 30 * time.Second
)

//nolint:gochecknoglobals
var (
	mountSource   string
	mountPoint    string
	mountConfig   string
	mountReadOnly bool
	mountUI       bool
)

//nolint:gochecknoglobals
var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Mount a merged view of a directory tree",
	Long: `Mount exposes a merged view of the source tree at the mount point and
blocks until interrupted; all changes live only in memory and are discarded
on unmount.`,
	Args: cobra.NoArgs,
	RunE: runMount,
}

func init() { //nolint:gochecknoinits
	mountCmd.Flags().StringVar(&mountSource, "source", "", "real directory tree to overlay")
	mountCmd.Flags().StringVar(&mountPoint, "mount", "", "mount point for the merged view")
	mountCmd.Flags().StringVar(&mountConfig, "config", "", "env-style configuration file")
	mountCmd.Flags().BoolVar(&mountReadOnly, "read-only", false, "reject all write operations")
	mountCmd.Flags().BoolVar(&mountUI, "ui", false, "enable the UI")

	_ = mountCmd.MarkFlagRequired("source")
	_ = mountCmd.MarkFlagRequired("mount")
}

func setupLogging(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()
}

func runMount(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	configHandler := config.NewHandler(&config.GodotenvProvider{})

	var filenames []string
	if mountConfig != "" {
		filenames = append(filenames, mountConfig)
	}

	settings, err := configHandler.Load(filenames...)
	if err != nil {
		return fmt.Errorf("(cli-mount) %w", err)
	}

	if mountReadOnly {
		settings.ReadOnly = true
	}

	level := parseLogLevel(settings.LogLevel)
	setupLogging(os.Stdout, level)
	setupSignalHandlers(cancel)

	manager := mount.NewManager(afero.NewOsFs())

	if _, err := manager.Mount(ctx, mount.Request{
		Source:     mountSource,
		MountPoint: mountPoint,
		Options: mount.Options{
			ReadOnly:             settings.ReadOnly,
			CaseInsensitive:      settings.CaseInsensitive,
			MaxOverrideBytes:     settings.MaxOverrideBytes,
			CompressionThreshold: settings.CompressionThreshold,
		},
	}); err != nil {
		return fmt.Errorf("(cli-mount) %w", err)
	}

	var wg sync.WaitGroup

	if mountUI {
		uiHandler := ui.NewHandler(ctx, cancel, manager)
		setupLogging(uiHandler.LogWriter, level)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer setupLogging(os.Stdout, level)

			if err := uiHandler.Launch(); err != nil {
				slog.Error("UI failure: falling back to terminal.", "err", err)
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()

	unmountCtx, unmountCancel := context.WithTimeout(context.Background(), unmountTimeout)
	defer unmountCancel()

	if err := manager.UnmountAll(unmountCtx); err != nil {
		return fmt.Errorf("(cli-mount) %w", err)
	}

	return nil
}
