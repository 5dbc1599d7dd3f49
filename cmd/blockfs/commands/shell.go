package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/blockfs/internal/logger"
	"github.com/marmos91/blockfs/internal/shell"
	"github.com/marmos91/blockfs/pkg/config"
	"github.com/marmos91/blockfs/pkg/metrics"
	"github.com/marmos91/blockfs/pkg/store/image"
	"github.com/marmos91/blockfs/pkg/vfs"
	"github.com/spf13/cobra"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/blockfs/pkg/metrics/prometheus"
)

var (
	shellFresh   bool
	shellMetrics bool
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive filesystem shell",
	Long: `Start the interactive blockfs shell.

The configured image is loaded when it exists; otherwise the shell starts on
a blank disk. Only raw block contents are persisted, so a loaded disk starts
with an empty directory tree and every block free.

Examples:
  # Start with the default image
  blockfs shell

  # Ignore any saved image
  blockfs shell --fresh

  # Serve Prometheus metrics while the shell runs
  blockfs shell --metrics

  # Use a BadgerDB image store
  BLOCKFS_IMAGE_BACKEND=badger BLOCKFS_IMAGE_BADGER_DIR=/tmp/blockfs blockfs shell`,
	RunE: runShell,
}

func init() {
	shellCmd.Flags().BoolVar(&shellFresh, "fresh", false, "Start on a blank disk even if the image exists")
	shellCmd.Flags().BoolVar(&shellMetrics, "metrics", false, "Serve Prometheus metrics (overrides metrics.enabled)")
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Metrics.Enabled = shellMetrics
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	stopTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	var (
		sessionMetrics vfs.Metrics
		imageMetrics   image.Metrics
	)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		sessionMetrics = metrics.NewSessionMetrics()
		imageMetrics = metrics.NewImageMetrics()
	}

	store, err := config.CreateImageStore(ctx, cfg.Image, imageMetrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close image store", logger.KeyError, err)
		}
	}()

	if cfg.Metrics.Enabled {
		stopServer := startMetricsServer(ctx, cfg.Metrics.Port, store)
		defer stopServer()
	}

	session, err := openSession(ctx, cfg, store, sessionMetrics)
	if err != nil {
		return err
	}

	sh := shell.New(session, shell.Config{
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
		Color:      cfg.Shell.Color,
		Store:      store,
		ImageName:  cfg.Image.Name,
		SaveOnExit: cfg.Shell.SaveOnExit,
		Banner:     true,
	})
	return sh.Run(ctx)
}

// openSession loads the configured image, falling back to a blank disk when
// it does not exist or --fresh is set.
func openSession(ctx context.Context, cfg *config.Config, store image.Store, m vfs.Metrics) (*vfs.Session, error) {
	opts := []vfs.Option{
		vfs.WithGeometry(cfg.Disk.Geometry()),
		vfs.WithLeakBlocksOnRemove(cfg.Compat.LeakBlocksOnRemove),
		vfs.WithMetrics(m),
	}

	if shellFresh {
		return vfs.New(opts...)
	}

	session, err := vfs.LoadSession(ctx, store, cfg.Image.Name, opts...)
	if errors.Is(err, image.ErrImageNotFound) {
		logger.Info("no saved image, starting on a blank disk", logger.KeyImage, cfg.Image.Name)
		return vfs.New(opts...)
	}
	return session, err
}

// startMetricsServer serves /metrics and health probes in the background.
// Readiness reflects the image store health.
func startMetricsServer(ctx context.Context, port int, store image.Store) func() {
	srv := metrics.NewServer(port, store.HealthCheck)
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := srv.Start(ctx); err != nil {
			logger.Error("metrics server error", logger.KeyError, err)
			_, _ = fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
