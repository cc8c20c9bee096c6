package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noaland/mirror"
	"github.com/noaland/mirror/internal/cli/config"
	"github.com/noaland/mirror/internal/inspect"
	"github.com/noaland/mirror/mirrorhttp"
)

var serveAddress string

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the process registry over HTTP",
		Long: `Serve the registry of this process as a JSON API.

The registry is process-wide, so the API shows the types registered in the
serving binary. The standalone tool registers its own report types as a
working example; embed mirrorhttp.NewHandler in your application to expose
its registrations instead.

Endpoints:
  GET /healthz                  liveness probe
  GET /v1/types                 list registered types
  GET /v1/types/{name}          fields and offsets of one type
  GET /v1/types/{name}/schema   JSON Schema for one type
  GET /v1/match?x=NAME&y=NAME   fuzzy type comparison`,
		Example: `  # Serve on the configured address
  mirror serve

  # Serve on a specific port
  mirror serve --address 127.0.0.1:9090`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (host:port)")

	return cmd
}

// registerReportTypes publishes the tool's own report types so the API has
// content when running standalone.
func registerReportTypes() error {
	if _, err := mirror.Register[inspect.FieldLayout]("Name", "Type", "Offset", "Size", "Tag", "Exported", "Anonymous"); err != nil {
		return err
	}
	if _, err := mirror.Register[inspect.StructLayout]("Name", "Size", "Align", "Fields"); err != nil {
		return err
	}
	if _, err := mirror.Register[inspect.PackageReport]("Path", "Name", "Dir", "Structs"); err != nil {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	address := serveAddress
	if address == "" {
		address = cfg.Serve.Address
	}

	if err := registerReportTypes(); err != nil {
		return fmt.Errorf("registering report types: %w", err)
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	serverCfg := mirrorhttp.DefaultConfig(mirrorhttp.NewHandler(log))
	serverCfg.Address = address

	srv, err := mirrorhttp.NewServer(serverCfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	writer := cmd.OutOrStdout()
	color.New(color.FgCyan, color.Bold).Fprintf(writer, "Serving registry on %s\n", address)
	fmt.Fprintf(writer, "  %d types registered\n", mirror.Len())
	color.New(color.FgYellow).Fprintln(writer, "Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigChan:
	}

	fmt.Fprintln(writer, "\nShutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}
