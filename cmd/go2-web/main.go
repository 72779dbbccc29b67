// go2-web serves the browser control surface: an HTTP command proxy and a
// websocket camera relay, both backed by the bridge over NATS.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-go2/internal/config"
	"github.com/teslashibe/go-go2/internal/log"
	"github.com/teslashibe/go-go2/pkg/web"
)

func main() {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "go2-web",
		Short: "HTTP and websocket gateway for the Go2 bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return run(cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (yaml or json)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger := log.New(cfg.Logging.Level, cfg.Logging.Format)

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("go2-web"))
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.NATS.URL, err)
	}
	defer nc.Close()

	srv := web.NewServer(nc, cfg.Bridge.CmdSubject, cfg.Bridge.CameraSubject, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Web.Addr)
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown()
	case err := <-errCh:
		return err
	}
}
