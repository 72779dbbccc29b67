// go2-bridge is the safety-gated command relay daemon. It accepts commands
// over NATS, relays velocity to the robot with a watchdog, and publishes
// camera frames.
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
	"github.com/teslashibe/go-go2/internal/metrics"
	"github.com/teslashibe/go-go2/internal/natsserver"
	"github.com/teslashibe/go-go2/pkg/bridge"
	"github.com/teslashibe/go-go2/pkg/robot"
)

func main() {
	var (
		cfgFile string
		sim     bool
	)

	rootCmd := &cobra.Command{
		Use:   "go2-bridge",
		Short: "Safety-gated command relay daemon for the Go2",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return run(cfg, sim)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (yaml or json)")
	rootCmd.PersistentFlags().BoolVar(&sim, "sim", false, "use the simulated robot instead of a real driver")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, sim bool) error {
	logger := log.New(cfg.Logging.Level, cfg.Logging.Format)

	// The real DDS-backed driver lives behind robot.Robot in a separate
	// module; this daemon currently only ships the simulator.
	if !sim {
		return fmt.Errorf("no robot driver configured, run with --sim")
	}
	var r robot.Robot = robot.NewSim()
	logger.Info().Msg("using simulated robot")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Transport handle. Bind/connect failure here is fatal by design.
	var nc *nats.Conn
	if cfg.NATS.Embedded {
		srv, err := natsserver.New(natsserver.Config{
			Host: cfg.NATS.Host,
			Port: cfg.NATS.Port,
		}, logger)
		if err != nil {
			return fmt.Errorf("embedded nats: %w", err)
		}
		defer srv.Shutdown()
		if nc, err = srv.Connect(nats.Name("go2-bridge")); err != nil {
			return fmt.Errorf("connect embedded nats: %w", err)
		}
	} else {
		var err error
		nc, err = nats.Connect(cfg.NATS.URL, nats.Name("go2-bridge"))
		if err != nil {
			return fmt.Errorf("connect %s: %w", cfg.NATS.URL, err)
		}
	}
	defer nc.Close()

	var m *metrics.Bridge
	if cfg.Metrics.Enabled {
		var err error
		if m, err = metrics.New(nil); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	b := bridge.New(r, nc, cfg.Bridge, m, logger)
	return b.Run(ctx)
}
