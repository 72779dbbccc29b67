// go2-mcp exposes the Go2 bridge to AI assistants as an MCP server on
// stdio, proxying tool calls over NATS.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-go2/internal/config"
	"github.com/teslashibe/go-go2/internal/mcp"
	"github.com/teslashibe/go-go2/pkg/client"
)

func main() {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "go2-mcp",
		Short: "MCP server exposing the Go2 bridge to AI assistants",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the MCP JSON-RPC stream; log to stderr.
			logger := zerolog.New(
				zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339},
			).With().Timestamp().Logger()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			c, err := client.Dial(cfg.NATS.URL,
				client.WithSubjects(cfg.Bridge.CmdSubject, cfg.Bridge.CameraSubject))
			if err != nil {
				return fmt.Errorf("connect %s: %w", cfg.NATS.URL, err)
			}
			defer c.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return mcp.New(c, logger).Run(ctx)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (yaml or json)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
