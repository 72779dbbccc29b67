// go2ctl is the operator CLI for the Go2 bridge. Each subcommand maps to one
// bridge command and prints the reply.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-go2/pkg/client"
	"github.com/teslashibe/go-go2/pkg/protocol"
)

var (
	serverURL string
	timeout   time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "go2ctl",
		Short:         "Operator CLI for the Go2 bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", nats.DefaultURL, "NATS server URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")

	rootCmd.AddCommand(
		statusCmd(),
		actionsCmd(),
		actionCmd(),
		moveCmd(),
		stopCmd(),
		lightCmd(),
		speedCmd(),
		avoidCmd(),
		frameCmd(),
		watchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "go2ctl:", err)
		os.Exit(1)
	}
}

// dial connects to the bridge with the global flags applied.
func dial() (*client.Client, error) {
	c, err := client.Dial(serverURL, client.WithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", serverURL, err)
	}
	return c, nil
}

// printResponse renders the bridge reply. Failed replies become errors so the
// exit code reflects them.
func printResponse(resp protocol.Response) error {
	if !resp.OK {
		return fmt.Errorf("bridge: %s", resp.Msg)
	}
	if resp.Msg != "" {
		fmt.Println(resp.Msg)
	}
	if len(resp.Data) > 0 {
		out, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	if resp.Msg == "" && len(resp.Data) == 0 {
		fmt.Println("ok")
	}
	return nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show robot status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.Status()
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func actionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List supported actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.ListActions()
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func actionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "action <name>",
		Short: "Execute a named action, e.g. hello or sit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.Action(args[0])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <vx> <vy> <vyaw>",
		Short: "Set the relayed velocity (m/s, m/s, rad/s)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals := make([]float64, 3)
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("invalid velocity %q: %w", a, err)
				}
				vals[i] = v
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.Move(vals[0], vals[1], vals[2])
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop movement and release the velocity relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.Stop()
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func lightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "light on|off",
		Short: "Switch the front light",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.SetLight(on)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func speedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speed <level>",
		Short: "Set the speed level (1 slow, 3 fast)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid speed level %q: %w", args[0], err)
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.SetSpeedLevel(level)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func avoidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avoid on|off",
		Short: "Toggle obstacle avoidance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			resp, err := c.SetObstacleAvoidance(enabled)
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
}

func frameCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Capture a single camera frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()
			frame, err := c.CaptureFrame(timeout)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = os.Stdout.Write(frame)
				return err
			}
			if err := os.WriteFile(out, frame, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d bytes to %s\n", len(frame), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "frame.jpg", "output file, or - for stdout")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream camera frames until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			n := 0
			unsubscribe, err := c.WatchFrames(func(frame []byte) {
				n++
				fmt.Printf("frame %d: %d bytes\n", n, len(frame))
			})
			if err != nil {
				return err
			}
			defer unsubscribe()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}
