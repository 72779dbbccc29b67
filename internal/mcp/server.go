// Package mcp exposes the Go2 bridge command set to AI assistants over the
// Model Context Protocol, one tool per bridge command.
package mcp

import (
	"context"
	"log"
	"os"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/teslashibe/go-go2/pkg/protocol"
)

// frameTimeout bounds how long get_camera_frame waits for the bridge.
const frameTimeout = 5 * time.Second

// BridgeAPI is the slice of the bridge client the tools need. Satisfied by
// *client.Client.
type BridgeAPI interface {
	Send(cmd string, params map[string]any) (protocol.Response, error)
	CaptureFrame(timeout time.Duration) ([]byte, error)
}

// Server proxies MCP tool calls to the bridge.
type Server struct {
	bridge BridgeAPI
	logger zerolog.Logger
}

// New creates a Server. Call Run() to start serving on stdio.
func New(bridge BridgeAPI, logger zerolog.Logger) *Server {
	return &Server{
		bridge: bridge,
		logger: logger.With().Str("component", "mcp").Logger(),
	}
}

// Run registers the tools and serves on stdio. Blocks until stdin is closed
// or the context is canceled. Log output goes to stderr; stdout carries the
// MCP JSON-RPC stream.
func (s *Server) Run(ctx context.Context) error {
	srv := mcpserver.NewMCPServer(
		"go2-robot",
		"0.1.0",
		mcpserver.WithRecovery(),
	)

	s.registerTools(srv)

	stdio := mcpserver.NewStdioServer(srv)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))

	s.logger.Info().Msg("MCP server starting on stdio")
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcplib.NewTool("get_status",
			mcplib.WithDescription("Get the current status of the Go2 robot: obstacle avoidance state, speed level, and light state"),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleGetStatus,
	)

	srv.AddTool(
		mcplib.NewTool("list_actions",
			mcplib.WithDescription("List all available robot actions (e.g. stand_up, sit, dance1, hello)"),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleListActions,
	)

	srv.AddTool(
		mcplib.NewTool("execute_action",
			mcplib.WithDescription("Execute a named action on the robot"),
			mcplib.WithString("name", mcplib.Required(), mcplib.Description("Action name (e.g. stand_up, stand_down, sit, hello, stretch, dance1, dance2, heart, front_flip, front_jump, back_flip, left_flip, hand_stand, balance_stand, recovery_stand, damp, stop_move)")),
		),
		s.handleExecuteAction,
	)

	srv.AddTool(
		mcplib.NewTool("move",
			mcplib.WithDescription("Move the robot with the given velocity. The robot must be standing first. Movement continues until a stop command or new move command; the bridge stops the robot automatically if no new command arrives within its safety timeout."),
			mcplib.WithNumber("vx", mcplib.Required(), mcplib.Description("Forward/backward velocity in m/s (-1.0 to 1.0). Positive = forward.")),
			mcplib.WithNumber("vy", mcplib.Description("Left/right velocity in m/s (-1.0 to 1.0). Positive = left.")),
			mcplib.WithNumber("vyaw", mcplib.Description("Rotation velocity in rad/s (-1.0 to 1.0). Positive = counter-clockwise.")),
		),
		s.handleMove,
	)

	srv.AddTool(
		mcplib.NewTool("stop",
			mcplib.WithDescription("Immediately stop all robot movement. Use this as an emergency stop or to halt motion."),
		),
		s.handleStop,
	)

	srv.AddTool(
		mcplib.NewTool("set_obstacle_avoidance",
			mcplib.WithDescription("Enable or disable the robot's obstacle avoidance system. Enabled by default at bridge startup."),
			mcplib.WithBoolean("enabled", mcplib.Required(), mcplib.Description("True to enable, false to disable")),
		),
		s.handleSetObstacleAvoidance,
	)

	srv.AddTool(
		mcplib.NewTool("set_speed_level",
			mcplib.WithDescription("Set the robot's movement speed level"),
			mcplib.WithNumber("level", mcplib.Required(), mcplib.Description("Speed level from 1 (slow) to 3 (fast)")),
		),
		s.handleSetSpeedLevel,
	)

	srv.AddTool(
		mcplib.NewTool("set_light",
			mcplib.WithDescription("Turn the robot's head light on or off"),
			mcplib.WithBoolean("on", mcplib.Required(), mcplib.Description("True to turn on (max brightness), false to turn off")),
		),
		s.handleSetLight,
	)

	srv.AddTool(
		mcplib.NewTool("get_camera_frame",
			mcplib.WithDescription("Capture a single camera frame from the robot and return it as a JPEG image. The bridge must be running with camera publishing enabled."),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleGetCameraFrame,
	)
}
