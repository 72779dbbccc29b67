package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/teslashibe/go-go2/pkg/protocol"
)

func (s *Server) handleGetStatus(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return s.proxy(protocol.CmdStatus, nil)
}

func (s *Server) handleListActions(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return s.proxy(protocol.CmdListActions, nil)
}

func (s *Server) handleExecuteAction(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return textError("missing required parameter: name"), nil
	}
	return s.proxy(protocol.CmdAction, map[string]any{"name": name})
}

func (s *Server) handleMove(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	args := req.GetArguments()
	vx, ok := numberArg(args, "vx")
	if !ok {
		return textError("missing required parameter: vx"), nil
	}
	vy, _ := numberArg(args, "vy")
	vyaw, _ := numberArg(args, "vyaw")
	return s.proxy(protocol.CmdMove, map[string]any{"vx": vx, "vy": vy, "vyaw": vyaw})
}

func (s *Server) handleStop(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return s.proxy(protocol.CmdStop, nil)
}

func (s *Server) handleSetObstacleAvoidance(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	enabled, err := req.RequireBool("enabled")
	if err != nil {
		return textError("missing required parameter: enabled"), nil
	}
	return s.proxy(protocol.CmdObstacleAvoidance, map[string]any{"enabled": enabled})
}

func (s *Server) handleSetSpeedLevel(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	args := req.GetArguments()
	level, ok := numberArg(args, "level")
	if !ok {
		return textError("missing required parameter: level"), nil
	}
	return s.proxy(protocol.CmdSpeedLevel, map[string]any{"level": level})
}

func (s *Server) handleSetLight(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	on, err := req.RequireBool("on")
	if err != nil {
		return textError("missing required parameter: on"), nil
	}
	return s.proxy(protocol.CmdLight, map[string]any{"on": on})
}

// handleGetCameraFrame returns the frame inline as base64 image content;
// assistants cannot subscribe to the broadcast subject themselves.
func (s *Server) handleGetCameraFrame(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	frame, err := s.bridge.CaptureFrame(frameTimeout)
	if err != nil {
		return textError("failed to capture frame: " + err.Error()), nil
	}

	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: fmt.Sprintf("Camera frame captured (%d bytes)", len(frame))},
			mcplib.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(frame),
				MIMEType: "image/jpeg",
			},
		},
	}, nil
}

// proxy sends one command to the bridge and renders its reply. Failed
// replies come back as error results, not Go errors, so the assistant sees
// the bridge's message.
func (s *Server) proxy(cmd string, params map[string]any) (*mcplib.CallToolResult, error) {
	resp, err := s.bridge.Send(cmd, params)
	if err != nil {
		return textError(fmt.Sprintf("%s failed: %v", cmd, err)), nil
	}
	if !resp.OK {
		return textError(formatResponse(resp)), nil
	}
	return textResult(formatResponse(resp)), nil
}

// formatResponse renders a bridge reply as readable text.
func formatResponse(resp protocol.Response) string {
	status := "ERROR"
	if resp.OK {
		status = "OK"
	}
	text := fmt.Sprintf("%s: %s", status, resp.Msg)
	if len(resp.Data) > 0 {
		if data, err := json.MarshalIndent(resp.Data, "", "  "); err == nil {
			text += "\n" + string(data)
		}
	}
	return text
}

// numberArg coerces a JSON argument to float64.
func numberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// textResult returns a successful text result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}

// textError returns an error text result.
func textError(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
