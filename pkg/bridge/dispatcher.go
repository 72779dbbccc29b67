package bridge

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/teslashibe/go-go2/internal/metrics"
	"github.com/teslashibe/go-go2/pkg/protocol"
	"github.com/teslashibe/go-go2/pkg/robot"
)

// FramePublisher publishes one out-of-band camera frame. Satisfied by
// *nats.Conn.
type FramePublisher interface {
	Publish(subject string, data []byte) error
}

// Dispatcher terminates the command request/reply channel. Every request
// produces exactly one response; decode and capability errors are reported
// in-band as ok=false and never escape the dispatch loop.
type Dispatcher struct {
	robot        robot.Robot
	watchdog     *Watchdog
	frames       FramePublisher
	frameSubject string
	logger       zerolog.Logger
	metrics      *metrics.Bridge
}

// NewDispatcher creates a Dispatcher. frames may be nil when out-of-band
// frame delivery is not wired (get_camera_frame then reports failure).
func NewDispatcher(r robot.Robot, w *Watchdog, frames FramePublisher, frameSubject string, m *metrics.Bridge, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		robot:        r,
		watchdog:     w,
		frames:       frames,
		frameSubject: frameSubject,
		logger:       logger.With().Str("component", "dispatcher").Logger(),
		metrics:      m,
	}
}

// Subscribe attaches the dispatcher to the command subject. The NATS
// reply-inbox discipline gives one in-flight request per requester and
// exactly one reply per request.
func (d *Dispatcher) Subscribe(nc *nats.Conn, subject string) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		resp := d.Dispatch(msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(resp); err != nil {
			d.logger.Error().Err(err).Msg("respond failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	d.logger.Info().Str("subject", subject).Msg("command dispatcher listening")
	return sub, nil
}

// Dispatch decodes one raw request and executes it to completion, returning
// the encoded response.
func (d *Dispatcher) Dispatch(raw []byte) []byte {
	req, err := protocol.DecodeRequest(raw)
	if err != nil {
		d.logger.Warn().Err(err).Msg("invalid request")
		d.metrics.Command("invalid", false)
		return protocol.Response{OK: false, Msg: "invalid request"}.Encode()
	}

	resp := d.dispatch(req)
	resp.ID = req.ID
	d.metrics.Command(req.Cmd, resp.OK)
	if !resp.OK {
		d.logger.Warn().Str("cmd", req.Cmd).Str("msg", resp.Msg).Msg("command failed")
	} else {
		d.logger.Debug().Str("cmd", req.Cmd).Msg("command ok")
	}
	return resp.Encode()
}

func (d *Dispatcher) dispatch(req protocol.Request) protocol.Response {
	switch req.Cmd {
	case protocol.CmdMove:
		return d.handleMove(req.Params)
	case protocol.CmdStop:
		return d.handleStop()
	case protocol.CmdAction:
		return d.handleAction(req.Params)
	case protocol.CmdObstacleAvoidance:
		return d.handleObstacleAvoidance(req.Params)
	case protocol.CmdSpeedLevel:
		return d.handleSpeedLevel(req.Params)
	case protocol.CmdLight:
		return d.handleLight(req.Params)
	case protocol.CmdListActions:
		return protocol.Response{OK: true, Msg: "actions", Data: map[string]any{"actions": protocol.ActionNames()}}
	case protocol.CmdStatus:
		st := d.robot.Status()
		return protocol.Response{OK: true, Msg: "ok", Data: map[string]any{
			"obstacle_avoidance": st.ObstacleAvoidance,
			"speed_level":        st.SpeedLevel,
			"light_on":           st.LightOn,
		}}
	case protocol.CmdGetCameraFrame:
		return d.handleGetCameraFrame(req)
	}
	return protocol.Response{OK: false, Msg: fmt.Sprintf("unknown command: %s", req.Cmd)}
}

func (d *Dispatcher) handleMove(params map[string]any) protocol.Response {
	vx := floatParam(params, "vx", 0)
	vy := floatParam(params, "vy", 0)
	vyaw := floatParam(params, "vyaw", 0)
	d.watchdog.SetVelocity(vx, vy, vyaw)
	return protocol.Response{OK: true, Msg: "velocity updated"}
}

// handleStop releases watchdog control and also issues one direct zero move,
// so the stop takes effect even if the next watchdog tick is delayed.
func (d *Dispatcher) handleStop() protocol.Response {
	d.watchdog.Stop()
	if err := d.robot.Move(0, 0, 0); err != nil {
		return protocol.Response{OK: false, Msg: fmt.Sprintf("stop: %v", err)}
	}
	return protocol.Response{OK: true, Msg: "stopped"}
}

func (d *Dispatcher) handleAction(params map[string]any) protocol.Response {
	name, _ := params["name"].(string)
	action, ok := protocol.LookupAction(name)
	if !ok {
		return protocol.Response{OK: false, Msg: fmt.Sprintf("unknown action: %s", name)}
	}
	code, err := d.robot.ExecuteAction(action)
	if err != nil {
		return protocol.Response{OK: false, Msg: fmt.Sprintf("%s failed: %v", name, err)}
	}
	return protocol.Response{OK: true, Msg: fmt.Sprintf("%s executed", name), Data: map[string]any{"code": code}}
}

func (d *Dispatcher) handleObstacleAvoidance(params map[string]any) protocol.Response {
	enabled := boolParam(params, "enabled", true)
	if err := d.robot.SetObstacleAvoidance(enabled); err != nil {
		return protocol.Response{OK: false, Msg: err.Error()}
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return protocol.Response{OK: true, Msg: "obstacle avoidance " + state}
}

func (d *Dispatcher) handleSpeedLevel(params map[string]any) protocol.Response {
	level := robot.ClampSpeedLevel(int(floatParam(params, "level", float64(robot.MinSpeedLevel))))
	if err := d.robot.SetSpeedLevel(level); err != nil {
		return protocol.Response{OK: false, Msg: err.Error()}
	}
	return protocol.Response{OK: true, Msg: fmt.Sprintf("speed level set to %d", level), Data: map[string]any{"level": level}}
}

func (d *Dispatcher) handleLight(params map[string]any) protocol.Response {
	on := boolParam(params, "on", true)
	code, err := d.robot.SetLight(on)
	if err != nil {
		return protocol.Response{OK: false, Msg: err.Error()}
	}
	state := "off"
	if on {
		state = "on"
	}
	return protocol.Response{OK: code == 0, Msg: "light " + state, Data: map[string]any{"code": code}}
}

// handleGetCameraFrame captures one frame and publishes it to a broadcast
// subject instead of inlining it: frames are large relative to command
// traffic. The response carries the subject and byte count.
func (d *Dispatcher) handleGetCameraFrame(req protocol.Request) protocol.Response {
	if d.frames == nil {
		return protocol.Response{OK: false, Msg: "frame delivery not available"}
	}

	subject, _ := req.Params["frame_subject"].(string)
	if subject == "" {
		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}
		subject = d.frameSubject + "." + id
	}

	frame, err := d.robot.CaptureFrame()
	if err != nil {
		return protocol.Response{OK: false, Msg: fmt.Sprintf("capture failed: %v", err)}
	}
	if len(frame) == 0 {
		return protocol.Response{OK: false, Msg: "capture returned no data"}
	}
	if err := d.frames.Publish(subject, frame); err != nil {
		return protocol.Response{OK: false, Msg: fmt.Sprintf("publish frame: %v", err)}
	}
	return protocol.Response{
		OK:  true,
		Msg: fmt.Sprintf("camera frame captured (%d bytes)", len(frame)),
		Data: map[string]any{
			"frame_subject": subject,
			"bytes":         len(frame),
		},
	}
}

// floatParam coerces a JSON param to float64, tolerating integer encodings.
func floatParam(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}

func boolParam(params map[string]any, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}
