// Package client is the Go client for the bridge command channel, used by
// go2ctl and embeddable in higher-level controllers.
package client

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/teslashibe/go-go2/pkg/protocol"
)

// DefaultTimeout bounds one command round trip.
const DefaultTimeout = 5 * time.Second

// Client talks to a bridge over NATS.
type Client struct {
	nc            *nats.Conn
	cmdSubject    string
	cameraSubject string
	timeout       time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the command round-trip timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSubjects overrides the command and camera subjects.
func WithSubjects(cmd, camera string) Option {
	return func(c *Client) { c.cmdSubject, c.cameraSubject = cmd, camera }
}

// New wraps an established NATS connection.
func New(nc *nats.Conn, opts ...Option) *Client {
	c := &Client{
		nc:            nc,
		cmdSubject:    protocol.SubjectCommand,
		cameraSubject: protocol.SubjectCamera,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to the broker at url and returns a Client over it.
func Dial(url string, opts ...Option) (*Client, error) {
	nc, err := nats.Connect(url, nats.Name("go2-client"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}
	return New(nc, opts...), nil
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.nc.Close()
}

// Send issues one command and returns the decoded response.
func (c *Client) Send(cmd string, params map[string]any) (protocol.Response, error) {
	raw, err := protocol.EncodeRequest(cmd, params)
	if err != nil {
		return protocol.Response{}, err
	}
	msg, err := c.nc.Request(c.cmdSubject, raw, c.timeout)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("request %s: %w", cmd, err)
	}
	return protocol.DecodeResponse(msg.Data)
}

// Move sets the commanded velocity.
func (c *Client) Move(vx, vy, vyaw float64) (protocol.Response, error) {
	return c.Send(protocol.CmdMove, map[string]any{"vx": vx, "vy": vy, "vyaw": vyaw})
}

// Stop releases velocity control and halts the robot.
func (c *Client) Stop() (protocol.Response, error) {
	return c.Send(protocol.CmdStop, nil)
}

// Action triggers a named action.
func (c *Client) Action(name string) (protocol.Response, error) {
	return c.Send(protocol.CmdAction, map[string]any{"name": name})
}

// Status reads the robot status snapshot.
func (c *Client) Status() (protocol.Response, error) {
	return c.Send(protocol.CmdStatus, nil)
}

// ListActions returns the action vocabulary.
func (c *Client) ListActions() (protocol.Response, error) {
	return c.Send(protocol.CmdListActions, nil)
}

// SetLight switches the head light.
func (c *Client) SetLight(on bool) (protocol.Response, error) {
	return c.Send(protocol.CmdLight, map[string]any{"on": on})
}

// SetSpeedLevel applies a speed level; the bridge clamps out-of-range values.
func (c *Client) SetSpeedLevel(level int) (protocol.Response, error) {
	return c.Send(protocol.CmdSpeedLevel, map[string]any{"level": level})
}

// SetObstacleAvoidance toggles obstacle avoidance.
func (c *Client) SetObstacleAvoidance(enabled bool) (protocol.Response, error) {
	return c.Send(protocol.CmdObstacleAvoidance, map[string]any{"enabled": enabled})
}

// CaptureFrame asks the bridge for one camera frame. The frame arrives
// out-of-band on a per-request subject; CaptureFrame subscribes first, then
// sends the command, and waits up to timeout for the frame bytes.
func (c *Client) CaptureFrame(timeout time.Duration) ([]byte, error) {
	subject := protocol.FrameSubject(uuid.NewString())

	sub, err := c.nc.SubscribeSync(subject)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()
	if err := c.nc.Flush(); err != nil {
		return nil, err
	}

	resp, err := c.Send(protocol.CmdGetCameraFrame, map[string]any{"frame_subject": subject})
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("capture rejected: %s", resp.Msg)
	}

	msg, err := sub.NextMsg(timeout)
	if err != nil {
		return nil, fmt.Errorf("waiting for frame: %w", err)
	}
	return msg.Data, nil
}

// WatchFrames subscribes to the continuous camera stream and calls fn for
// every frame until the returned unsubscribe func is called.
func (c *Client) WatchFrames(fn func(frame []byte)) (func(), error) {
	sub, err := c.nc.Subscribe(c.cameraSubject, func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", c.cameraSubject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
