package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-go2/internal/config"
	"github.com/teslashibe/go-go2/internal/natsserver"
	"github.com/teslashibe/go-go2/pkg/protocol"
	"github.com/teslashibe/go-go2/pkg/robot"
)

// startBridge runs a full bridge over an in-process broker and returns a
// client connection.
func startBridge(t *testing.T, sim *robot.Sim) *nats.Conn {
	t.Helper()

	srv, err := natsserver.New(natsserver.Config{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)

	bridgeConn, err := srv.Connect()
	require.NoError(t, err)
	t.Cleanup(bridgeConn.Close)

	cfg := config.Default().Bridge
	cfg.MoveHz = 100 // fast ticks keep the test short
	b := New(sim, bridgeConn, cfg, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = b.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("bridge did not stop")
		}
	})

	clientConn, err := srv.Connect()
	require.NoError(t, err)
	t.Cleanup(clientConn.Close)
	return clientConn
}

func request(t *testing.T, nc *nats.Conn, cmd string, params map[string]any) protocol.Response {
	t.Helper()
	raw, err := protocol.EncodeRequest(cmd, params)
	require.NoError(t, err)
	msg, err := nc.Request(protocol.SubjectCommand, raw, 2*time.Second)
	require.NoError(t, err)
	resp, err := protocol.DecodeResponse(msg.Data)
	require.NoError(t, err)
	return resp
}

func TestBridge_CommandRoundTrip(t *testing.T) {
	sim := robot.NewSim()
	nc := startBridge(t, sim)

	resp := request(t, nc, "status", nil)
	require.True(t, resp.OK, resp.Msg)
	require.Equal(t, true, resp.Data["obstacle_avoidance"])

	resp = request(t, nc, "move", map[string]any{"vx": 0.3})
	require.True(t, resp.OK, resp.Msg)

	// The watchdog relays the velocity on its own timer.
	require.Eventually(t, func() bool {
		vx, _, _, moves := sim.Velocity()
		return moves > 0 && vx == 0.3
	}, time.Second, 5*time.Millisecond, "velocity never relayed")

	resp = request(t, nc, "stop", nil)
	require.True(t, resp.OK, resp.Msg)
	require.Eventually(t, func() bool {
		vx, vy, vyaw, _ := sim.Velocity()
		return vx == 0 && vy == 0 && vyaw == 0
	}, time.Second, 5*time.Millisecond, "stop never reached the robot")
}

func TestBridge_UnknownCommandOverWire(t *testing.T) {
	nc := startBridge(t, robot.NewSim())

	resp := request(t, nc, "frobnicate", nil)
	require.False(t, resp.OK)
	require.Equal(t, "unknown command: frobnicate", resp.Msg)
}

func TestBridge_CameraFrameOutOfBand(t *testing.T) {
	nc := startBridge(t, robot.NewSim())

	frameCh := make(chan []byte, 1)
	sub, err := nc.Subscribe("go2.camera.test", func(m *nats.Msg) {
		select {
		case frameCh <- m.Data:
		default:
		}
	})
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()
	require.NoError(t, nc.Flush())

	resp := request(t, nc, "get_camera_frame", map[string]any{"frame_subject": "go2.camera.test"})
	require.True(t, resp.OK, resp.Msg)

	select {
	case frame := <-frameCh:
		require.Equal(t, float64(len(frame)), resp.Data["bytes"])
	case <-time.After(2 * time.Second):
		t.Fatal("frame never arrived on the broadcast subject")
	}
}

func TestBridge_PublisherStreamsFrames(t *testing.T) {
	nc := startBridge(t, robot.NewSim())

	frames := make(chan []byte, 16)
	sub, err := nc.Subscribe(protocol.SubjectCamera, func(m *nats.Msg) {
		select {
		case frames <- m.Data:
		default:
		}
	})
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()
	require.NoError(t, nc.Flush())

	// Default capture rate is 10 FPS; two frames should arrive well within
	// a second of each other.
	for i := 0; i < 2; i++ {
		select {
		case <-frames:
		case <-time.After(2 * time.Second):
			t.Fatalf("frame %d never arrived", i)
		}
	}
}

func TestBridge_FinalZeroOnShutdown(t *testing.T) {
	sim := robot.NewSim()

	srv, err := natsserver.New(natsserver.Config{}, zerolog.Nop())
	require.NoError(t, err)
	defer srv.Shutdown()

	bridgeConn, err := srv.Connect()
	require.NoError(t, err)
	defer bridgeConn.Close()

	b := New(sim, bridgeConn, config.Default().Bridge, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = b.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not stop")
	}

	vx, vy, vyaw, moves := sim.Velocity()
	require.GreaterOrEqual(t, moves, 1, "shutdown must send a final zero")
	require.Zero(t, vx)
	require.Zero(t, vy)
	require.Zero(t, vyaw)
}
