package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-go2/internal/natsserver"
	"github.com/teslashibe/go-go2/pkg/bridge"
	"github.com/teslashibe/go-go2/pkg/protocol"
	"github.com/teslashibe/go-go2/pkg/robot"
)

// newGateway stands up an in-process broker, a dispatcher answering the
// command subject, and the gateway under test.
func newGateway(t *testing.T) (*Server, *robot.Sim) {
	t.Helper()

	srv, err := natsserver.New(natsserver.Config{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)

	bridgeConn, err := srv.Connect()
	require.NoError(t, err)
	t.Cleanup(bridgeConn.Close)

	sim := robot.NewSim()
	w := bridge.NewWatchdog(sim, 50*time.Millisecond, 250*time.Millisecond, nil, zerolog.Nop())
	d := bridge.NewDispatcher(sim, w, bridgeConn, protocol.SubjectCamera, nil, zerolog.Nop())
	sub, err := d.Subscribe(bridgeConn, protocol.SubjectCommand)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })

	gwConn, err := srv.Connect()
	require.NoError(t, err)
	t.Cleanup(gwConn.Close)

	return NewServer(gwConn, protocol.SubjectCommand, protocol.SubjectCamera, zerolog.Nop()), sim
}

func postCommand(t *testing.T, s *Server, body string) (int, protocol.Response) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/command", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, 10_000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed protocol.Response
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestGateway_CommandProxy(t *testing.T) {
	s, sim := newGateway(t)

	status, resp := postCommand(t, s, `{"cmd":"light","params":{"on":true}}`)
	require.Equal(t, 200, status)
	require.True(t, resp.OK, resp.Msg)
	require.True(t, sim.Status().LightOn)
}

func TestGateway_CommandProxy_BadBody(t *testing.T) {
	s, _ := newGateway(t)

	status, resp := postCommand(t, s, `{nope`)
	require.Equal(t, 400, status)
	require.False(t, resp.OK)
}

func TestGateway_CommandProxy_MissingCmd(t *testing.T) {
	s, _ := newGateway(t)

	status, resp := postCommand(t, s, `{"params":{"on":true}}`)
	require.Equal(t, 400, status)
	require.False(t, resp.OK)
}

func TestGateway_StatusEndpoint(t *testing.T) {
	s, _ := newGateway(t)

	req := httptest.NewRequest("GET", "/api/status", nil)
	resp, err := s.app.Test(req, 10_000)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed protocol.Response
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.True(t, parsed.OK)
	require.Equal(t, float64(1), parsed.Data["speed_level"])
}

func TestGateway_ActionsEndpoint(t *testing.T) {
	s, _ := newGateway(t)

	req := httptest.NewRequest("GET", "/api/actions", nil)
	resp, err := s.app.Test(req, 10_000)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed protocol.Response
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.True(t, parsed.OK)
	require.NotEmpty(t, parsed.Data["actions"])
}

func TestGateway_BridgeDown(t *testing.T) {
	srv, err := natsserver.New(natsserver.Config{}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)

	// No dispatcher behind the subject: the proxy reports the bridge as
	// unavailable instead of hanging.
	gwConn, err := srv.Connect()
	require.NoError(t, err)
	t.Cleanup(gwConn.Close)

	s := NewServer(gwConn, protocol.SubjectCommand, protocol.SubjectCamera, zerolog.Nop())
	status, resp := postCommand(t, s, `{"cmd":"status"}`)
	require.GreaterOrEqual(t, status, 500)
	require.False(t, resp.OK)
}
