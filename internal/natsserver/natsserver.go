// Package natsserver runs the embedded NATS broker used when the bridge
// serves its own transport, and by tests that need an in-process broker.
package natsserver

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Config holds settings for the embedded NATS server.
type Config struct {
	// Host/Port for the client listener. An empty Host disables the TCP
	// listener entirely; connections then go through Connect's in-process
	// pipe. Port -1 picks a random port.
	Host string
	Port int
}

// Server wraps an embedded NATS server.
type Server struct {
	ns         *server.Server
	dontListen bool
	logger     zerolog.Logger
}

// New creates and starts the embedded server, waiting until it accepts
// connections.
func New(cfg Config, logger zerolog.Logger) (*Server, error) {
	opts := &server.Options{
		DontListen: cfg.Host == "",
		Host:       cfg.Host,
		Port:       cfg.Port,
		NoLog:      true,
		NoSigs:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("nats server create: %w", err)
	}
	ns.SetLoggerV2(newZerologAdapter(logger), false, false, false)

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		return nil, fmt.Errorf("nats server failed to become ready")
	}

	logger.Info().Str("client_url", ns.ClientURL()).Msg("embedded NATS started")
	return &Server{ns: ns, dontListen: opts.DontListen, logger: logger}, nil
}

// Connect returns a client connection to this server. When the server has no
// TCP listener the connection uses the in-process pipe.
func (s *Server) Connect(opts ...nats.Option) (*nats.Conn, error) {
	if s.dontListen {
		opts = append(opts, nats.InProcessServer(s.ns))
	}
	return nats.Connect(s.ns.ClientURL(), opts...)
}

// ClientURL returns the NATS client connection URL.
func (s *Server) ClientURL() string { return s.ns.ClientURL() }

// Shutdown stops the server and waits for it to exit.
func (s *Server) Shutdown() {
	s.logger.Info().Msg("shutting down embedded NATS")
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
}
