// Package web provides the browser-facing gateway to the Go2 bridge: an HTTP
// command proxy plus a websocket camera stream relayed from the broadcast
// subject.
package web

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/teslashibe/go-go2/pkg/hub"
)

// requestTimeout bounds how long a proxied command may wait on the bridge.
const requestTimeout = 5 * time.Second

// Server is the web gateway.
type Server struct {
	app           *fiber.App
	nc            *nats.Conn
	cmdSubject    string
	cameraSubject string
	cameraHub     *hub.Hub
	cameraSub     *nats.Subscription
	logger        zerolog.Logger
}

// NewServer creates a gateway talking to the bridge over nc.
func NewServer(nc *nats.Conn, cmdSubject, cameraSubject string, logger zerolog.Logger) *Server {
	s := &Server{
		nc:            nc,
		cmdSubject:    cmdSubject,
		cameraSubject: cameraSubject,
		cameraHub:     hub.New("camera", logger),
		logger:        logger.With().Str("component", "web").Logger(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Go2 Web Controller",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Post("/command", s.handleCommand)
	api.Get("/status", s.handleStatus)
	api.Get("/actions", s.handleActions)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Listen subscribes the camera relay and serves HTTP on addr. Blocks until
// Shutdown.
func (s *Server) Listen(addr string) error {
	go s.cameraHub.Run()

	sub, err := s.nc.Subscribe(s.cameraSubject, func(msg *nats.Msg) {
		s.cameraHub.BroadcastBinary(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.cameraSubject, err)
	}
	s.cameraSub = sub

	s.logger.Info().Str("addr", addr).Msg("web gateway listening")
	return s.app.Listen(addr)
}

// Shutdown stops the HTTP server, the camera relay and the hub.
func (s *Server) Shutdown() error {
	if s.cameraSub != nil {
		if err := s.cameraSub.Unsubscribe(); err != nil {
			s.logger.Warn().Err(err).Msg("unsubscribe camera relay")
		}
	}
	s.cameraHub.Stop()
	return s.app.Shutdown()
}

// handleCameraWS attaches one browser to the camera hub.
func (s *Server) handleCameraWS(c *websocket.Conn) {
	client := hub.NewClient(s.cameraHub, c)
	client.Run()
}
