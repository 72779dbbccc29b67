package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/teslashibe/go-go2/pkg/protocol"
)

// handleCommand proxies an arbitrary command body to the bridge and returns
// the bridge's response verbatim.
func (s *Server) handleCommand(c *fiber.Ctx) error {
	req, err := protocol.DecodeRequest(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(protocol.Response{
			OK: false, Msg: "invalid request",
		})
	}
	if req.Cmd == "" {
		return c.Status(fiber.StatusBadRequest).JSON(protocol.Response{
			OK: false, Msg: "missing cmd",
		})
	}
	return s.proxy(c, c.Body())
}

// handleStatus is a convenience read for dashboards.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	raw, err := protocol.EncodeRequest(protocol.CmdStatus, nil)
	if err != nil {
		return err
	}
	return s.proxy(c, raw)
}

// handleActions lists the bridge's action vocabulary.
func (s *Server) handleActions(c *fiber.Ctx) error {
	raw, err := protocol.EncodeRequest(protocol.CmdListActions, nil)
	if err != nil {
		return err
	}
	return s.proxy(c, raw)
}

func (s *Server) proxy(c *fiber.Ctx, raw []byte) error {
	msg, err := s.nc.Request(s.cmdSubject, raw, requestTimeout)
	if err != nil {
		status := fiber.StatusBadGateway
		if errors.Is(err, nats.ErrTimeout) || errors.Is(err, nats.ErrNoResponders) {
			status = fiber.StatusGatewayTimeout
		}
		s.logger.Warn().Err(err).Msg("bridge request failed")
		return c.Status(status).JSON(protocol.Response{
			OK: false, Msg: "bridge unavailable: " + err.Error(),
		})
	}

	c.Set("Content-Type", "application/json")
	return c.Send(msg.Data)
}
