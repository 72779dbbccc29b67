package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/teslashibe/go-go2/internal/config"
	"github.com/teslashibe/go-go2/internal/metrics"
	"github.com/teslashibe/go-go2/pkg/robot"
)

// Bridge wires the watchdog, dispatcher and camera publisher to one robot
// and one NATS connection. The connection is constructed by the caller and
// passed in; the bridge owns no hidden transport state.
type Bridge struct {
	robot      robot.Robot
	nc         *nats.Conn
	cfg        config.BridgeConfig
	logger     zerolog.Logger
	watchdog   *Watchdog
	dispatcher *Dispatcher
	publisher  *Publisher
}

// New creates a Bridge from an established NATS connection.
func New(r robot.Robot, nc *nats.Conn, cfg config.BridgeConfig, m *metrics.Bridge, logger zerolog.Logger) *Bridge {
	rate := time.Second / time.Duration(cfg.MoveHz)
	timeout := time.Duration(cfg.MoveTimeoutMs) * time.Millisecond
	capturePeriod := time.Second / time.Duration(cfg.CameraFPS)

	w := NewWatchdog(r, rate, timeout, m, logger)
	return &Bridge{
		robot:      r,
		nc:         nc,
		cfg:        cfg,
		logger:     logger.With().Str("component", "bridge").Logger(),
		watchdog:   w,
		dispatcher: NewDispatcher(r, w, nc, cfg.CameraSubject, m, logger),
		publisher:  NewPublisher(r, nc, cfg.CameraSubject, capturePeriod, m, logger),
	}
}

// Watchdog exposes the velocity watchdog, mainly for tests and diagnostics.
func (b *Bridge) Watchdog() *Watchdog { return b.watchdog }

// Run starts the three loops and blocks until ctx is canceled. On shutdown
// the command subscription is drained first so no request is left without a
// reply, then a final best-effort zero move releases the robot.
func (b *Bridge) Run(ctx context.Context) error {
	sub, err := b.dispatcher.Subscribe(b.nc, b.cfg.CmdSubject)
	if err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.watchdog.Run(loopCtx)
	}()
	go func() {
		defer wg.Done()
		b.publisher.Run(loopCtx)
	}()

	b.logger.Info().
		Str("cmd_subject", b.cfg.CmdSubject).
		Str("camera_subject", b.cfg.CameraSubject).
		Msg("bridge running")

	<-ctx.Done()
	b.logger.Info().Msg("shutting down")

	if err := sub.Drain(); err != nil {
		b.logger.Warn().Err(err).Msg("drain command subscription")
	}
	cancel()
	wg.Wait()

	if err := b.robot.Move(0, 0, 0); err != nil {
		b.logger.Warn().Err(err).Msg("final zero move failed")
	}
	b.logger.Info().Msg("bridge stopped")
	return nil
}
