// Package bridge implements the Go2 command relay core: the velocity
// watchdog, the command dispatcher, and the camera publisher, wired together
// over a NATS transport handle.
package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/teslashibe/go-go2/internal/metrics"
	"github.com/teslashibe/go-go2/pkg/robot"
)

// Watchdog owns the single source of truth for the current commanded
// velocity. It relays the velocity to the robot at a fixed rate and converts
// command silence longer than timeout into exactly one Move(0,0,0).
//
// A zero issuedAt timestamp means "no active command". An explicit
// SetVelocity(0,0,0) is an active command and keeps relaying until it times
// out; Stop() releases control immediately.
type Watchdog struct {
	robot   robot.Mover
	rate    time.Duration
	timeout time.Duration
	logger  zerolog.Logger
	metrics *metrics.Bridge

	mu       sync.Mutex
	vx       float64
	vy       float64
	vyaw     float64
	issuedAt time.Time

	now func() time.Time // swapped in tests
}

// NewWatchdog creates a Watchdog relaying at rate with the given silence
// timeout. Call Run to start the relay loop.
func NewWatchdog(mover robot.Mover, rate, timeout time.Duration, m *metrics.Bridge, logger zerolog.Logger) *Watchdog {
	return &Watchdog{
		robot:   mover,
		rate:    rate,
		timeout: timeout,
		logger:  logger.With().Str("component", "watchdog").Logger(),
		metrics: m,
		now:     time.Now,
	}
}

// SetVelocity records a new velocity command and stamps it as active.
// Magnitudes are not validated here; range policy belongs to the driver.
func (w *Watchdog) SetVelocity(vx, vy, vyaw float64) {
	w.mu.Lock()
	w.vx, w.vy, w.vyaw = vx, vy, vyaw
	w.issuedAt = w.now()
	w.mu.Unlock()
}

// Stop zeroes the velocity and marks it inactive, so the relay loop sends
// nothing further. The caller is expected to issue its own direct zero move;
// Stop only releases watchdog control.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	w.vx, w.vy, w.vyaw = 0, 0, 0
	w.issuedAt = time.Time{}
	w.mu.Unlock()
}

// Snapshot returns the current velocity triple and its issue timestamp.
// A zero timestamp means no command is active.
func (w *Watchdog) Snapshot() (vx, vy, vyaw float64, issuedAt time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.vx, w.vy, w.vyaw, w.issuedAt
}

// Run relays velocity until ctx is canceled.
func (w *Watchdog) Run(ctx context.Context) {
	w.logger.Info().
		Dur("period", w.rate).
		Dur("timeout", w.timeout).
		Msg("watchdog started")

	ticker := time.NewTicker(w.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("watchdog stopped")
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

// tick performs one relay cycle: snapshot under the lock, decide, then call
// the robot with the lock released. The triple and its timestamp are read in
// one critical section; a torn read would pair a velocity with a stale stamp.
func (w *Watchdog) tick() {
	w.mu.Lock()
	vx, vy, vyaw := w.vx, w.vy, w.vyaw
	issuedAt := w.issuedAt
	w.mu.Unlock()

	if issuedAt.IsZero() {
		// No active command: nothing ever issued, or a stop already handled.
		return
	}

	if w.now().Sub(issuedAt) > w.timeout {
		// Silence episode: one safety stop, then mark inactive so repeated
		// ticks are no-ops rather than a zero-command storm.
		w.logger.Warn().Msg("command silence, zeroing velocity")
		if err := w.robot.Move(0, 0, 0); err != nil {
			w.logger.Error().Err(err).Msg("safety stop failed")
		}
		w.mu.Lock()
		// Only clear if no new command arrived while the zero was in flight.
		if w.issuedAt.Equal(issuedAt) {
			w.vx, w.vy, w.vyaw = 0, 0, 0
			w.issuedAt = time.Time{}
		}
		w.mu.Unlock()
		w.metrics.WatchdogTimeout()
		return
	}

	// Active command: refresh the robot's onboard timeout every tick, even
	// when the velocity is unchanged.
	if err := w.robot.Move(vx, vy, vyaw); err != nil {
		// A failed tick must not stop the loop.
		w.logger.Error().Err(err).Msg("move relay failed")
		return
	}
	w.metrics.RelayTick()
}
