// Package metrics exposes Prometheus instrumentation for the bridge loops.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Bridge holds the collectors recorded by the watchdog, dispatcher and
// camera publisher. A nil *Bridge is valid and records nothing, so the
// loops don't need metric plumbing in tests.
type Bridge struct {
	relayTicks       prometheus.Counter
	watchdogTimeouts prometheus.Counter
	commands         *prometheus.CounterVec
	commandErrors    prometheus.Counter
	framesPublished  prometheus.Counter
	frameBytes       prometheus.Counter
}

// New registers the bridge collectors on reg. If reg is nil the default
// registerer is used; already-registered collectors are reused.
func New(reg prometheus.Registerer) (*Bridge, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	b := &Bridge{
		relayTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "go2_relay_ticks_total",
			Help: "Velocity relay ticks that sent a move command",
		}),
		watchdogTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "go2_watchdog_timeouts_total",
			Help: "Silence episodes converted into a safety stop",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "go2_commands_total",
			Help: "Dispatched commands by name",
		}, []string{"cmd"}),
		commandErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "go2_command_errors_total",
			Help: "Commands answered with ok=false",
		}),
		framesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "go2_frames_published_total",
			Help: "Camera frames published on the broadcast subject",
		}),
		frameBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "go2_frame_bytes_total",
			Help: "Camera frame bytes published",
		}),
	}

	collectors := []prometheus.Collector{
		b.relayTicks, b.watchdogTimeouts, b.commands,
		b.commandErrors, b.framesPublished, b.frameBytes,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch i {
				case 0:
					b.relayTicks = are.ExistingCollector.(prometheus.Counter)
				case 1:
					b.watchdogTimeouts = are.ExistingCollector.(prometheus.Counter)
				case 2:
					b.commands = are.ExistingCollector.(*prometheus.CounterVec)
				case 3:
					b.commandErrors = are.ExistingCollector.(prometheus.Counter)
				case 4:
					b.framesPublished = are.ExistingCollector.(prometheus.Counter)
				case 5:
					b.frameBytes = are.ExistingCollector.(prometheus.Counter)
				}
				continue
			}
			return nil, err
		}
	}
	return b, nil
}

// RelayTick records one velocity relay send.
func (b *Bridge) RelayTick() {
	if b != nil {
		b.relayTicks.Inc()
	}
}

// WatchdogTimeout records one silence-triggered safety stop.
func (b *Bridge) WatchdogTimeout() {
	if b != nil {
		b.watchdogTimeouts.Inc()
	}
}

// Command records one dispatched command and its outcome.
func (b *Bridge) Command(cmd string, ok bool) {
	if b == nil {
		return
	}
	b.commands.WithLabelValues(cmd).Inc()
	if !ok {
		b.commandErrors.Inc()
	}
}

// FramePublished records one published camera frame.
func (b *Bridge) FramePublished(bytes int) {
	if b == nil {
		return
	}
	b.framesPublished.Inc()
	b.frameBytes.Add(float64(bytes))
}
