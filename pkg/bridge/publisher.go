package bridge

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/teslashibe/go-go2/internal/metrics"
	"github.com/teslashibe/go-go2/pkg/robot"
)

// Publisher polls the camera at a fixed rate and publishes each frame on the
// broadcast subject, fire-and-forget. Frames with no subscribers are
// discarded by the broker; a failed capture skips the tick.
type Publisher struct {
	camera  robot.FrameCapturer
	frames  FramePublisher
	subject string
	rate    time.Duration
	logger  zerolog.Logger
	metrics *metrics.Bridge
}

// NewPublisher creates a Publisher capturing at rate.
func NewPublisher(camera robot.FrameCapturer, frames FramePublisher, subject string, rate time.Duration, m *metrics.Bridge, logger zerolog.Logger) *Publisher {
	return &Publisher{
		camera:  camera,
		frames:  frames,
		subject: subject,
		rate:    rate,
		logger:  logger.With().Str("component", "camera").Logger(),
		metrics: m,
	}
}

// Run publishes frames until ctx is canceled.
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info().
		Str("subject", p.subject).
		Dur("period", p.rate).
		Msg("camera publisher started")

	ticker := time.NewTicker(p.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("camera publisher stopped")
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Publisher) tick() {
	frame, err := p.camera.CaptureFrame()
	if err != nil {
		// Skip the tick; no retry storm.
		p.logger.Debug().Err(err).Msg("frame capture failed")
		return
	}
	if len(frame) == 0 {
		return
	}

	if err := p.frames.Publish(p.subject, frame); err != nil {
		p.logger.Warn().Err(err).Msg("frame publish failed")
		return
	}
	p.metrics.FramePublished(len(frame))
}
