package robot

import (
	"encoding/binary"
	"sync"
)

// Sim is an in-memory Robot used for development and tests. It records the
// last commanded velocity and every capability call, applies the same speed
// clamp as the real driver, and produces small synthetic JPEG frames.
type Sim struct {
	mu sync.Mutex

	vx, vy, vyaw float64
	moveCount    int
	frameCount   uint64

	obstacleAvoidance bool
	speedLevel        int
	lightOn           bool

	actions []Action
}

// NewSim returns a Sim with obstacle avoidance on and speed level 1,
// matching the real bridge's startup defaults.
func NewSim() *Sim {
	return &Sim{
		obstacleAvoidance: true,
		speedLevel:        MinSpeedLevel,
	}
}

func (s *Sim) Move(vx, vy, vyaw float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vx, s.vy, s.vyaw = vx, vy, vyaw
	s.moveCount++
	return nil
}

func (s *Sim) ExecuteAction(a Action) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, a)
	return 0, nil
}

func (s *Sim) SetLight(on bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lightOn = on
	return 0, nil
}

func (s *Sim) SetObstacleAvoidance(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obstacleAvoidance = enabled
	return nil
}

func (s *Sim) SetSpeedLevel(level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speedLevel = ClampSpeedLevel(level)
	return nil
}

// CaptureFrame returns a minimal JPEG-framed payload carrying the frame
// counter, enough for subscribers to distinguish frames.
func (s *Sim) CaptureFrame() ([]byte, error) {
	s.mu.Lock()
	s.frameCount++
	n := s.frameCount
	s.mu.Unlock()

	frame := make([]byte, 0, 16)
	frame = append(frame, 0xFF, 0xD8) // SOI
	frame = binary.BigEndian.AppendUint64(frame, n)
	frame = append(frame, 0xFF, 0xD9) // EOI
	return frame, nil
}

func (s *Sim) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ObstacleAvoidance: s.obstacleAvoidance,
		SpeedLevel:        s.speedLevel,
		LightOn:           s.lightOn,
	}
}

// Velocity returns the last commanded velocity and the total number of Move
// calls. Test helper.
func (s *Sim) Velocity() (vx, vy, vyaw float64, moves int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vx, s.vy, s.vyaw, s.moveCount
}

// Actions returns the recorded action sequence. Test helper.
func (s *Sim) Actions() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Action, len(s.actions))
	copy(out, s.actions)
	return out
}

var _ Robot = (*Sim)(nil)
