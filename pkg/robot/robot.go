// Package robot defines the capability boundary to the Go2 robot driver.
//
// The bridge core never talks to the robot SDK directly. It consumes the
// Robot interface; the physical DDS-backed driver lives behind it and is out
// of scope here. The package also ships a Sim implementation for development
// and tests.
package robot

// Speed level bounds accepted by the sport client.
const (
	MinSpeedLevel = 1
	MaxSpeedLevel = 3
)

// ClampSpeedLevel restricts level to [MinSpeedLevel, MaxSpeedLevel].
// Bridge policy is clamp, not reject.
func ClampSpeedLevel(level int) int {
	if level < MinSpeedLevel {
		return MinSpeedLevel
	}
	if level > MaxSpeedLevel {
		return MaxSpeedLevel
	}
	return level
}

// Action is the closed set of sport-client operations the bridge can trigger.
// The public action vocabulary (pkg/protocol) maps onto these at init time,
// so a bad mapping is a build-time bug, not a per-request surprise.
type Action int

const (
	ActionStandUp Action = iota
	ActionStandDown
	ActionBalanceStand
	ActionRecoveryStand
	ActionSit
	ActionHello
	ActionStretch
	ActionDance1
	ActionDance2
	ActionHeart
	ActionFrontFlip
	ActionFrontJump
	ActionBackFlip
	ActionLeftFlip
	ActionHandStand
	ActionDamp
	ActionStopMove
)

// String returns the sport-client method name for the action.
func (a Action) String() string {
	switch a {
	case ActionStandUp:
		return "StandUp"
	case ActionStandDown:
		return "StandDown"
	case ActionBalanceStand:
		return "BalanceStand"
	case ActionRecoveryStand:
		return "RecoveryStand"
	case ActionSit:
		return "Sit"
	case ActionHello:
		return "Hello"
	case ActionStretch:
		return "Stretch"
	case ActionDance1:
		return "Dance1"
	case ActionDance2:
		return "Dance2"
	case ActionHeart:
		return "Heart"
	case ActionFrontFlip:
		return "FrontFlip"
	case ActionFrontJump:
		return "FrontJump"
	case ActionBackFlip:
		return "BackFlip"
	case ActionLeftFlip:
		return "LeftFlip"
	case ActionHandStand:
		return "HandStand"
	case ActionDamp:
		return "Damp"
	case ActionStopMove:
		return "StopMove"
	}
	return "Unknown"
}

// Status is the bridge-visible robot state snapshot.
type Status struct {
	ObstacleAvoidance bool `json:"obstacle_avoidance"`
	SpeedLevel        int  `json:"speed_level"`
	LightOn           bool `json:"light_on"`
}

// Mover is the minimal interface needed by the velocity watchdog.
type Mover interface {
	// Move sends one velocity command. The robot's onboard command has its
	// own short timeout, so Move must be refreshed continuously while a
	// command is active.
	Move(vx, vy, vyaw float64) error
}

// FrameCapturer is the minimal interface needed by the camera publisher.
type FrameCapturer interface {
	// CaptureFrame returns one encoded (JPEG) camera frame.
	CaptureFrame() ([]byte, error)
}

// Robot is the full capability interface consumed by the command dispatcher.
type Robot interface {
	Mover
	FrameCapturer

	// ExecuteAction triggers a sport-client action and returns the SDK code.
	ExecuteAction(a Action) (int, error)

	// SetLight switches the head light fully on or off. Returns the SDK code.
	SetLight(on bool) (int, error)

	SetObstacleAvoidance(enabled bool) error

	// SetSpeedLevel applies a sport speed level. Implementations clamp to
	// [MinSpeedLevel, MaxSpeedLevel].
	SetSpeedLevel(level int) error

	Status() Status
}
