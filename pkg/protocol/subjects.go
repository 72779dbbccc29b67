package protocol

// NATS subjects used by the bridge.
const (
	// SubjectCommand is the request/reply subject for bridge commands.
	SubjectCommand = "go2.cmd"

	// SubjectCamera is the fire-and-forget subject for camera frames.
	SubjectCamera = "go2.camera"
)

// FrameSubject returns the default per-request subject for an out-of-band
// camera frame.
func FrameSubject(requestID string) string {
	return SubjectCamera + "." + requestID
}

// Command names accepted on SubjectCommand.
const (
	CmdMove              = "move"
	CmdStop              = "stop"
	CmdAction            = "action"
	CmdObstacleAvoidance = "obstacle_avoidance"
	CmdSpeedLevel        = "speed_level"
	CmdLight             = "light"
	CmdListActions       = "list_actions"
	CmdStatus            = "status"
	CmdGetCameraFrame    = "get_camera_frame"
)
