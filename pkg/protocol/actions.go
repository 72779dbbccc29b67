package protocol

import (
	"sort"

	"github.com/teslashibe/go-go2/pkg/robot"
)

// actionRegistry maps the stable public action vocabulary onto the closed set
// of sport-client operations. Built once; callers never see SDK method names.
var actionRegistry = map[string]robot.Action{
	"stand_up":       robot.ActionStandUp,
	"stand_down":     robot.ActionStandDown,
	"balance_stand":  robot.ActionBalanceStand,
	"recovery_stand": robot.ActionRecoveryStand,
	"sit":            robot.ActionSit,
	"hello":          robot.ActionHello,
	"stretch":        robot.ActionStretch,
	"dance1":         robot.ActionDance1,
	"dance2":         robot.ActionDance2,
	"heart":          robot.ActionHeart,
	"front_flip":     robot.ActionFrontFlip,
	"front_jump":     robot.ActionFrontJump,
	"back_flip":      robot.ActionBackFlip,
	"left_flip":      robot.ActionLeftFlip,
	"hand_stand":     robot.ActionHandStand,
	"damp":           robot.ActionDamp,
	"stop_move":      robot.ActionStopMove,
}

// LookupAction resolves a public action name.
func LookupAction(name string) (robot.Action, bool) {
	a, ok := actionRegistry[name]
	return a, ok
}

// ActionNames returns the registered action names, sorted so repeated calls
// return the same sequence.
func ActionNames() []string {
	names := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
