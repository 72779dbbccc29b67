package protocol

import (
	"reflect"
	"testing"

	"github.com/teslashibe/go-go2/pkg/robot"
)

func TestLookupAction(t *testing.T) {
	a, ok := LookupAction("stand_up")
	if !ok {
		t.Fatal("LookupAction(stand_up) not found")
	}
	if a != robot.ActionStandUp {
		t.Errorf("stand_up = %v, want %v", a, robot.ActionStandUp)
	}

	if _, ok := LookupAction("moonwalk"); ok {
		t.Error("LookupAction(moonwalk) should not be found")
	}
}

func TestActionNames_Stable(t *testing.T) {
	first := ActionNames()
	if len(first) != len(actionRegistry) {
		t.Fatalf("ActionNames() returned %d names, registry has %d", len(first), len(actionRegistry))
	}
	// Repeated calls within a process must return the same sequence.
	for i := 0; i < 5; i++ {
		if got := ActionNames(); !reflect.DeepEqual(got, first) {
			t.Fatalf("ActionNames() call %d = %v, want %v", i, got, first)
		}
	}
}
