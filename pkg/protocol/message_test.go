package protocol

import (
	"reflect"
	"testing"
)

func TestRequestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		cmd    string
		params map[string]any
	}{
		{name: "no params", cmd: "status", params: nil},
		{name: "move", cmd: "move", params: map[string]any{"vx": 0.3, "vy": 0.0, "vyaw": -0.5}},
		{name: "action", cmd: "action", params: map[string]any{"name": "stand_up"}},
		{name: "bool param", cmd: "light", params: map[string]any{"on": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := EncodeRequest(tt.cmd, tt.params)
			if err != nil {
				t.Fatalf("EncodeRequest() error = %v", err)
			}

			req, err := DecodeRequest(raw)
			if err != nil {
				t.Fatalf("DecodeRequest() error = %v", err)
			}
			if req.Cmd != tt.cmd {
				t.Errorf("Cmd = %q, want %q", req.Cmd, tt.cmd)
			}
			if tt.params == nil {
				if len(req.Params) != 0 {
					t.Errorf("Params = %v, want empty", req.Params)
				}
			} else if !reflect.DeepEqual(req.Params, tt.params) {
				t.Errorf("Params = %v, want %v", req.Params, tt.params)
			}
		})
	}
}

func TestDecodeRequest_Malformed(t *testing.T) {
	inputs := [][]byte{
		[]byte(`{not json`),
		[]byte(`"just a string"`),
		[]byte(``),
		[]byte(`[1,2,3]`),
	}
	for _, raw := range inputs {
		if _, err := DecodeRequest(raw); err == nil {
			t.Errorf("DecodeRequest(%q) expected error, got nil", raw)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	raw, err := EncodeResponse(true, "ok", map[string]any{"speed_level": float64(2)})
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	resp, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if !resp.OK {
		t.Error("OK = false, want true")
	}
	if resp.Msg != "ok" {
		t.Errorf("Msg = %q, want %q", resp.Msg, "ok")
	}
	if resp.Data["speed_level"] != float64(2) {
		t.Errorf("Data[speed_level] = %v, want 2", resp.Data["speed_level"])
	}
}

func TestResponse_EchoesID(t *testing.T) {
	resp := Response{OK: true, Msg: "stopped", ID: "req-42"}
	parsed, err := DecodeResponse(resp.Encode())
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if parsed.ID != "req-42" {
		t.Errorf("ID = %q, want %q", parsed.ID, "req-42")
	}
}
