// Package protocol defines the wire format of the Go2 bridge command channel
// and the public action vocabulary. It is shared between the bridge daemon,
// the web gateway, and go2ctl.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Request is one inbound command on the command subject.
type Request struct {
	Cmd    string         `json:"cmd"`
	Params map[string]any `json:"params,omitempty"`
	ID     string         `json:"id,omitempty"`
}

// Response is the reply to one Request. ID echoes the request ID.
type Response struct {
	OK   bool           `json:"ok"`
	Msg  string         `json:"msg"`
	Data map[string]any `json:"data,omitempty"`
	ID   string         `json:"id,omitempty"`
}

// EncodeRequest encodes a command request as JSON bytes.
func EncodeRequest(cmd string, params map[string]any) ([]byte, error) {
	return json.Marshal(Request{Cmd: cmd, Params: params})
}

// DecodeRequest decodes a command request. Malformed input yields an error,
// never a partial result.
func DecodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// EncodeResponse encodes a command response as JSON bytes.
func EncodeResponse(ok bool, msg string, data map[string]any) ([]byte, error) {
	return json.Marshal(Response{OK: ok, Msg: msg, Data: data})
}

// DecodeResponse decodes a command response.
func DecodeResponse(raw []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

// Encode returns the JSON encoding of the response. Encoding a Response
// cannot fail; a marshal error here would be a programming bug, so Encode
// degrades to a plain error payload instead of returning one.
func (r Response) Encode() []byte {
	raw, err := json.Marshal(r)
	if err != nil {
		return []byte(`{"ok":false,"msg":"internal encoding error"}`)
	}
	return raw
}
