// Package hub provides a channel-based websocket broadcast hub used by the
// web gateway to fan camera frames and state out to browser clients.
package hub

// Kind indicates the websocket frame format for an outbound message.
type Kind int

const (
	// JSON is a JSON-encoded text message.
	JSON Kind = iota
	// Binary is raw binary data (JPEG frames).
	Binary
)

// Message is one payload queued for broadcast.
type Message struct {
	Kind Kind
	Data []byte
}
