// Package transport defines the narrow collaborator interface MeshExec
// consumes to speak to the mesh, independent of any particular radio
// driver. The real Meshtastic serial/BLE client lives outside this module
// (it is an external collaborator, out of scope for the core); only the
// interface boundary and an in-memory mock live here.
package transport

import "context"

// Event is one inbound text payload received from the mesh.
type Event struct {
	Channel  int
	SenderID string
	Text     string
}

// Transport is the two-operation interface the gateway consumes: a stream
// of inbound events and a send-text operation. Implementations are
// responsible for their own connection lifecycle; Close releases any
// underlying resources.
type Transport interface {
	// RecvText returns a channel of inbound events and a channel of
	// terminal errors. The event channel closes when the transport is
	// closed; at most one error is ever delivered on the error channel,
	// after which both channels close.
	RecvText(ctx context.Context) (<-chan Event, <-chan error)
	// SendText sends one text payload on the transport's configured
	// channel. Callers must ensure len(text) (in bytes) does not exceed
	// the configured max_text_bytes; the transport does not re-check.
	SendText(ctx context.Context, text string) error
	// Close releases the underlying connection.
	Close() error
}
