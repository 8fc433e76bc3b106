// Package spectator streams session snapshots to remote viewers over
// WebSocket. Every message is one msgpack-encoded Frame.
package spectator

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cory-johannsen/skirmish/internal/game/session"
)

// Frame is one broadcast snapshot. Seq increases by one per frame within a
// stream; a gap tells the viewer frames were dropped.
type Frame struct {
	Stream   string           `msgpack:"stream"`
	Seq      uint64           `msgpack:"seq"`
	Digest   uint64           `msgpack:"digest"`
	Snapshot session.Snapshot `msgpack:"snapshot"`
}

// Encode returns the wire form of f.
func (f Frame) Encode() ([]byte, error) {
	b, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding frame %d: %w", f.Seq, err)
	}
	return b, nil
}

// DecodeFrame parses a wire frame.
func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	if err := msgpack.Unmarshal(b, &f); err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}
	return f, nil
}

// Verify reports whether the digest matches the carried snapshot.
func (f Frame) Verify() bool { return f.Snapshot.Digest() == f.Digest }
