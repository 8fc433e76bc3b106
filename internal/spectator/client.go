package spectator

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// Client receives frames from a hub.
type Client struct {
	conn *websocket.Conn
	last uint64
	gaps uint64
}

// Dial connects to the hub at url, e.g. ws://localhost:8090/ws.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing spectator hub %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Next blocks for the next frame.
//
// Postcondition: Returns a decoded frame or the connection error. Frames
// skipped by the hub are counted in Missed.
func (c *Client) Next() (Frame, error) {
	for {
		kind, b, err := c.conn.ReadMessage()
		if err != nil {
			return Frame{}, fmt.Errorf("reading frame: %w", err)
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		f, err := DecodeFrame(b)
		if err != nil {
			return Frame{}, err
		}
		if c.last != 0 && f.Seq > c.last+1 {
			c.gaps += f.Seq - c.last - 1
		}
		c.last = f.Seq
		return f, nil
	}
}

// Missed returns how many frames were skipped between received ones.
func (c *Client) Missed() uint64 { return c.gaps }

// Close sends a close message and releases the connection.
func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
