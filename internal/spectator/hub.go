package spectator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// errViewerClosed ends a viewer's pumps when it closes the connection itself.
var errViewerClosed = errors.New("spectator: viewer closed")

// Hub fans snapshots out to connected viewers. Snapshots arrive on Inbox;
// every BroadcastEvery-th one, and every terminal one, becomes a Frame.
type Hub struct {
	cfg      config.SpectatorConfig
	logger   *zap.Logger
	stream   uuid.UUID
	inbox    chan session.Snapshot
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*viewer]struct{}
	seq     uint64
	seen    uint64
	dropped uint64
	srv     *http.Server
}

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub with a fresh stream identity.
//
// Precondition: cfg.BroadcastEvery >= 1 and cfg.SendBuffer >= 1.
func NewHub(cfg config.SpectatorConfig, logger *zap.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		stream:   uuid.New(),
		inbox:    make(chan session.Snapshot, cfg.SendBuffer),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		clients:  make(map[*viewer]struct{}),
	}
}

// Inbox is the channel a snapshot producer subscribes with.
func (h *Hub) Inbox() chan<- session.Snapshot { return h.inbox }

// Stream returns the hub's stream identity.
func (h *Hub) Stream() uuid.UUID { return h.stream }

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many frames were skipped for slow viewers.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Handler serves GET /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.serveWS)
	return mux
}

// Start listens on cfg.Addr() and relays snapshots until ctx is cancelled or
// Stop is called.
//
// Postcondition: Returns nil on orderly shutdown, or the listener error.
func (h *Hub) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.cfg.Addr())
	if err != nil {
		return fmt.Errorf("spectator: listening on %s: %w", h.cfg.Addr(), err)
	}
	return h.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (h *Hub) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	h.mu.Lock()
	h.srv = srv
	h.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.logger.Info("spectator hub listening", zap.String("addr", ln.Addr().String()), zap.Stringer("stream", h.stream))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("spectator: serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		h.relay(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Stop()
		return nil
	})
	return g.Wait()
}

// Stop closes the listener and every viewer connection.
func (h *Hub) Stop() {
	h.mu.Lock()
	srv := h.srv
	clients := make([]*viewer, 0, len(h.clients))
	for v := range h.clients {
		clients = append(clients, v)
	}
	h.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	for _, v := range clients {
		_ = v.conn.Close()
	}
}

func (h *Hub) relay(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-h.inbox:
			h.Offer(snap)
		}
	}
}

// Offer counts snap against the broadcast interval and broadcasts it when due.
// Terminal snapshots are always broadcast.
func (h *Hub) Offer(snap session.Snapshot) {
	h.mu.Lock()
	h.seen++
	due := h.seen%uint64(h.cfg.BroadcastEvery) == 0 || snap.Status != session.Ongoing.String()
	h.mu.Unlock()
	if due {
		h.Broadcast(snap)
	}
}

// Broadcast sends snap to every viewer as the next frame. A viewer whose
// send buffer is full misses the frame.
func (h *Hub) Broadcast(snap session.Snapshot) {
	h.mu.Lock()
	h.seq++
	f := Frame{Stream: h.stream.String(), Seq: h.seq, Digest: snap.Digest(), Snapshot: snap}
	h.mu.Unlock()

	b, err := f.Encode()
	if err != nil {
		h.logger.Error("spectator: dropping unencodable frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.clients {
		select {
		case v.send <- b:
		default:
			h.dropped++
		}
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("spectator: upgrade failed", zap.Error(err))
		return
	}
	v := &viewer{conn: conn, send: make(chan []byte, h.cfg.SendBuffer)}
	h.mu.Lock()
	h.clients[v] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("spectator connected", zap.String("remote", conn.RemoteAddr().String()))

	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return h.readPump(v) })
	g.Go(func() error { return h.writePump(gctx, v) })
	err = g.Wait()
	if errors.Is(err, errViewerClosed) {
		err = nil
	}

	h.mu.Lock()
	delete(h.clients, v)
	h.mu.Unlock()
	_ = conn.Close()
	h.logger.Info("spectator disconnected",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.Error(err),
	)
}

// readPump discards viewer messages and ends when the connection does. A
// close from the viewer yields errViewerClosed so writePump stops with it.
func (h *Hub) readPump(v *viewer) error {
	v.conn.SetReadLimit(512)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errViewerClosed
			}
			return err
		}
	}
}

func (h *Hub) writePump(ctx context.Context, v *viewer) error {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case b := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
				// Unblock readPump so the errgroup can finish.
				_ = v.conn.Close()
				return fmt.Errorf("writing frame: %w", err)
			}
		case <-ping.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = v.conn.Close()
				return fmt.Errorf("writing ping: %w", err)
			}
		}
	}
}
