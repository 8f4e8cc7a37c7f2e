package live

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/alex-pricope/catch-the-mole/logging"
	"github.com/alex-pricope/catch-the-mole/rooms"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// Renderer turns a room into the message one subscriber may see.
type Renderer func(room *rooms.Room, fingerprint string) any

// Hub pushes room views to websocket subscribers. It is a registry observer; each
// subscriber only ever holds the newest view, older undelivered ones are dropped.
type Hub struct {
	registry   *rooms.Registry
	render     Renderer
	upgrader   websocket.Upgrader
	pongWait   time.Duration
	pingPeriod time.Duration

	mu       sync.Mutex
	subs     map[string]map[*subscriber]struct{}
	versions map[string]int64
}

func NewHub(registry *rooms.Registry, render Renderer, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		registry: registry,
		render:   render,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		pongWait:   time.Minute,
		pingPeriod: 30 * time.Second,
		subs:       make(map[string]map[*subscriber]struct{}),
		versions:   make(map[string]int64),
	}
}

type subscriber struct {
	fingerprint string
	updates     chan any
	closed      chan struct{}
	closeOnce   sync.Once
}

func newSubscriber(fingerprint string) *subscriber {
	return &subscriber{
		fingerprint: fingerprint,
		updates:     make(chan any, 1),
		closed:      make(chan struct{}),
	}
}

// push replaces whatever is waiting with msg. Only called with Hub.mu held.
func (s *subscriber) push(msg any) {
	for {
		select {
		case s.updates <- msg:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (h *Hub) RoomUpdated(room *rooms.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room.Version <= h.versions[room.ID] {
		return
	}
	h.versions[room.ID] = room.Version
	for s := range h.subs[room.ID] {
		s.push(h.render(room, s.fingerprint))
	}
}

func (h *Hub) RoomRemoved(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[id] {
		s.close()
	}
	delete(h.subs, id)
	delete(h.versions, id)
}

// Subscribers returns how many connections watch the room.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[roomID])
}

func (h *Hub) subscribe(roomID, fingerprint string) *subscriber {
	s := newSubscriber(fingerprint)
	h.mu.Lock()
	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[*subscriber]struct{})
	}
	h.subs[roomID][s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(roomID string, s *subscriber) {
	h.mu.Lock()
	delete(h.subs[roomID], s)
	if len(h.subs[roomID]) == 0 {
		delete(h.subs, roomID)
	}
	h.mu.Unlock()
	s.close()
}

// pushInitial sends the current state unless a newer update already reached s.
func (h *Hub) pushInitial(room *rooms.Room, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room.Version < h.versions[room.ID] {
		return
	}
	h.versions[room.ID] = room.Version
	s.push(h.render(room, s.fingerprint))
}

// Serve upgrades the request and streams views of the room until either side goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, roomID, fingerprint string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// subscribe before loading so no change between the two is lost
	sub := h.subscribe(roomID, fingerprint)
	defer h.unsubscribe(roomID, sub)

	room, err := h.registry.Get(roomID)
	if err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "room not found")
		return err
	}
	h.pushInitial(room, sub)

	go h.readPump(conn, sub)

	pingTicker := time.NewTicker(h.pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case msg := <-sub.updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logging.Log.Debugf("LIVE: write to subscriber of %s failed: %v", roomID, err)
				return nil
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-sub.closed:
			if !h.registry.Exists(roomID) {
				writeClose(conn, websocket.CloseGoingAway, "room closed")
			}
			return nil
		}
	}
}

func (h *Hub) readPump(conn *websocket.Conn, sub *subscriber) {
	defer sub.close()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				logging.Log.Debugf("LIVE: read ended: %v", err)
			}
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
