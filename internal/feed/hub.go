package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"github.com/go-theft-craft/voxel-terrain/internal/terrain/block"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/chunk"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/mesh"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/meshcodec"
	"github.com/go-theft-craft/voxel-terrain/internal/terrain/world"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second

	// maxCoord bounds client coordinates; float32 stops resolving whole
	// blocks beyond it.
	maxCoord = 1 << 24
)

// Hub broadcasts chunk lifecycle signals to websocket clients and collects
// their observer positions and edit requests. It implements stream.Sink.
//
// A new client receives no broadcasts until Activate is called for it, so
// the owner of the terrain can first replay resident chunks with SendChunk
// without the client seeing a chunk created twice.
type Hub struct {
	codec  *meshcodec.Codec
	logger *slog.Logger

	upgrader    websocket.Upgrader
	nextID      atomic.Uint64
	joinTimeout time.Duration

	mu      sync.Mutex
	clients map[uint64]*client
	closed  bool

	observers chan mgl32.Vec3
	edits     chan Edit
	joins     chan uint64
}

type client struct {
	id     uint64
	conn   *websocket.Conn
	send   chan []byte
	active bool
}

// NewHub creates a Hub encoding meshes with codec.
func NewHub(codec *meshcodec.Codec, logger *slog.Logger) *Hub {
	return &Hub{
		codec:  codec,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		joinTimeout: 5 * time.Second,
		clients:     make(map[uint64]*client),
		observers:   make(chan mgl32.Vec3, 64),
		edits:       make(chan Edit, 64),
		joins:       make(chan uint64, 16),
	}
}

// Observers delivers observer positions reported by clients.
func (h *Hub) Observers() <-chan mgl32.Vec3 { return h.observers }

// Edits delivers block edits requested by clients.
func (h *Hub) Edits() <-chan Edit { return h.edits }

// Joins delivers the IDs of newly connected clients, so the owner of the
// terrain can send them the chunks that are already resident.
func (h *Hub) Joins() <-chan uint64 { return h.joins }

// Activate starts broadcasting to a joined client. It reports false when the
// client has already disconnected.
func (h *Hub) Activate(clientID uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if ok {
		c.active = true
	}
	return ok
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Created(pos chunk.Pos, hs world.Handles, m *mesh.Mesh, col mesh.Collision) {
	h.broadcastMesh(TypeChunkCreated, pos, hs, m, col)
}

func (h *Hub) Updated(pos chunk.Pos, hs world.Handles, m *mesh.Mesh, col mesh.Collision) {
	h.broadcastMesh(TypeChunkUpdated, pos, hs, m, col)
}

func (h *Hub) Released(pos chunk.Pos, hs world.Handles) {
	msg, err := json.Marshal(ChunkMsg{
		Type:     TypeChunkReleased,
		Pos:      posArray(pos),
		Render:   uint64(hs.Render),
		Collider: uint64(hs.Collider),
	})
	if err != nil {
		h.logger.Error("encode release", "pos", pos, "error", err)
		return
	}
	h.broadcast(msg)
}

// SendChunk sends a CHUNK_CREATED message for a resident chunk to one client.
// It waits up to the write timeout for room in the client's buffer.
func (h *Hub) SendChunk(clientID uint64, pos chunk.Pos, hs world.Handles, m *mesh.Mesh, col mesh.Collision) error {
	msg, err := h.encodeMesh(TypeChunkCreated, pos, hs, m, col)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return fmt.Errorf("client %d not connected", clientID)
	}
	select {
	case c.send <- msg:
		return nil
	case <-time.After(writeTimeout):
		h.logger.Warn("feed client too slow for replay, dropping", "client", c.id)
		h.dropLocked(c)
		return fmt.Errorf("client %d too slow", clientID)
	}
}

// Close disconnects every client. Later signals are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) broadcastMesh(typ string, pos chunk.Pos, hs world.Handles, m *mesh.Mesh, col mesh.Collision) {
	if h.ClientCount() == 0 {
		return
	}
	msg, err := h.encodeMesh(typ, pos, hs, m, col)
	if err != nil {
		h.logger.Error("encode chunk", "pos", pos, "error", err)
		return
	}
	h.broadcast(msg)
}

func (h *Hub) encodeMesh(typ string, pos chunk.Pos, hs world.Handles, m *mesh.Mesh, col mesh.Collision) ([]byte, error) {
	payload, err := h.codec.Encode(m)
	if err != nil {
		return nil, fmt.Errorf("encode mesh %v: %w", pos, err)
	}
	colPayload, err := h.codec.EncodeCollision(col)
	if err != nil {
		return nil, fmt.Errorf("encode collision %v: %w", pos, err)
	}
	return json.Marshal(ChunkMsg{
		Type:              typ,
		Pos:               posArray(pos),
		Render:            uint64(hs.Render),
		Collider:          uint64(hs.Collider),
		Vertices:          m.VertexCount(),
		Indices:           len(m.Indices),
		Encoding:          meshcodec.Encoding,
		Mesh:              payload,
		ColliderKind:      col.Kind.String(),
		Shapes:            col.Len(),
		CollisionEncoding: meshcodec.CollisionEncoding,
		Collision:         colPayload,
	})
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		if c.active {
			h.deliverLocked(c, msg)
		}
	}
}

// deliverLocked queues msg for c, dropping the client if it cannot keep up.
func (h *Hub) deliverLocked(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("feed client too slow, dropping", "client", c.id)
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
}

// Handler upgrades requests to websocket feed sessions.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			h.logger.Debug("feed upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		c := &client{id: h.nextID.Add(1), conn: conn, send: make(chan []byte, sendBuffer)}
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			return
		}
		h.clients[c.id] = c
		h.mu.Unlock()

		h.logger.Info("feed client connected", "client", c.id, "remote", r.RemoteAddr)
		select {
		case h.joins <- c.id:
		case <-time.After(h.joinTimeout):
			h.logger.Warn("feed join not picked up, closing session", "client", c.id)
			h.mu.Lock()
			h.dropLocked(c)
			h.mu.Unlock()
			return
		case <-r.Context().Done():
			h.mu.Lock()
			h.dropLocked(c)
			h.mu.Unlock()
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			h.writeLoop(c)
		}()

		h.readLoop(c)

		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
		<-done
		h.logger.Info("feed client disconnected", "client", c.id)
	}
}

func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("feed write failed", "client", c.id, "error", err)
			// Unblock the reader so the session ends.
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))
	_ = c.conn.Close()
}

func (h *Hub) readLoop(c *client) {
	for {
		_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Debug("feed bad message", "client", c.id, "error", err)
			continue
		}
		h.handle(c, msg)
	}
}

func (h *Hub) handle(c *client, msg ClientMsg) {
	if !validPos(msg.Pos) {
		h.logger.Debug("feed position out of range", "client", c.id, "type", msg.Type, "pos", msg.Pos)
		return
	}
	pos := mgl32.Vec3(msg.Pos)
	switch msg.Type {
	case TypeObserver:
		select {
		case h.observers <- pos:
		default:
			// Dropped under load; clients report positions continuously.
		}
	case TypeEdit:
		t, err := block.ParseType(msg.Block)
		if err != nil {
			h.logger.Debug("feed bad edit", "client", c.id, "error", err)
			return
		}
		select {
		case h.edits <- Edit{ClientID: c.id, Target: pos, Block: t}:
		default:
			h.logger.Warn("feed edit queue full", "client", c.id)
		}
	default:
		h.logger.Debug("feed unknown message", "client", c.id, "type", msg.Type)
	}
}

func validPos(v [3]float32) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.Abs(f) > maxCoord {
			return false
		}
	}
	return true
}
