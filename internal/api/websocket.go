package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"larder/internal/placement"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Hub tracks connected dashboard clients and broadcasts inventory events to
// them. It is the engine's notification sink: delivery is fire-and-forget
// and slow clients drop messages rather than block the core.
type Hub struct {
	mu    sync.Mutex
	conns map[*WSConnection]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{conns: make(map[*WSConnection]bool)}
}

func (h *Hub) add(c *WSConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = true
}

func (h *Hub) remove(c *WSConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling broadcast: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.enqueue(data)
	}
}

// PlacementCommitted implements placement.Notifier
func (h *Hub) PlacementCommitted(result placement.MoveResult) {
	h.Broadcast(gin.H{
		"type":             "placement_committed",
		"item":             result.Item,
		"storage_mismatch": result.StorageMismatch,
	})
}

// PlacementRejected implements placement.Notifier
func (h *Hub) PlacementRejected(stockItemID string, err error) {
	h.Broadcast(gin.H{
		"type":          "placement_rejected",
		"stock_item_id": stockItemID,
		"error":         err.Error(),
	})
}

// WSConnection maintains the WebSocket connection with one dashboard client
type WSConnection struct {
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	server *Server
}

// dragMessage is one drag-lifecycle command from the client
type dragMessage struct {
	Action      string  `json:"action"` // begin, move, end, cancel
	StockItemID string  `json:"stock_item_id,omitempty"`
	X           float64 `json:"x,omitempty"`
	Y           float64 `json:"y,omitempty"`
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := &WSConnection{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}
	s.hub.add(wsConn)

	// Start the read and write pumps
	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *WSConnection) readPump() {
	defer func() {
		c.server.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the server to the WebSocket connection
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The channel was closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage drives the drag session from pointer events. Invalid
// transitions are a client bug: they are logged, reported back, and the
// active session is left untouched.
func (c *WSConnection) handleMessage(message []byte) {
	var msg dragMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Error unmarshaling drag message: %v", err)
		return
	}

	drag := c.server.Drag
	switch msg.Action {
	case "begin":
		if err := drag.BeginDrag(msg.StockItemID); err != nil {
			c.sendError(err)
			return
		}
		c.server.Monitor.IncrementStat("drags_started")
		c.sendEvent(gin.H{"type": "drag_started", "stock_item_id": msg.StockItemID})

	case "move":
		candidate, err := drag.UpdateCandidate(placement.Point{X: msg.X, Y: msg.Y})
		if err != nil {
			c.sendError(err)
			return
		}
		c.sendEvent(gin.H{"type": "candidate", "location_id": candidate})

	case "end":
		result, err := drag.EndDrag()
		if errors.Is(err, placement.ErrDragCancelled) {
			c.server.Monitor.IncrementStat("drags_cancelled")
			c.sendEvent(gin.H{"type": "drag_cancelled"})
			return
		}
		if err != nil {
			c.server.Monitor.IncrementStat("moves_rejected")
			c.server.Metrics.RecordMove("rejected")
			c.sendError(err)
			return
		}
		c.server.Monitor.IncrementStat("moves_committed")
		c.server.Metrics.RecordMove("committed")
		c.sendEvent(gin.H{"type": "drop_result", "item": result.Item, "storage_mismatch": result.StorageMismatch})

	case "cancel":
		if err := drag.Cancel(); err != nil {
			c.sendError(err)
			return
		}
		c.server.Monitor.IncrementStat("drags_cancelled")
		c.sendEvent(gin.H{"type": "drag_cancelled"})

	default:
		log.Printf("Unknown drag action: %q", msg.Action)
	}
}

// enqueue queues a message for delivery, dropping it if the client is slow
func (c *WSConnection) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping message")
	}
}

// sendEvent sends an event to this client
func (c *WSConnection) sendEvent(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueue(data)
}

// sendError sends an error message to this client
func (c *WSConnection) sendError(err error) {
	log.Printf("Drag session error: %v", err)
	c.sendEvent(map[string]string{"type": "error", "error": err.Error()})
}
