package server

import (
	"bytes"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketRequest is a client message: an analyze request carrying image
// bytes, or a search request carrying a query.
type WebSocketRequest struct {
	Type  string `json:"type"` // "analyze" or "search"
	Image []byte `json:"image,omitempty"`
	Query string `json:"query,omitempty"`
}

// WebSocketResponse reports the outcome of a request.
type WebSocketResponse struct {
	Type   string `json:"type"`
	Status string `json:"status"` // "processing", "completed" or "error"
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// boothWebSocketHandler handles WebSocket connections for interactive
// analyze/search sessions.
func (s *Server) boothWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r, conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(r *http.Request, conn *websocket.Conn) {
	// Read deadline prevents hanging connections; pongs extend it.
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	// Ping to keep the connection alive.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(r, conn, data)
		}
	}
}

// handleWebSocketMessage dispatches a single client message.
func (s *Server) handleWebSocketMessage(r *http.Request, conn *websocket.Conn, data []byte) {
	var req WebSocketRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid message: "+err.Error())
		return
	}

	switch req.Type {
	case "analyze":
		img, _, err := image.Decode(bytes.NewReader(req.Image))
		if err != nil {
			s.sendWebSocketError(conn, "invalid image data")
			return
		}
		s.sendWebSocketResponse(conn, WebSocketResponse{Type: "analyze", Status: "processing"})
		res, err := s.analyzer.Analyze(r.Context(), img)
		if err != nil {
			s.sendWebSocketError(conn, "analysis failed: "+err.Error())
			return
		}
		s.setLastImage(img)
		s.sendWebSocketResponse(conn, WebSocketResponse{
			Type:   "analyze",
			Status: "completed",
			Result: res,
		})
	case "search":
		if s.analyzer.Current() == nil {
			s.sendWebSocketError(conn, "no floor plan analyzed yet")
			return
		}
		sr := s.analyzer.Search(req.Query)
		s.sendWebSocketResponse(conn, WebSocketResponse{
			Type:   "search",
			Status: "completed",
			Result: sr,
		})
	default:
		s.sendWebSocketError(conn, "unknown message type: "+req.Type)
	}
}

func (s *Server) sendWebSocketResponse(conn *websocket.Conn, resp WebSocketResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to write WebSocket response", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

func (s *Server) sendWebSocketError(conn *websocket.Conn, message string) {
	s.sendWebSocketResponse(conn, WebSocketResponse{
		Type:   "error",
		Status: "error",
		Error:  message,
	})
}
