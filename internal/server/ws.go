package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ShayCichocki/architect/internal/heal"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket message types from client.
const (
	wsMsgRun = "run"
)

// WebSocket message types to client.
const (
	wsMsgAttempt = "attempt"
	wsMsgResult  = "result"
	wsMsgError   = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (s *Server) handleTerminalWS(w http.ResponseWriter, r *http.Request) {
	// The 101 response is built from this header, not from w.Header().
	header := http.Header{RequestIDHeader: {RequestID(r.Context())}}
	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		s.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := s.logger.With(zap.String("request_id", RequestID(r.Context())))

	// The reader cancels ctx once the client goes away, which stops a run
	// that is still in progress.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Server shutdown cancels ctx; closing the connection unblocks the reader.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	msgs := make(chan []byte)
	go func() {
		defer close(msgs)
		defer cancel()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("websocket read", zap.Error(err))
				}
				return
			}
			select {
			case msgs <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	for raw := range msgs {
		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendWSError(conn, "invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgRun:
			s.handleWSRun(ctx, conn, msg.Data)
		default:
			s.sendWSError(conn, "unknown message type: "+msg.Type)
		}
	}
}

// handleWSRun streams one attempt event per run of the command, then the result.
func (s *Server) handleWSRun(ctx context.Context, conn *websocket.Conn, data json.RawMessage) {
	var req terminalRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWSError(conn, "invalid run data")
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		s.sendWSError(conn, "command_required")
		return
	}

	result := s.engine.StreamSelfHealingCommand(ctx, req.Command, s.workDir, func(ev heal.AttemptEvent) {
		s.sendWSMessage(conn, wsMsgAttempt, ev)
	})
	s.sendWSMessage(conn, wsMsgResult, result)
}

func (s *Server) sendWSMessage(conn *websocket.Conn, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("ws marshal", zap.Error(err))
		return
	}
	if err := conn.WriteJSON(wsMessage{Type: msgType, Data: raw}); err != nil {
		s.logger.Warn("ws write", zap.Error(err))
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, errMsg string) {
	s.sendWSMessage(conn, wsMsgError, map[string]string{"message": errMsg})
}
