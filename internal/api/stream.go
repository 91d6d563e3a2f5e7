package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lexiqai/intro-scorer/internal/observability"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// streamRequest is one client frame on /ws/evaluate
type streamRequest struct {
	RequestID       string   `json:"request_id,omitempty"`
	Transcript      string   `json:"transcript"`
	DurationSeconds *float64 `json:"duration_seconds"`
}

// streamResponse answers exactly one streamRequest
type streamResponse struct {
	Type      string              `json:"type"` // "result" or "error"
	RequestID string              `json:"request_id,omitempty"`
	Data      *EvaluationResponse `json:"data,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// streamSession holds the state of a single live scoring connection
type streamSession struct {
	ctx     context.Context
	conn    *websocket.Conn
	writeMu sync.Mutex
	logger  zerolog.Logger
	done    chan struct{}
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin applies the CORS allow-list to browser websocket handshakes.
// Requests without an Origin header are not from a browser and are allowed.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.CORSAllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// GET /ws/evaluate
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		logger.Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
		return
	}
	defer conn.Close()

	observability.StreamOpened()
	defer observability.StreamClosed()

	session := &streamSession{
		ctx:    r.Context(),
		conn:   conn,
		logger: logger,
		done:   make(chan struct{}),
	}
	logger.Info().Msg("Live scoring stream opened")

	go session.keepAlive()
	s.readLoop(session)
	close(session.done)

	logger.Info().Msg("Live scoring stream closed")
}

func (s *Server) readLoop(session *streamSession) {
	conn := session.conn
	conn.SetReadLimit(s.cfg.MaxUploadBytes)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				session.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		if msgType != websocket.TextMessage {
			session.send(streamResponse{Type: "error", Error: "expected a JSON text frame"})
			continue
		}

		session.send(s.scoreFrame(session, message))
	}
}

func (s *Server) scoreFrame(session *streamSession, message []byte) streamResponse {
	metrics := observability.NewEvaluationMetrics(observability.SourceStream)

	var req streamRequest
	if err := json.Unmarshal(message, &req); err != nil {
		metrics.RecordRejected()
		return streamResponse{Type: "error", Error: fmt.Sprintf("%v: %v", ErrBadRequest, err)}
	}

	duration := float64(defaultDurationSeconds)
	if req.DurationSeconds != nil {
		duration = *req.DurationSeconds
	}

	ctx := observability.IntoContext(session.ctx, session.logger.With().Str("request_id", req.RequestID).Logger())
	resp, err := s.evaluate(ctx, metrics, req.Transcript, duration)
	if err != nil {
		metrics.RecordRejected()
		return streamResponse{Type: "error", RequestID: req.RequestID, Error: err.Error()}
	}
	return streamResponse{Type: "result", RequestID: req.RequestID, Data: resp}
}

func (ss *streamSession) send(resp streamResponse) {
	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()

	_ = ss.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := ss.conn.WriteJSON(resp); err != nil {
		ss.logger.Warn().Err(err).Msg("Failed to write stream response")
	}
}

// keepAlive pings the client until the session ends.
func (ss *streamSession) keepAlive() {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ss.done:
			return
		case <-ticker.C:
			ss.writeMu.Lock()
			err := ss.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait))
			ss.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
