package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zbiljic/blueprint/pkg/artifact"
	"github.com/zbiljic/blueprint/pkg/llm"
)

const (
	streamReadTimeout  = 30 * time.Second
	streamWriteTimeout = 10 * time.Second
)

// Stream message types.
const (
	messageArtifact = "artifact"
	messageError    = "error"
	messageDone     = "done"
)

type streamMessage struct {
	Type      string                `json:"type"`
	ID        string                `json:"id,omitempty"`
	Field     string                `json:"field,omitempty"`
	Text      string                `json:"text,omitempty"`
	Error     *artifact.ErrorDetail `json:"error,omitempty"`
	Succeeded int                   `json:"succeeded,omitempty"`
	Total     int                   `json:"total,omitempty"`
}

// GET /api/v1/generate/ws
//
// The client sends one request, the server answers with one message per
// artifact as it resolves and a final "done" message.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		s.metrics.IncError("server", "ws_upgrade")
		return
	}
	defer conn.Close()

	s.metrics.IncWSConnections()
	defer s.metrics.DecWSConnections()

	_ = conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

	_, data, err := conn.ReadMessage()
	if err != nil {
		s.logger.Warn("websocket read failed", "err", err)
		s.metrics.IncError("server", "ws_read")
		return
	}

	var req artifact.Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.metrics.IncError("server", "decode")
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		_ = conn.WriteJSON(streamMessage{Type: messageError, Error: &artifact.ErrorDetail{
			Kind:    llm.KindValidation,
			Message: fmt.Sprintf("bad request: %v", err),
		}})
		s.closeStream(conn)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// a closed connection cancels the batch
	_ = conn.SetReadDeadline(time.Time{})
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func(m streamMessage) {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(m); err != nil {
			s.logger.Debug("websocket write failed", "err", err)
			cancel()
		}
	}

	batch, err := s.gen.GenerateEach(ctx, req, func(o artifact.Outcome) {
		m := streamMessage{Type: messageArtifact, Field: o.Kind.Field(), Text: o.Text}
		if o.Err != nil {
			detail := artifact.NewErrorDetail(o.Err)
			m.Error = &detail
		}
		send(m)
	})
	if err != nil {
		detail := artifact.NewErrorDetail(err)
		send(streamMessage{Type: messageError, Error: &detail})
		s.closeStream(conn)
		return
	}

	send(streamMessage{
		Type:      messageDone,
		ID:        batch.ID,
		Succeeded: batch.Succeeded(),
		Total:     len(batch.Outcomes),
	})
	s.closeStream(conn)
}

func (s *Server) closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
