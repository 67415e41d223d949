package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/apresai/personaswap/internal/observability"
	"github.com/apresai/personaswap/internal/persona"
	"github.com/apresai/personaswap/internal/transformer"
)

const (
	wsReadLimit  = 64 << 10
	wsWriteWait  = 10 * time.Second
	wsIdleExpiry = 5 * time.Minute
)

// wsFrame is the reply to every inbound frame.
type wsFrame struct {
	Success bool                `json:"success"`
	Data    *transformer.Result `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
}

// handleWebSocket streams transformations. Each text frame is either plain
// text for the connection's persona or a JSON {"message","persona"} object
// that overrides it for that frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("persona")
	if strings.TrimSpace(key) == "" {
		s.writeError(w, http.StatusBadRequest, "Persona is required", nil)
		return
	}
	if _, err := s.svc.Registry().Resolve(key); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error(), nil)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WarnContext(r.Context(), "Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx := observability.DetachTraceContext(r.Context())
	ip := s.clientIP(r)
	conn.SetReadLimit(wsReadLimit)
	s.log.InfoContext(ctx, "WebSocket connected", "persona", key, "remote", ip)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleExpiry))
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.DebugContext(ctx, "WebSocket read ended", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		var reply wsFrame
		if allowed, _ := s.limiter.Allow(ip); !allowed {
			reply = wsFrame{Message: "Too many requests, please try again later"}
		} else {
			message, frameKey := parseFrame(payload, key)
			res, err := s.svc.Transform(ctx, message, frameKey)
			reply = frameFor(res, err)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			s.log.DebugContext(ctx, "WebSocket write failed", "error", err)
			return
		}
	}
}

func parseFrame(payload []byte, fallbackKey string) (message, key string) {
	var req transformRequest
	if json.Unmarshal(payload, &req) == nil && req.Message != "" {
		if req.Persona == "" {
			req.Persona = fallbackKey
		}
		return req.Message, req.Persona
	}
	return string(payload), fallbackKey
}

func frameFor(res *transformer.Result, err error) wsFrame {
	if err == nil {
		return wsFrame{Success: true, Data: res}
	}
	var verr *transformer.ValidationError
	switch {
	case errors.As(err, &verr):
		return wsFrame{Message: verr.Message}
	case errors.Is(err, persona.ErrNotFound):
		return wsFrame{Message: err.Error()}
	default:
		return wsFrame{Message: "Server error"}
	}
}
