package httpapi

import (
	"encoding/json"
	"net/http"
)

type successBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorBody struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, successBody{Success: true, Message: message, Data: data})
}

// writeError sends the error envelope. detail is dropped in production.
func (s *Server) writeError(w http.ResponseWriter, status int, message string, detail error) {
	body := errorBody{Success: false, Message: message, StatusCode: status}
	if detail != nil && !s.cfg.Server.Production() {
		body.Error = detail.Error()
	}
	writeJSON(w, status, body)
}
