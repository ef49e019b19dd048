package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/musicmeta/internal/shared"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Envelope is the response body of every API endpoint except /health.
type Envelope struct {
	Success   bool   `json:"sucesso"`
	Message   string `json:"mensagem"`
	Data      any    `json:"dados"`
	Error     string `json:"erro,omitempty"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// respond writes a successful envelope.
func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

// respondError writes a failed envelope. err, when non-nil, is exposed in the erro field.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	env := Envelope{
		Success:   false,
		Message:   message,
		Timestamp: timestamp(),
	}
	if err != nil {
		env.Error = err.Error()
	}
	writeJSON(w, status, env)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrTrackNotFound), errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body into v. Failures wrap [shared.ErrInvalidInput].
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: corpo da requisição vazio", shared.ErrInvalidInput)
		}
		return fmt.Errorf("%w: corpo da requisição inválido: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

// NotFound answers unmatched routes with a 404 envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, fmt.Sprintf("Rota %s não encontrada", r.URL.Path), nil)
}
