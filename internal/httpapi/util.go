package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fadedpez/blackjacktable/internal/types"
)

// PlayerHeader identifies the caller. There is no authentication.
const PlayerHeader = "X-Player-ID"

// AnonymousPlayer is used when a request carries no player header
const AnonymousPlayer = "anonymous"

const maxRows = 100

func playerID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(PlayerHeader)); id != "" {
		return id
	}
	return AnonymousPlayer
}

// decodeOptionalRequest decodes a JSON body into payload. An empty body leaves
// payload untouched.
func (m *Mux) decodeOptionalRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") && ct != "text/json" {
		m.writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil && !errors.Is(err, io.EOF) {
		m.writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func parseRows(r *http.Request, name string, def int) (int, error) {
	s := r.FormValue(name)
	if s == "" {
		return def, nil
	}

	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if val <= 0 {
		return 0, errors.New(name + " must be greater than zero")
	}
	if val > maxRows {
		return maxRows, nil
	}
	return val, nil
}

func (m *Mux) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		m.logger.WithField("error", err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string          `json:"message"`
	Code       types.ErrorCode `json:"code,omitempty"`
	StatusCode int             `json:"statusCode"`
}

// statusFor maps an error code to its HTTP status
func statusFor(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidBet, types.ErrInvalidAction:
		return http.StatusBadRequest
	case types.ErrInvalidPhase:
		return http.StatusConflict
	case types.ErrSeatNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeGameError renders err with the status of its error code
func (m *Mux) writeGameError(w http.ResponseWriter, err error) {
	var gameErr *types.GameError
	if !types.As(err, &gameErr) {
		m.writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	statusCode := statusFor(gameErr.Code)
	if statusCode >= 500 {
		m.logger.LogError(err)
	}

	m.writeJSON(w, statusCode, errorResponse{
		Message:    gameErr.Message,
		Code:       gameErr.Code,
		StatusCode: statusCode,
	})
}

func (m *Mux) writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		m.logger.WithField("statusCode", statusCode).Error(err)
	}

	m.writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}
