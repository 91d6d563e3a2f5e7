package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lexiqai/intro-scorer/internal/audio"
	"github.com/lexiqai/intro-scorer/internal/observability"
	"github.com/lexiqai/intro-scorer/internal/resilience"
	"github.com/lexiqai/intro-scorer/internal/scoring"
	"github.com/lexiqai/intro-scorer/internal/stt"
)

// envelope wraps every API response body
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// EvaluationResponse is the data returned for a scored transcript
type EvaluationResponse struct {
	EvaluationID string `json:"evaluation_id"`
	scoring.Result
	Stats           scoring.Stats `json:"stats"`
	DurationSeconds float64       `json:"duration_seconds"`

	// Audio evaluations only
	Transcript     string          `json:"transcript,omitempty"`
	DurationSource string          `json:"duration_source,omitempty"` // stt, wav, form or default
	Confidence     float64         `json:"confidence,omitempty"`
	SpeechActivity *audio.Activity `json:"speech_activity,omitempty"`
}

// RubricResponse lists the criteria in display order
type RubricResponse struct {
	MaxScore int                 `json:"max_score"`
	Groups   []string            `json:"groups"`
	Criteria []scoring.Criterion `json:"criteria"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		logger := observability.GetLogger()
		logger.Error().Err(err).Msg("Failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Error: msg}); err != nil {
		logger := observability.GetLogger()
		logger.Error().Err(err).Msg("Failed to write error response")
	}
}

// statusFor maps an evaluation error to its HTTP status and error type label.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType, "unsupported_file"
	case errors.Is(err, ErrEmptyTranscript),
		errors.Is(err, ErrDurationOutOfRange),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidEncoding),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, stt.ErrEmptyTranscript):
		return http.StatusUnprocessableEntity, "no_speech"
	case errors.Is(err, stt.ErrNotConfigured), errors.Is(err, resilience.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "stt_unavailable"
	case errors.Is(err, errTranscription):
		return http.StatusBadGateway, "stt"
	}
	return http.StatusInternalServerError, "internal"
}
