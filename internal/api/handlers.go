package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/lexiqai/intro-scorer/internal/audio"
	"github.com/lexiqai/intro-scorer/internal/observability"
	"github.com/lexiqai/intro-scorer/internal/scoring"
	"github.com/lexiqai/intro-scorer/internal/stt"
)

type evaluateRequest struct {
	Transcript      string   `json:"transcript"`
	DurationSeconds *float64 `json:"duration_seconds"`
}

func (req evaluateRequest) duration() float64 {
	if req.DurationSeconds == nil {
		return defaultDurationSeconds
	}
	return *req.DurationSeconds
}

// GET /api/v1/rubric
func (s *Server) handleRubric(w http.ResponseWriter, r *http.Request) {
	criteria := scoring.Criteria()
	var groups []string
	seen := map[string]bool{}
	for _, c := range criteria {
		if !seen[c.Group] {
			seen[c.Group] = true
			groups = append(groups, c.Group)
		}
	}
	respondJSON(w, http.StatusOK, RubricResponse{
		MaxScore: scoring.MaxScore,
		Groups:   groups,
		Criteria: criteria,
	})
}

// POST /api/v1/evaluations
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	metrics := observability.NewEvaluationMetrics(observability.SourceJSON)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		s.fail(w, r, metrics, err)
		return
	}

	resp, err := s.evaluate(r.Context(), metrics, req.Transcript, req.duration())
	if err != nil {
		s.fail(w, r, metrics, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /api/v1/evaluations/upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	metrics := observability.NewEvaluationMetrics(observability.SourceUpload)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartSlack)

	data, header, err := readFormFile(r, "file", s.cfg.MaxUploadBytes)
	if err != nil {
		s.fail(w, r, metrics, err)
		return
	}
	transcript, err := decodeTranscriptFile(header.Filename, data)
	if err != nil {
		s.fail(w, r, metrics, err)
		return
	}
	duration, _, err := parseDuration(r.FormValue("duration_seconds"))
	if err != nil {
		s.fail(w, r, metrics, err)
		return
	}

	resp, err := s.evaluate(r.Context(), metrics, transcript, duration)
	if err != nil {
		s.fail(w, r, metrics, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /api/v1/evaluations/audio
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	metrics := observability.NewEvaluationMetrics(observability.SourceAudio)
	if s.transcriber == nil {
		s.fail(w, r, metrics, stt.ErrNotConfigured)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxAudioBytes+multipartSlack)

	data, header, err := readFormFile(r, "audio", s.cfg.MaxAudioBytes)
	if err != nil {
		s.fail(w, r, metrics, err)
		return
	}
	if err := checkAudioFile(header.Filename); err != nil {
		s.fail(w, r, metrics, err)
		return
	}
	formDuration, explicit, err := parseDuration(r.FormValue("duration_seconds"))
	if err != nil {
		s.fail(w, r, metrics, err)
		return
	}
	metrics.RecordAudioBytes(int64(len(data)))

	logger := observability.FromContext(r.Context())
	var activity *audio.Activity
	var wavDuration float64
	if info, err := audio.ProbeWAV(data); err == nil {
		wavDuration = info.Duration
		if samples, err := audio.DecodeMono(data, info); err == nil {
			a := audio.SpeechActivity(samples, info.SampleRate, s.vad)
			activity = &a
		} else {
			logger.Debug().Err(err).Msg("Skipping speech activity for undecodable wav")
		}
	}

	metrics.RecordSTTStart()
	transcript, err := s.transcriber.Transcribe(r.Context(), bytes.NewReader(data), header.Header.Get("Content-Type"))
	metrics.RecordSTTEnd(err == nil)
	if err != nil {
		if !errors.Is(err, stt.ErrEmptyTranscript) && !errors.Is(err, stt.ErrNotConfigured) {
			err = fmt.Errorf("%w: %w", errTranscription, err)
		}
		s.fail(w, r, metrics, err)
		return
	}

	duration, source := formDuration, "form"
	switch {
	case transcript.DurationSeconds > 0:
		duration, source = transcript.DurationSeconds, "stt"
	case wavDuration > 0:
		duration, source = wavDuration, "wav"
	case !explicit:
		source = "default"
	}

	resp, err := s.evaluate(r.Context(), metrics, transcript.Text, duration)
	if err != nil {
		s.fail(w, r, metrics, err)
		return
	}
	resp.Transcript = transcript.Text
	resp.Confidence = transcript.Confidence
	resp.DurationSource = source
	resp.SpeechActivity = activity
	respondJSON(w, http.StatusOK, resp)
}

// evaluate validates and scores one transcript.
func (s *Server) evaluate(ctx context.Context, metrics *observability.Metrics, transcript string, durationSeconds float64) (*EvaluationResponse, error) {
	if err := s.checkTranscript(transcript, durationSeconds); err != nil {
		return nil, err
	}

	report := s.evaluator.Analyze(transcript, durationSeconds)
	metrics.RecordEvaluation(report.OverallScore, report.Details.ByKey(), report.Stats.WordCount)

	resp := &EvaluationResponse{
		EvaluationID:    observability.NewEvaluationID(),
		Result:          report.Result,
		Stats:           report.Stats,
		DurationSeconds: durationSeconds,
	}

	logger := observability.FromContext(ctx)
	logger.Info().
		Str("evaluation_id", resp.EvaluationID).
		Float64("overall_score", resp.OverallScore).
		Int("word_count", report.Stats.WordCount).
		Float64("duration_seconds", durationSeconds).
		Msg("Transcript evaluated")
	return resp, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, metrics *observability.Metrics, err error) {
	status, kind := statusFor(err)
	logger := observability.FromContext(r.Context())

	if status >= http.StatusInternalServerError {
		metrics.RecordError(kind, "api")
		logger.Error().Err(err).Int("status", status).Msg("Evaluation failed")
	} else {
		metrics.RecordRejected()
		logger.Warn().Err(err).Int("status", status).Msg("Evaluation rejected")
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	respondError(w, status, msg)
}

// readFormFile reads one multipart file of at most limit bytes.
func readFormFile(r *http.Request, field string, limit int64) ([]byte, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: missing %q file: %v", ErrBadRequest, field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, nil, &http.MaxBytesError{Limit: limit}
	}
	return data, header, nil
}
