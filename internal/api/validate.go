package api

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lexiqai/intro-scorer/internal/textproc"
)

// Validation errors returned to clients as 400/415 responses.
var (
	ErrEmptyTranscript    = errors.New("transcript is empty")
	ErrDurationOutOfRange = errors.New("duration is out of range")
	ErrInvalidDuration    = errors.New("duration_seconds must be a number")
	ErrInvalidEncoding    = errors.New("transcript file must be UTF-8 text")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrBadRequest         = errors.New("malformed request")

	errTranscription = errors.New("transcription failed")
)

// defaultDurationSeconds is used when a request omits the duration.
const defaultDurationSeconds = 60

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".ogg": true,
	".oga": true, ".webm": true, ".flac": true, ".mp4": true,
}

// checkTranscript rejects blank transcripts and durations outside the
// configured range.
func (s *Server) checkTranscript(transcript string, durationSeconds float64) error {
	if strings.TrimSpace(transcript) == "" {
		return ErrEmptyTranscript
	}
	return s.checkDuration(durationSeconds)
}

func (s *Server) checkDuration(durationSeconds float64) error {
	lo, hi := s.cfg.MinDurationSeconds, s.cfg.MaxDurationSeconds
	if durationSeconds < lo || durationSeconds > hi {
		return fmt.Errorf("%w: %v seconds is outside [%v, %v]", ErrDurationOutOfRange, durationSeconds, lo, hi)
	}
	return nil
}

// parseDuration reads a form duration. Blank means the default.
func parseDuration(raw string) (float64, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultDurationSeconds, false, nil
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}
	return d, true, nil
}

// decodeTranscriptFile checks the extension and encoding of an uploaded
// transcript and strips a leading byte order mark.
func decodeTranscriptFile(filename string, data []byte) (string, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".txt" {
		return "", fmt.Errorf("%w: %q, expected .txt", ErrUnsupportedFile, ext)
	}
	text, err := textproc.DecodeUTF8(data)
	if err != nil {
		return "", ErrInvalidEncoding
	}
	return text, nil
}

func checkAudioFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !audioExtensions[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	return nil
}
