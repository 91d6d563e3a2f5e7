package stt

import (
	"context"
	"errors"
	"io"
)

// ErrNotConfigured is returned when audio evaluation is requested but no
// speech-to-text provider has been set up.
var ErrNotConfigured = errors.New("speech-to-text is not configured")

// ErrEmptyTranscript is returned when the provider heard no speech.
var ErrEmptyTranscript = errors.New("no speech recognized in audio")

// Transcript is the text recognized from one recording
type Transcript struct {
	Text string

	// DurationSeconds is the recording length reported by the provider,
	// zero when unknown.
	DurationSeconds float64

	// Confidence is the provider's confidence (0.0 to 1.0) if available
	Confidence float64
}

// Transcriber turns a complete recording into text
type Transcriber interface {
	// Transcribe reads audio until EOF. mimeType may be empty.
	Transcribe(ctx context.Context, audio io.Reader, mimeType string) (*Transcript, error)

	// Ready reports whether the provider can currently accept requests
	Ready(ctx context.Context) (bool, error)
}
