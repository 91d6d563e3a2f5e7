package stt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	restapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/lexiqai/intro-scorer/internal/config"
	"github.com/lexiqai/intro-scorer/internal/observability"
	"github.com/lexiqai/intro-scorer/internal/resilience"
)

// recognizeFunc performs one provider request for a buffered recording.
type recognizeFunc func(ctx context.Context, audio []byte, mimeType string) (*Transcript, error)

// DeepgramClient implements Transcriber using Deepgram's pre-recorded API
type DeepgramClient struct {
	recognize      recognizeFunc
	circuitBreaker *resilience.CircuitBreaker
	retry          *resilience.RetryConfig
	timeout        time.Duration
}

// NewDeepgramClient creates a Deepgram client, or returns ErrNotConfigured
// when no API key is set.
func NewDeepgramClient(cfg *config.Config) (*DeepgramClient, error) {
	if strings.TrimSpace(cfg.DeepgramAPIKey) == "" {
		return nil, ErrNotConfigured
	}

	c := listenClient.NewREST(cfg.DeepgramAPIKey, &interfaces.ClientOptions{})
	dg := restapi.New(c)

	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       cfg.DeepgramModel,
		Language:    cfg.DeepgramLanguage,
		Punctuate:   true,
		SmartFormat: true,
	}

	recognize := func(ctx context.Context, audio []byte, mimeType string) (*Transcript, error) {
		res, err := dg.FromStream(ctx, bytes.NewReader(audio), options)
		if err != nil {
			return nil, err
		}
		if res == nil || res.Results == nil || len(res.Results.Channels) == 0 ||
			len(res.Results.Channels[0].Alternatives) == 0 {
			return nil, ErrEmptyTranscript
		}

		alt := res.Results.Channels[0].Alternatives[0]
		t := &Transcript{
			Text:       alt.Transcript,
			Confidence: alt.Confidence,
		}
		if res.Metadata != nil {
			t.DurationSeconds = res.Metadata.Duration
		}
		return t, nil
	}

	return newClient(cfg, recognize), nil
}

func newClient(cfg *config.Config, recognize recognizeFunc) *DeepgramClient {
	circuitBreaker := resilience.NewCircuitBreaker(
		"deepgram",
		cfg.CircuitBreakerMaxFailures,
		time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second,
		resilience.WithStateChangeHook(func(name string, from, to resilience.CircuitState) {
			observability.UpdateCircuitBreakerState(name, int(to))
			logger := observability.GetLogger()
			logger.Warn().
				Str("service", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		}),
		resilience.WithFailureHook(observability.IncrementCircuitBreakerFailures),
	)

	return &DeepgramClient{
		recognize:      recognize,
		circuitBreaker: circuitBreaker,
		retry: &resilience.RetryConfig{
			MaxAttempts:       cfg.RetryMaxAttempts,
			InitialBackoff:    time.Duration(cfg.RetryInitialBackoff) * time.Millisecond,
			MaxBackoff:        5 * time.Second,
			BackoffMultiplier: 2.0,
			Jitter:            true,
		},
		timeout: time.Duration(cfg.STTTimeout) * time.Second,
	}
}

// Transcribe buffers the recording so it can be replayed on retry, then sends
// it through the circuit breaker.
func (d *DeepgramClient) Transcribe(ctx context.Context, audio io.Reader, mimeType string) (*Transcript, error) {
	logger := observability.FromContext(ctx)

	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyTranscript
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var transcript *Transcript
	err = resilience.Retry(ctx, func(ctx context.Context) error {
		return d.circuitBreaker.Call(func() error {
			t, err := d.recognize(ctx, data, mimeType)
			if err != nil {
				return err
			}
			transcript = t
			return nil
		})
	}, d.retry, resilience.IsRetryableNetworkError)
	if err != nil {
		logger.Error().Err(err).Int("audio_bytes", len(data)).Msg("Deepgram transcription failed")
		return nil, fmt.Errorf("deepgram transcription: %w", err)
	}

	transcript.Text = strings.TrimSpace(transcript.Text)
	if transcript.Text == "" {
		return nil, ErrEmptyTranscript
	}

	logger.Debug().
		Int("audio_bytes", len(data)).
		Float64("duration_seconds", transcript.DurationSeconds).
		Float64("confidence", transcript.Confidence).
		Msg("Transcription complete")
	return transcript, nil
}

// Ready reports false while the circuit breaker is open.
func (d *DeepgramClient) Ready(ctx context.Context) (bool, error) {
	if state := d.circuitBreaker.GetState(); state == resilience.StateOpen {
		return false, fmt.Errorf("deepgram circuit breaker is %s", state)
	}
	return true, nil
}
