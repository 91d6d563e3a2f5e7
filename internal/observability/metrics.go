package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServiceName labels logs, health responses and metric namespaces.
const ServiceName = "intro-scorer"

// Evaluation sources.
const (
	SourceJSON   = "json"
	SourceUpload = "upload"
	SourceAudio  = "audio"
	SourceStream = "stream"
)

var (
	// Evaluation metrics
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intro_scorer_evaluations_total",
		Help: "Total number of transcript evaluations",
	}, []string{"source", "outcome"}) // outcome: "success" or "rejected"

	evaluationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intro_scorer_evaluation_latency_seconds",
		Help:    "Time spent scoring a transcript in seconds",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"source"})

	overallScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "intro_scorer_overall_score",
		Help:    "Distribution of overall scores",
		Buckets: prometheus.LinearBuckets(10, 10, 10),
	})

	criterionScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intro_scorer_criterion_score",
		Help:    "Distribution of per-criterion scores",
		Buckets: []float64{0, 2, 4, 6, 8, 10, 12, 15, 20},
	}, []string{"criterion"})

	transcriptWords = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "intro_scorer_transcript_words",
		Help:    "Number of words in evaluated transcripts",
		Buckets: []float64{10, 25, 50, 100, 150, 200, 300, 500},
	})

	// STT metrics
	transcriptionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intro_scorer_transcription_requests_total",
		Help: "Total number of speech-to-text requests",
	}, []string{"status"})

	transcriptionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "intro_scorer_transcription_latency_seconds",
		Help:    "Speech-to-text latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	audioBytesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intro_scorer_audio_bytes_total",
		Help: "Total uploaded audio bytes processed",
	})

	// Stream metrics
	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intro_scorer_active_streams",
		Help: "Number of open live scoring streams",
	})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intro_scorer_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "intro_scorer_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intro_scorer_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

// Metrics tracks metrics for a single evaluation request
type Metrics struct {
	source       string
	startTime    time.Time
	sttStartTime time.Time
	mu           sync.Mutex
}

// NewEvaluationMetrics creates a metrics tracker for one evaluation
func NewEvaluationMetrics(source string) *Metrics {
	return &Metrics{
		source:    source,
		startTime: time.Now(),
	}
}

// RecordEvaluation records a completed evaluation. scores maps criterion keys
// to their points.
func (m *Metrics) RecordEvaluation(overall float64, scores map[string]int, words int) {
	evaluationLatency.WithLabelValues(m.source).Observe(time.Since(m.startTime).Seconds())
	evaluationsTotal.WithLabelValues(m.source, "success").Inc()
	overallScore.Observe(overall)
	transcriptWords.Observe(float64(words))
	for key, v := range scores {
		criterionScore.WithLabelValues(key).Observe(float64(v))
	}
}

// RecordRejected records an evaluation refused by input validation
func (m *Metrics) RecordRejected() {
	evaluationsTotal.WithLabelValues(m.source, "rejected").Inc()
}

// RecordSTTStart records the start of STT processing
func (m *Metrics) RecordSTTStart() {
	m.mu.Lock()
	m.sttStartTime = time.Now()
	m.mu.Unlock()
}

// RecordSTTEnd records the end of STT processing
func (m *Metrics) RecordSTTEnd(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.sttStartTime.IsZero() {
		transcriptionLatency.Observe(time.Since(m.sttStartTime).Seconds())
	}

	status := "success"
	if !success {
		status = "error"
	}
	transcriptionRequests.WithLabelValues(status).Inc()
}

// RecordError records an error
func (m *Metrics) RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordAudioBytes records uploaded audio bytes
func (m *Metrics) RecordAudioBytes(bytes int64) {
	audioBytesProcessed.Add(float64(bytes))
}

// StreamOpened and StreamClosed track live websocket sessions.
func StreamOpened() { activeStreams.Inc() }

func StreamClosed() { activeStreams.Dec() }

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
