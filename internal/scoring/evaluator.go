package scoring

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/lexiqai/intro-scorer/internal/sentiment"
	"github.com/lexiqai/intro-scorer/internal/textproc"
)

// CaseSource selects which text the grammar capitalization checks run on.
type CaseSource string

const (
	// CaseNormalized runs grammar checks on the lowercased, whitespace
	// collapsed text like every other criterion. Every fragment that starts
	// with a letter then counts as a capitalization error.
	CaseNormalized CaseSource = "normalized"
	// CaseOriginal runs grammar checks on the trimmed original transcript so
	// capitalization and double spaces are observable.
	CaseOriginal CaseSource = "original"
)

// ParseCaseSource validates a configured grammar case source.
func ParseCaseSource(s string) (CaseSource, error) {
	switch cs := CaseSource(strings.ToLower(strings.TrimSpace(s))); cs {
	case CaseNormalized, CaseOriginal:
		return cs, nil
	case "":
		return CaseNormalized, nil
	}
	return "", fmt.Errorf("unknown grammar case source %q (want %q or %q)", s, CaseNormalized, CaseOriginal)
}

// ParseFillerMode validates a configured filler matching mode.
func ParseFillerMode(s string) (FillerMode, error) {
	switch m := FillerMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FillerToken, FillerPhrase:
		return m, nil
	case "":
		return FillerToken, nil
	}
	return "", fmt.Errorf("unknown filler mode %q (want %q or %q)", s, FillerToken, FillerPhrase)
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithAnalyzer replaces the default sentiment analyzer.
func WithAnalyzer(a sentiment.Analyzer) Option { return func(e *Evaluator) { e.analyzer = a } }

// WithCaseSource sets the text used for grammar checks.
func WithCaseSource(cs CaseSource) Option { return func(e *Evaluator) { e.caseSource = cs } }

// WithFillerMode sets how filler phrases are matched.
func WithFillerMode(m FillerMode) Option { return func(e *Evaluator) { e.fillerMode = m } }

// Evaluator runs every rubric criterion over a transcript. It holds no
// per-call state and is safe for concurrent use.
type Evaluator struct {
	analyzer   sentiment.Analyzer
	caseSource CaseSource
	fillerMode FillerMode
}

// NewEvaluator builds an Evaluator. Without options it reproduces the
// reference rubric: grammar on normalized text, single-word filler matching
// and the shared VADER analyzer.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		caseSource: CaseNormalized,
		fillerMode: FillerToken,
	}
	for _, o := range opts {
		o(e)
	}
	if e.analyzer == nil {
		e.analyzer = sentiment.Default()
	}
	return e
}

// Analyzer returns the sentiment analyzer the evaluator scores with.
func (e *Evaluator) Analyzer() sentiment.Analyzer { return e.analyzer }

var (
	defaultEvaluator     *Evaluator
	defaultEvaluatorOnce sync.Once
)

// Evaluate scores transcript with the default Evaluator.
func Evaluate(transcript string, durationSeconds float64) Result {
	defaultEvaluatorOnce.Do(func() { defaultEvaluator = NewEvaluator() })
	return defaultEvaluator.Evaluate(transcript, durationSeconds)
}

// Evaluate scores transcript spoken over durationSeconds.
func (e *Evaluator) Evaluate(transcript string, durationSeconds float64) Result {
	return e.Analyze(transcript, durationSeconds).Result
}

// Analyze scores transcript and also returns the raw measurements.
func (e *Evaluator) Analyze(transcript string, durationSeconds float64) Report {
	text := textproc.Normalize(transcript)

	grammarText := text
	if e.caseSource == CaseOriginal {
		grammarText = strings.TrimSpace(transcript)
	}

	var b Breakdown
	b.Salutation = ScoreSalutation(text)
	b.MustHave, b.GoodToHave = ScoreKeywords(text)
	b.Flow = ScoreFlow(text)
	b.WPM = ScoreWPM(text, durationSeconds)
	b.Grammar = ScoreGrammar(grammarText, text)
	b.TTR = ScoreTTR(text)
	b.Filler = scoreFiller(text, e.fillerMode)

	polarity := e.analyzer.PolarityScores(text)
	b.Sentiment = sentimentBand(polarity.Compound)

	total := min(b.Sum(), MaxScore)

	words := textproc.ExtractWords(text)
	return Report{
		Result: Result{
			OverallScore: math.Round(float64(total)*100) / 100,
			Details:      b,
		},
		Stats: Stats{
			WordCount:         textproc.CountWords(text),
			WordsPerMinute:    math.Round(WordsPerMinute(text, durationSeconds)*100) / 100,
			GrammarErrors:     GrammarErrors(grammarText),
			TypeTokenRatio:    math.Round(TypeTokenRatio(text)*1000) / 1000,
			FillerCount:       CountFillers(words, e.fillerMode),
			SentimentCompound: polarity.Compound,
		},
	}
}
