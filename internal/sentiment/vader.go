package sentiment

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// Engine names accepted by NewEngine.
const (
	EngineVADER   = "vader"
	EngineLexicon = "lexicon"
)

// VADERAnalyzer adapts the full VADER lexicon and rule set from govader.
type VADERAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

var (
	defaultAnalyzer *VADERAnalyzer
	defaultOnce     sync.Once
)

// Default returns the process-wide VADER analyzer, loading it on first use.
func Default() *VADERAnalyzer {
	defaultOnce.Do(func() {
		defaultAnalyzer = NewVADER()
	})
	return defaultAnalyzer
}

// NewVADER loads govader's bundled lexicon.
func NewVADER() *VADERAnalyzer {
	return &VADERAnalyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// PolarityScores implements Analyzer.
func (v *VADERAnalyzer) PolarityScores(text string) Scores {
	s := v.sia.PolarityScores(text)
	return Scores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}

// NewEngine returns the analyzer for a configured engine name. An empty name
// selects VADER.
func NewEngine(name string) (Analyzer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EngineVADER, "":
		return Default(), nil
	case EngineLexicon:
		return Lexicon(), nil
	}
	return nil, fmt.Errorf("unknown sentiment engine %q (want %q or %q)", name, EngineVADER, EngineLexicon)
}

// Check reports whether an analyzer is usable by scoring a known-positive
// phrase.
func Check(a Analyzer) error {
	if a == nil {
		return fmt.Errorf("no sentiment analyzer configured")
	}
	if c := a.PolarityScores("good").Compound; c <= 0 {
		return fmt.Errorf("sentiment analyzer scored %q as %v", "good", c)
	}
	return nil
}
