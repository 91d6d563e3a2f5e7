package scoring

import (
	"strings"

	"github.com/lexiqai/intro-scorer/internal/sentiment"
	"github.com/lexiqai/intro-scorer/internal/textproc"
)

// Fillers is the disfluency vocabulary. Multi-word entries only count in
// FillerPhrase mode.
var Fillers = []string{
	"um", "uh", "like", "you know", "basically", "actually", "hmm",
	"sort of", "i mean", "kinda", "kind of", "well",
}

// FillerMode selects how Fillers are matched against the transcript.
type FillerMode string

const (
	// FillerToken tests each extracted word for membership in Fillers.
	// Multi-word entries can never equal a single word and so never match.
	FillerToken FillerMode = "token"
	// FillerPhrase also matches multi-word entries as consecutive words.
	FillerPhrase FillerMode = "phrase"
)

var fillerSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Fillers))
	for _, f := range Fillers {
		set[f] = struct{}{}
	}
	return set
}()

// CountFillers counts filler occurrences among words.
func CountFillers(words []string, mode FillerMode) int {
	n := 0
	for _, w := range words {
		if _, ok := fillerSet[w]; ok {
			n++
		}
	}
	if mode != FillerPhrase {
		return n
	}
	for _, f := range Fillers {
		phrase := strings.Fields(f)
		if len(phrase) < 2 {
			continue
		}
		n += countSequence(words, phrase)
	}
	return n
}

func countSequence(words, seq []string) int {
	n := 0
	for i := 0; i+len(seq) <= len(words); i++ {
		match := true
		for j := range seq {
			if words[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			n++
			i += len(seq) - 1
		}
	}
	return n
}

// ScoreFiller grades the filler rate per 100 words using single-word matching.
// Zero words scores 0, below the usual floor of 3.
func ScoreFiller(text string) int {
	return scoreFiller(text, FillerToken)
}

// ScoreFillerPhrases is ScoreFiller with multi-word fillers matched as phrases.
func ScoreFillerPhrases(text string) int {
	return scoreFiller(text, FillerPhrase)
}

func scoreFiller(text string, mode FillerMode) int {
	words := textproc.ExtractWords(text)
	if len(words) == 0 {
		return 0
	}
	return fillerBand(float64(CountFillers(words, mode)) * 100 / float64(len(words)))
}

func fillerBand(rate float64) int {
	switch {
	case rate <= 3:
		return 15
	case rate <= 6:
		return 12
	case rate <= 9:
		return 9
	case rate <= 12:
		return 6
	}
	return 3
}

// ScoreSentiment rescales the analyzer's compound score from [-1, 1] to
// [0, 1] and grades it.
func ScoreSentiment(text string, analyzer sentiment.Analyzer) int {
	return sentimentBand(analyzer.PolarityScores(text).Compound)
}

func sentimentBand(compound float64) int {
	s := (compound + 1) / 2
	switch {
	case s >= 0.70:
		return 15
	case s >= 0.55:
		return 12
	case s >= 0.40:
		return 9
	case s >= 0.25:
		return 6
	}
	return 3
}
