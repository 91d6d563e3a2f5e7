package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lexiqai/intro-scorer/internal/textproc"
)

// wpmFallbackScore is returned when the duration is missing or non-positive.
const wpmFallbackScore = 2

// WordsPerMinute returns the speaking pace, or 0 when durationSeconds <= 0.
func WordsPerMinute(text string, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return float64(textproc.CountWords(text)) * 60 / durationSeconds
}

// ScoreWPM grades the speaking pace of normalized text spoken over
// durationSeconds. The 111-140 band is ideal; very fast or very slow speech
// gets the minimum.
func ScoreWPM(text string, durationSeconds float64) int {
	if durationSeconds <= 0 {
		return wpmFallbackScore
	}
	return wpmBand(WordsPerMinute(text, durationSeconds))
}

// wpmBand checks the bands in order. Rates that fall between two listed
// bounds (for example 160.5) are not in any closed band and score 2.
func wpmBand(wpm float64) int {
	switch {
	case wpm > 161:
		return 2
	case wpm >= 141 && wpm <= 160:
		return 6
	case wpm >= 111 && wpm <= 140:
		return 10
	case wpm >= 81 && wpm <= 110:
		return 6
	}
	return 2
}

// GrammarErrors counts heuristic errors per sentence fragment: a fragment
// not starting with an uppercase letter, a double space, and an immediately
// repeated word each count once.
func GrammarErrors(text string) int {
	n := 0
	for _, s := range splitSentences(text) {
		if r, _ := utf8.DecodeRuneInString(s); !unicode.IsUpper(r) {
			n++
		}
		if strings.Contains(s, "  ") {
			n++
		}
		if textproc.HasRepeatedWord(s) {
			n++
		}
	}
	return n
}

// ScoreGrammar grades errors per 100 words. sentences is the text the
// fragment checks run on; words is the text whose word count is the
// denominator. Zero words scores 0.
func ScoreGrammar(sentences, words string) int {
	wc := textproc.CountWords(words)
	if wc == 0 {
		return 0
	}
	per100 := float64(GrammarErrors(sentences)) * 100 / float64(wc)
	switch {
	case per100 <= 5:
		return 10
	case per100 <= 10:
		return 8
	case per100 <= 20:
		return 6
	case per100 <= 35:
		return 4
	}
	return 2
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Transcripts longer than longTranscriptWords have their type-token ratio
// scaled by longTranscriptFactor.
const (
	longTranscriptWords  = 200
	longTranscriptFactor = 0.80
)

// TypeTokenRatio returns distinct/total alphabetic words, scaled down for
// long transcripts. Zero words yields 0.
func TypeTokenRatio(text string) float64 {
	words := textproc.ExtractWords(text)
	if len(words) == 0 {
		return 0
	}
	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		distinct[w] = struct{}{}
	}
	ratio := float64(len(distinct)) / float64(len(words))
	if len(words) > longTranscriptWords {
		ratio *= longTranscriptFactor
	}
	return ratio
}

// ScoreTTR grades vocabulary variety. Zero words scores 0.
func ScoreTTR(text string) int {
	if len(textproc.ExtractWords(text)) == 0 {
		return 0
	}
	ratio := TypeTokenRatio(text)
	switch {
	case ratio >= 0.9:
		return 10
	case ratio >= 0.7:
		return 8
	case ratio >= 0.5:
		return 6
	case ratio >= 0.3:
		return 4
	}
	return 2
}
