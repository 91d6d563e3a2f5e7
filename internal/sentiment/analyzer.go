// Package sentiment produces VADER polarity scores for transcripts. The
// default engine is the full VADER rule set from govader; a compact embedded
// lexicon engine is available as an alternative. Analyzers are immutable once
// loaded and safe for concurrent use.
package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

//go:embed lexicon.tsv
var embeddedLexicon string

const (
	boostIncrement = 0.293
	boostDecrement = -0.293
	capsIncrement  = 0.733
	negationScalar = -0.74
	normalizeAlpha = 15.0
)

// Scores is the polarity breakdown for one text. Compound is in [-1, 1];
// the three proportions sum to roughly 1 for any non-empty text.
type Scores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Analyzer produces polarity scores for a piece of text.
type Analyzer interface {
	PolarityScores(text string) Scores
}

// LexiconAnalyzer scores text against a word-valence lexicon.
type LexiconAnalyzer struct {
	valence map[string]float64
}

var (
	lexiconAnalyzer *LexiconAnalyzer
	lexiconOnce     sync.Once
)

// Lexicon returns the process-wide lexicon analyzer, loading the embedded
// lexicon on first use.
func Lexicon() *LexiconAnalyzer {
	lexiconOnce.Do(func() {
		a, err := NewLexicon()
		if err != nil {
			panic(fmt.Sprintf("sentiment: embedded lexicon is invalid: %v", err))
		}
		lexiconAnalyzer = a
	})
	return lexiconAnalyzer
}

// NewLexicon builds a fresh analyzer over the embedded lexicon.
func NewLexicon() (*LexiconAnalyzer, error) {
	return NewFromReader(strings.NewReader(embeddedLexicon))
}

// NewFromReader builds an analyzer from tab-separated "word<TAB>valence" lines.
// Blank lines and lines starting with '#' are ignored.
func NewFromReader(r io.Reader) (*LexiconAnalyzer, error) {
	valence := make(map[string]float64)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected word and valence", line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid valence: %w", line, err)
		}
		valence[strings.ToLower(strings.TrimSpace(fields[0]))] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	if len(valence) == 0 {
		return nil, fmt.Errorf("lexicon is empty")
	}
	return &LexiconAnalyzer{valence: valence}, nil
}

// Size returns the number of lexicon entries.
func (a *LexiconAnalyzer) Size() int {
	return len(a.valence)
}

// Valence returns the lexicon valence of a single word.
func (a *LexiconAnalyzer) Valence(word string) (float64, bool) {
	v, ok := a.valence[strings.ToLower(word)]
	return v, ok
}

// PolarityScores analyzes text and returns its polarity breakdown.
func (a *LexiconAnalyzer) PolarityScores(text string) Scores {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Scores{}
	}
	lower := make([]string, len(tokens))
	for i, t := range tokens {
		lower[i] = strings.ToLower(t)
	}
	capDiff := hasCapDifferential(tokens)

	sentiments := make([]float64, 0, len(tokens))
	for i := range tokens {
		if _, ok := boosters[lower[i]]; ok {
			sentiments = append(sentiments, 0)
			continue
		}
		if lower[i] == "kind" && i+1 < len(lower) && lower[i+1] == "of" {
			sentiments = append(sentiments, 0)
			continue
		}
		sentiments = append(sentiments, a.valenceAt(tokens, lower, i, capDiff))
	}

	applyContrast(lower, sentiments)
	return scoreValence(sentiments, text)
}

func (a *LexiconAnalyzer) valenceAt(tokens, lower []string, i int, capDiff bool) float64 {
	valence, ok := a.valence[lower[i]]
	if !ok {
		return 0
	}
	if capDiff && isAllCaps(tokens[i]) {
		if valence > 0 {
			valence += capsIncrement
		} else {
			valence -= capsIncrement
		}
	}

	for dist := 0; dist < 3; dist++ {
		j := i - (dist + 1)
		if j < 0 {
			break
		}
		if _, inLexicon := a.valence[lower[j]]; inLexicon {
			continue
		}
		s := boostScalar(tokens[j], lower[j], valence, capDiff)
		switch dist {
		case 1:
			s *= 0.95
		case 2:
			s *= 0.9
		}
		valence += s
		valence = negationAdjust(valence, lower, dist, i)
	}
	return valence
}

func boostScalar(token, lower string, valence float64, capDiff bool) float64 {
	b, ok := boosters[lower]
	if !ok {
		return 0
	}
	scalar := b
	if valence < 0 {
		scalar = -scalar
	}
	if capDiff && isAllCaps(token) {
		if valence > 0 {
			scalar += capsIncrement
		} else {
			scalar -= capsIncrement
		}
	}
	return scalar
}

func negationAdjust(valence float64, lower []string, dist, i int) float64 {
	switch dist {
	case 0:
		if isNegated(lower[i-1]) {
			return valence * negationScalar
		}
	case 1:
		switch {
		case lower[i-2] == "never" && (lower[i-1] == "so" || lower[i-1] == "this"):
			return valence * 1.25
		case lower[i-2] == "without" && lower[i-1] == "doubt":
			return valence
		case isNegated(lower[i-2]):
			return valence * negationScalar
		}
	case 2:
		switch {
		case lower[i-3] == "never" &&
			(lower[i-2] == "so" || lower[i-2] == "this" || lower[i-1] == "so" || lower[i-1] == "this"):
			return valence * 1.25
		case lower[i-3] == "without" && (lower[i-2] == "doubt" || lower[i-1] == "doubt"):
			return valence
		case isNegated(lower[i-3]):
			return valence * negationScalar
		}
	}
	return valence
}

// applyContrast dampens sentiment before "but" and amplifies it after.
func applyContrast(lower []string, sentiments []float64) {
	idx := -1
	for i, w := range lower {
		if w == "but" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for i := range sentiments {
		switch {
		case i < idx:
			sentiments[i] *= 0.5
		case i > idx:
			sentiments[i] *= 1.5
		}
	}
}

func scoreValence(sentiments []float64, text string) Scores {
	var sum float64
	for _, s := range sentiments {
		sum += s
	}
	emphasis := punctuationEmphasis(text)
	if sum > 0 {
		sum += emphasis
	} else if sum < 0 {
		sum -= emphasis
	}

	var pos, neg, neu float64
	for _, s := range sentiments {
		switch {
		case s > 0:
			pos += s + 1
		case s < 0:
			neg += s - 1
		default:
			neu++
		}
	}
	if pos > math.Abs(neg) {
		pos += emphasis
	} else if pos < math.Abs(neg) {
		neg -= emphasis
	}

	scores := Scores{Compound: round4(normalize(sum))}
	total := pos + math.Abs(neg) + neu
	if total > 0 {
		scores.Positive = round4(pos / total)
		scores.Negative = round4(math.Abs(neg) / total)
		scores.Neutral = round4(neu / total)
	}
	return scores
}

func punctuationEmphasis(text string) float64 {
	ep := strings.Count(text, "!")
	if ep > 4 {
		ep = 4
	}
	emphasis := float64(ep) * 0.292

	qm := strings.Count(text, "?")
	if qm > 1 {
		if qm <= 3 {
			emphasis += float64(qm) * 0.18
		} else {
			emphasis += 0.96
		}
	}
	return emphasis
}

func normalize(score float64) float64 {
	n := score / math.Sqrt(score*score+normalizeAlpha)
	switch {
	case n < -1:
		return -1
	case n > 1:
		return 1
	}
	return n
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.TrimFunc(f, unicode.IsPunct)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isNegated(word string) bool {
	if _, ok := negations[word]; ok {
		return true
	}
	return strings.Contains(word, "n't")
}

func isAllCaps(token string) bool {
	hasLetter := false
	for _, r := range token {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// hasCapDifferential is true when some but not all tokens are shouted.
func hasCapDifferential(tokens []string) bool {
	caps := 0
	for _, t := range tokens {
		if isAllCaps(t) {
			caps++
		}
	}
	return caps > 0 && caps < len(tokens)
}

var negations = map[string]struct{}{
	"aint": {}, "arent": {}, "cannot": {}, "cant": {}, "couldnt": {}, "darent": {},
	"didnt": {}, "doesnt": {}, "dont": {}, "hadnt": {}, "hasnt": {}, "havent": {},
	"isnt": {}, "mightnt": {}, "mustnt": {}, "neither": {}, "never": {}, "none": {},
	"nope": {}, "nor": {}, "not": {}, "nothing": {}, "nowhere": {}, "shouldnt": {},
	"wasnt": {}, "werent": {}, "without": {}, "wont": {}, "wouldnt": {}, "rarely": {},
	"seldom": {}, "despite": {}, "uhuh": {}, "no": {},
}

var boosters = map[string]float64{
	"absolutely": boostIncrement, "amazingly": boostIncrement, "completely": boostIncrement,
	"considerably": boostIncrement, "deeply": boostIncrement, "especially": boostIncrement,
	"extremely": boostIncrement, "fully": boostIncrement, "greatly": boostIncrement,
	"highly": boostIncrement, "hugely": boostIncrement, "incredibly": boostIncrement,
	"more": boostIncrement, "most": boostIncrement, "particularly": boostIncrement,
	"purely": boostIncrement, "quite": boostIncrement, "really": boostIncrement,
	"remarkably": boostIncrement, "so": boostIncrement, "substantially": boostIncrement,
	"thoroughly": boostIncrement, "totally": boostIncrement, "tremendously": boostIncrement,
	"truly": boostIncrement, "unbelievably": boostIncrement, "very": boostIncrement,

	"almost": boostDecrement, "barely": boostDecrement, "hardly": boostDecrement,
	"kinda": boostDecrement, "less": boostDecrement, "little": boostDecrement,
	"marginally": boostDecrement, "occasionally": boostDecrement, "partly": boostDecrement,
	"scarcely": boostDecrement, "slightly": boostDecrement, "somewhat": boostDecrement,
	"sorta": boostDecrement,
}
