package sentiment

import (
	"math"
	"strings"
	"sync"
	"testing"
)

func TestLexicon_LoadsEmbeddedLexicon(t *testing.T) {
	a := Lexicon()
	if a == nil {
		t.Fatal("Expected lexicon analyzer, got nil")
	}
	if a.Size() == 0 {
		t.Error("Expected embedded lexicon to have entries")
	}
	if v, ok := a.Valence("LOVE"); !ok || v <= 0 {
		t.Errorf("Expected positive valence for 'love', got %v (found=%v)", v, ok)
	}
}

func TestNewLexicon_IsIndependent(t *testing.T) {
	a, err := NewLexicon()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if a == Lexicon() {
		t.Error("Expected NewLexicon to build a fresh analyzer")
	}
	if a.Size() != Lexicon().Size() {
		t.Errorf("Expected same lexicon size, got %d and %d", a.Size(), Lexicon().Size())
	}
}

func TestLexicon_IsSingleton(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*LexiconAnalyzer, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Lexicon()
		}(i)
	}
	wg.Wait()

	for i, a := range results {
		if a != results[0] {
			t.Errorf("Expected the same analyzer instance at %d", i)
		}
	}
}

func TestPolarityScores_Empty(t *testing.T) {
	scores := Lexicon().PolarityScores("")
	if scores != (Scores{}) {
		t.Errorf("Expected zero scores for empty text, got %+v", scores)
	}

	scores = Lexicon().PolarityScores("... !!")
	if scores.Compound != 0 {
		t.Errorf("Expected compound 0 for punctuation-only text, got %f", scores.Compound)
	}
}

func TestPolarityScores_Polarity(t *testing.T) {
	a := Lexicon()

	tests := []struct {
		name     string
		text     string
		positive bool
	}{
		{"positive", "i love painting and my friends are wonderful", true},
		{"negative", "this was a terrible and awful day", false},
		{"negated positive", "i do not love this", false},
		{"contraction negation", "i don't like it", false},
		{"contrast", "the food was good but the service was terrible", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := a.PolarityScores(tt.text).Compound
			if tt.positive && c <= 0 {
				t.Errorf("Expected positive compound for %q, got %f", tt.text, c)
			}
			if !tt.positive && c >= 0 {
				t.Errorf("Expected negative compound for %q, got %f", tt.text, c)
			}
		})
	}
}

func TestPolarityScores_SingleWord(t *testing.T) {
	// love = 3.2, compound = 3.2 / sqrt(3.2^2 + 15)
	expected := math.Round(3.2/math.Sqrt(3.2*3.2+15)*1e4) / 1e4
	got := Lexicon().PolarityScores("i love painting").Compound
	if got != expected {
		t.Errorf("Expected compound %.4f, got %.4f", expected, got)
	}
}

func TestPolarityScores_Modifiers(t *testing.T) {
	a := Lexicon()
	base := a.PolarityScores("it is good").Compound

	if boosted := a.PolarityScores("it is very good").Compound; boosted <= base {
		t.Errorf("Expected booster to raise compound above %f, got %f", base, boosted)
	}
	if damped := a.PolarityScores("it is slightly good").Compound; damped >= base {
		t.Errorf("Expected dampener to lower compound below %f, got %f", base, damped)
	}
	if excl := a.PolarityScores("it is good!!").Compound; excl <= base {
		t.Errorf("Expected exclamation emphasis to raise compound above %f, got %f", base, excl)
	}
	if shout := a.PolarityScores("it is GOOD").Compound; shout <= base {
		t.Errorf("Expected caps emphasis to raise compound above %f, got %f", base, shout)
	}
	if kindOf := a.PolarityScores("it is kind of fun").Compound; kindOf <= 0 {
		t.Errorf("Expected 'kind of' to be neutral and 'fun' positive, got %f", kindOf)
	}
}

func TestPolarityScores_Bounds(t *testing.T) {
	text := strings.Repeat("amazing wonderful love ", 50) + "!!!!!"
	s := Lexicon().PolarityScores(text)
	if s.Compound > 1 || s.Compound < -1 {
		t.Errorf("Expected compound within [-1, 1], got %f", s.Compound)
	}
	sum := s.Positive + s.Negative + s.Neutral
	if math.Abs(sum-1) > 0.001 {
		t.Errorf("Expected proportions to sum to 1, got %f", sum)
	}
}

func TestNewFromReader(t *testing.T) {
	a, err := NewFromReader(strings.NewReader("# comment\n\nHappy\t2.7\nsad\t-2.1\n"))
	if err != nil {
		t.Fatalf("NewFromReader() failed: %v", err)
	}
	if a.Size() != 2 {
		t.Errorf("Expected 2 entries, got %d", a.Size())
	}
	if v, ok := a.Valence("happy"); !ok || v != 2.7 {
		t.Errorf("Expected 'happy' valence 2.7, got %v", v)
	}
}

func TestNewFromReader_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing valence", "happy\n"},
		{"bad number", "happy\tvery\n"},
		{"empty", "# only a comment\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFromReader(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
