package sentiment

import (
	"testing"

	"github.com/jonreiter/govader"
)

const gloomyIntro = "Hi, I am Ravi. School is awful and my days are miserable and lonely. Thank you."

func TestVADER_Polarity(t *testing.T) {
	v := NewVADER()

	if got := v.PolarityScores("I love painting and I am very happy").Compound; got <= 0.5 {
		t.Errorf("Expected strongly positive compound, got %v", got)
	}
	if got := v.PolarityScores("This is terrible and I hate it").Compound; got >= 0 {
		t.Errorf("Expected negative compound, got %v", got)
	}
	if got := v.PolarityScores("").Compound; got != 0 {
		t.Errorf("Expected 0 compound for empty text, got %v", got)
	}
}

func TestDefault_MatchesGovader(t *testing.T) {
	reference := govader.NewSentimentIntensityAnalyzer()
	texts := []string{
		gloomyIntro,
		"Hello, my name is Asha. I am 10 years old and I study in class 5. I love painting. Thank you.",
		"I am NOT happy, but the school is kind of great!!",
		"",
	}

	for _, text := range texts {
		want := reference.PolarityScores(text)
		got := Default().PolarityScores(text)
		if got.Compound != want.Compound || got.Positive != want.Positive ||
			got.Negative != want.Negative || got.Neutral != want.Neutral {
			t.Errorf("PolarityScores(%q): expected %+v, got %+v", text, want, got)
		}
	}

	if got := Default().PolarityScores(gloomyIntro).Compound; got > -0.5 {
		t.Errorf("Expected strongly negative compound for gloomy intro, got %v", got)
	}
}

func TestDefault_IsShared(t *testing.T) {
	if Default() != Default() {
		t.Error("Expected Default to return the same analyzer")
	}
	if NewVADER() == Default() {
		t.Error("Expected NewVADER to build a fresh analyzer")
	}
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		expected Analyzer
		wantErr  bool
	}{
		{"", Default(), false},
		{" VADER ", Default(), false},
		{"lexicon", Lexicon(), false},
		{"textblob", nil, true},
	}

	for _, tt := range tests {
		a, err := NewEngine(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewEngine(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewEngine(%q): expected no error, got %v", tt.name, err)
			continue
		}
		if a != tt.expected {
			t.Errorf("NewEngine(%q): expected %T, got %T", tt.name, tt.expected, a)
		}
	}
}

type flatAnalyzer struct{}

func (flatAnalyzer) PolarityScores(string) Scores { return Scores{Neutral: 1} }

func TestCheck(t *testing.T) {
	if err := Check(Default()); err != nil {
		t.Errorf("Expected VADER to pass, got %v", err)
	}
	if err := Check(Lexicon()); err != nil {
		t.Errorf("Expected lexicon to pass, got %v", err)
	}
	if err := Check(flatAnalyzer{}); err == nil {
		t.Error("Expected error for an analyzer that scores everything neutral")
	}
	if err := Check(nil); err == nil {
		t.Error("Expected error for a nil analyzer")
	}
}
