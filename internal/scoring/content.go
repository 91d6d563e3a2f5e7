package scoring

import (
	"strings"

	"github.com/lexiqai/intro-scorer/internal/textproc"
)

var (
	enthusiasticGreetings = []string{"i am excited", "feeling great"}
	formalGreetings       = []string{"good morning", "good afternoon", "good evening", "good day", "hello everyone"}
	casualGreetings       = []string{"hi", "hello"}
)

// MustHaveKeywords earn 4 points each, capped at 20.
var MustHaveKeywords = []string{
	"name", "my name is", "i am", "age", "years old",
	"class", "studying in", "school",
	"family", "live with", "family members",
	"hobby", "hobbies", "interests", "free time",
}

// GoodToHaveKeywords earn 2 points each, capped at 10.
var GoodToHaveKeywords = []string{
	"i am from", "origin", "hometown",
	"ambition", "goal", "dream",
	"fun fact", "unique",
	"strength", "achievement",
}

const (
	mustHavePoints = 4
	mustHaveMax    = 20
	goodPoints     = 2
	goodMax        = 10
)

// Flow cues. All four groups must be present for the flow points.
var (
	flowGreetingCues = []string{"hi", "hello", "good morning", "good afternoon", "good evening"}
	flowBasicCues    = []string{"name", "class", "age", "school"}
	flowExtraCues    = []string{"hobby", "interest", "goal", "fun fact", "unique"}
	flowClosingCue   = "thank you"
)

// ScoreSalutation grades the opening greeting of normalized text. Categories
// overlap, so they are checked from the highest score down.
func ScoreSalutation(text string) int {
	switch {
	case textproc.ContainsAny(text, enthusiasticGreetings):
		return 5
	case textproc.ContainsAny(text, formalGreetings):
		return 4
	case textproc.ContainsAny(text, casualGreetings):
		return 2
	}
	return 0
}

// ScoreKeywords returns the must-have and good-to-have keyword scores.
// Phrases match by plain substring containment, so overlapping phrases
// ("i am" inside "i am from") each score.
func ScoreKeywords(text string) (mustHave, goodToHave int) {
	mustHave = min(countPresent(text, MustHaveKeywords)*mustHavePoints, mustHaveMax)
	goodToHave = min(countPresent(text, GoodToHaveKeywords)*goodPoints, goodMax)
	return mustHave, goodToHave
}

// ScoreFlow awards 5 points only when a greeting, a basic identity detail, an
// extra personal detail and the closing "thank you" all appear.
func ScoreFlow(text string) int {
	if textproc.ContainsAny(text, flowGreetingCues) &&
		textproc.ContainsAny(text, flowBasicCues) &&
		textproc.ContainsAny(text, flowExtraCues) &&
		strings.Contains(text, flowClosingCue) {
		return 5
	}
	return 0
}

func countPresent(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}
