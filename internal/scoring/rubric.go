// Package scoring evaluates a spoken-introduction transcript against a fixed
// rubric. Each criterion is a pure function of the normalized transcript (and,
// for speaking pace, the audio duration); the Evaluator sums them into an
// overall score out of MaxScore.
package scoring

// MaxScore is the ceiling applied to the summed sub-scores.
const MaxScore = 100

// Criterion keys, as serialized in Breakdown.
const (
	KeySalutation = "salutation"
	KeyMustHave   = "keyword_must_have"
	KeyGoodToHave = "keyword_good_to_have"
	KeyFlow       = "flow_structure"
	KeyWPM        = "wpm_score"
	KeyGrammar    = "grammar_score"
	KeyTTR        = "ttr_score"
	KeyFiller     = "filler_score"
	KeySentiment  = "sentiment_score"
)

// Criterion describes one rubric line for display.
type Criterion struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Group string `json:"group" yaml:"group"`
	Min   int    `json:"min" yaml:"min"`
	Max   int    `json:"max" yaml:"max"`
}

// Rubric groups, in display order.
const (
	GroupContent  = "Content & Structure"
	GroupLanguage = "Language & Delivery"
	GroupClarity  = "Clarity & Engagement"
)

var criteria = []Criterion{
	{KeySalutation, "Salutation", GroupContent, 0, 5},
	{KeyMustHave, "Must-Have Keywords", GroupContent, 0, 20},
	{KeyGoodToHave, "Good-to-Have Keywords", GroupContent, 0, 10},
	{KeyFlow, "Flow Structure", GroupContent, 0, 5},
	{KeyWPM, "WPM Score", GroupLanguage, 2, 10},
	{KeyGrammar, "Grammar Score", GroupLanguage, 2, 10},
	{KeyTTR, "Vocabulary (TTR)", GroupLanguage, 0, 10},
	{KeyFiller, "Filler Word Score", GroupClarity, 3, 15},
	{KeySentiment, "Sentiment Score", GroupClarity, 3, 15},
}

// Criteria returns the rubric in display order. The returned slice is a copy.
func Criteria() []Criterion {
	out := make([]Criterion, len(criteria))
	copy(out, criteria)
	return out
}

// Breakdown holds the nine sub-scores.
type Breakdown struct {
	Salutation int `json:"salutation" yaml:"salutation"`
	MustHave   int `json:"keyword_must_have" yaml:"keyword_must_have"`
	GoodToHave int `json:"keyword_good_to_have" yaml:"keyword_good_to_have"`
	Flow       int `json:"flow_structure" yaml:"flow_structure"`
	WPM        int `json:"wpm_score" yaml:"wpm_score"`
	Grammar    int `json:"grammar_score" yaml:"grammar_score"`
	TTR        int `json:"ttr_score" yaml:"ttr_score"`
	Filler     int `json:"filler_score" yaml:"filler_score"`
	Sentiment  int `json:"sentiment_score" yaml:"sentiment_score"`
}

// Sum adds every sub-score without clamping.
func (b Breakdown) Sum() int {
	return b.Salutation + b.MustHave + b.GoodToHave + b.Flow + b.WPM +
		b.Grammar + b.TTR + b.Filler + b.Sentiment
}

// ByKey returns the sub-scores keyed by criterion key.
func (b Breakdown) ByKey() map[string]int {
	return map[string]int{
		KeySalutation: b.Salutation,
		KeyMustHave:   b.MustHave,
		KeyGoodToHave: b.GoodToHave,
		KeyFlow:       b.Flow,
		KeyWPM:        b.WPM,
		KeyGrammar:    b.Grammar,
		KeyTTR:        b.TTR,
		KeyFiller:     b.Filler,
		KeySentiment:  b.Sentiment,
	}
}

// Result is the outcome of one evaluation.
type Result struct {
	OverallScore float64   `json:"overall_score" yaml:"overall_score"`
	Details      Breakdown `json:"details" yaml:"details"`
}

// Stats are the raw measurements behind the sub-scores, useful as feedback.
type Stats struct {
	WordCount         int     `json:"word_count" yaml:"word_count"`
	WordsPerMinute    float64 `json:"words_per_minute" yaml:"words_per_minute"`
	GrammarErrors     int     `json:"grammar_errors" yaml:"grammar_errors"`
	TypeTokenRatio    float64 `json:"type_token_ratio" yaml:"type_token_ratio"`
	FillerCount       int     `json:"filler_count" yaml:"filler_count"`
	SentimentCompound float64 `json:"sentiment_compound" yaml:"sentiment_compound"`
}

// Report pairs a Result with the measurements that produced it.
type Report struct {
	Result `yaml:",inline"`
	Stats  Stats `json:"stats" yaml:"stats"`
}
