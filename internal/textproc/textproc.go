// Package textproc holds the text primitives shared by every rubric evaluator:
// normalization, word counting and word extraction.
package textproc

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// wordPattern matches a maximal run of word characters. Letters and digits are
// Unicode-aware so accented names count as one word.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Normalize trims the text, collapses every whitespace run (including
// newlines and tabs) to a single space and lowercases the result.
func Normalize(text string) string {
	return strings.ToLower(CollapseSpace(text))
}

// CollapseSpace trims and collapses whitespace like Normalize but keeps case.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CountWords counts maximal runs of word characters (letters, digits, underscore).
func CountWords(text string) int {
	return len(wordPattern.FindAllStringIndex(text, -1))
}

// ExtractWords returns, in order, the lowercased words made only of ASCII
// letters. A word containing a digit, underscore or non-ASCII letter is
// dropped as a whole rather than split.
func ExtractWords(text string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if isASCIIAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// Word is a token with its byte span in the source text.
type Word struct {
	Text       string
	Start, End int
}

// Words returns every word-character run with its position.
func Words(text string) []Word {
	idx := wordPattern.FindAllStringIndex(text, -1)
	out := make([]Word, 0, len(idx))
	for _, span := range idx {
		out = append(out, Word{Text: text[span[0]:span[1]], Start: span[0], End: span[1]})
	}
	return out
}

// HasRepeatedWord reports whether the same word appears twice in a row with
// only whitespace between the two occurrences ("the the"). Comparison is
// case-insensitive.
func HasRepeatedWord(text string) bool {
	lower := strings.ToLower(text)
	words := Words(lower)
	for i := 1; i < len(words); i++ {
		prev, cur := words[i-1], words[i]
		if prev.Text != cur.Text {
			continue
		}
		if isAllSpace(lower[prev.End:cur.Start]) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether text contains any of the phrases as a substring.
func ContainsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func isASCIIAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return s != ""
}

func isAllSpace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// ErrInvalidUTF8 is returned by DecodeUTF8 for bytes that are not UTF-8 text.
var ErrInvalidUTF8 = errors.New("text must be UTF-8")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeUTF8 strips a leading byte order mark and checks the rest is UTF-8.
func DecodeUTF8(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}
