package analyzer

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when text is not valid UTF-8. The HTTP
// layer reports request bodies with invalid bytes using the same error.
var ErrInvalidEncoding = errors.New("text is not valid UTF-8")

// textAnalyzer implements TextAnalyzer, WordCounter and CharacterCounter
type textAnalyzer struct{}

// NewTextAnalyzer creates a new text analyzer
func NewTextAnalyzer() TextAnalyzer {
	return &textAnalyzer{}
}

// Analyze echoes text together with its word and character counts
func (a *textAnalyzer) Analyze(text string) (AnalysisResult, error) {
	if !utf8.ValidString(text) {
		return AnalysisResult{}, ErrInvalidEncoding
	}

	return AnalysisResult{
		OriginalText:   text,
		WordCount:      a.CountWords(text),
		CharacterCount: a.CountCharacters(text),
	}, nil
}

// CountWords returns the number of maximal runs of non-whitespace characters
func (a *textAnalyzer) CountWords(text string) int {
	return len(strings.FieldsFunc(text, IsSeparator))
}

// CountCharacters returns the number of code points in text
func (a *textAnalyzer) CountCharacters(text string) int {
	return utf8.RuneCountInString(text)
}

// IsSeparator reports whether r separates words. This is the Unicode
// White_Space set plus the ASCII file, group, record and unit separators
// (U+001C..U+001F).
func IsSeparator(r rune) bool {
	if r >= 0x1c && r <= 0x1f {
		return true
	}
	return unicode.IsSpace(r)
}
