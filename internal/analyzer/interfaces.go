package analyzer

// TextAnalyzer defines the main interface for text analysis
type TextAnalyzer interface {
	// Analyze computes word and character counts for text
	Analyze(text string) (AnalysisResult, error)
}

// WordCounter splits text into whitespace-delimited tokens
type WordCounter interface {
	CountWords(text string) int
}

// CharacterCounter measures text length
type CharacterCounter interface {
	CountCharacters(text string) int
}
