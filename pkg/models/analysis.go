package models

// AnalysisResult holds the lexical statistics computed for one text payload.
// It is also the success body of POST /analyze.
type AnalysisResult struct {
	OriginalText   string `json:"original_text"`
	WordCount      int    `json:"word_count"`
	CharacterCount int    `json:"character_count"`
}
