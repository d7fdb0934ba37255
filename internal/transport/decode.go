package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/anime-shed/text-analyzer-go/internal/analyzer"
	apperrors "github.com/anime-shed/text-analyzer-go/internal/errors"
	"github.com/anime-shed/text-analyzer-go/pkg/models"
)

var (
	errNotObject   = errors.New("request body is not a JSON object")
	errMissingText = errors.New("request body has no 'text' key")
	errTextType    = errors.New("'text' is not a string")
)

// decodeAnalysisRequest parses raw as a single JSON object holding a string
// under the exact key "text". Key matching is case-sensitive and trailing
// data after the object is rejected. A body that is not valid UTF-8 is an
// internal failure, everything else that does not parse is invalid input.
func decodeAnalysisRequest(raw []byte) (*models.AnalysisRequest, error) {
	if !utf8.Valid(raw) {
		return nil, apperrors.NewInternalError(analyzer.ErrInvalidEncoding.Error(), analyzer.ErrInvalidEncoding)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.NewInvalidInputError(err)
	}
	if fields == nil {
		return nil, apperrors.NewInvalidInputError(errNotObject)
	}

	value, ok := fields["text"]
	if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil, apperrors.NewInvalidInputError(errMissingText)
	}

	var text string
	if err := json.Unmarshal(value, &text); err != nil {
		return nil, apperrors.NewInvalidInputError(errTextType)
	}

	return &models.AnalysisRequest{Text: &text}, nil
}
