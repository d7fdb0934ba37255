package validation

import (
	"errors"

	apperrors "github.com/anime-shed/text-analyzer-go/internal/errors"
	"github.com/anime-shed/text-analyzer-go/pkg/models"
)

var (
	// ErrMissingRequest indicates no request object was decoded
	ErrMissingRequest = errors.New("request is nil")

	// ErrMissingText indicates the 'text' key was absent or null
	ErrMissingText = errors.New("'text' field is missing")
)

// RequestValidator checks analysis requests before they reach the analyzer.
// No length or encoding limits are applied to the text itself.
type RequestValidator struct{}

// NewRequestValidator creates a new request validator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// ValidateAnalysisRequest returns an invalid input AppError when req cannot
// be analyzed
func (v *RequestValidator) ValidateAnalysisRequest(req *models.AnalysisRequest) error {
	if req == nil {
		return apperrors.NewInvalidInputError(ErrMissingRequest)
	}
	if req.Text == nil {
		return apperrors.NewInvalidInputError(ErrMissingText)
	}
	return nil
}
