package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anime-shed/text-analyzer-go/internal/analyzer"
	apperrors "github.com/anime-shed/text-analyzer-go/internal/errors"
	"github.com/anime-shed/text-analyzer-go/internal/observer"
	"github.com/anime-shed/text-analyzer-go/pkg/models"
	"github.com/anime-shed/text-analyzer-go/pkg/validation"
)

// TextAnalysisService validates analysis requests and produces their results
type TextAnalysisService interface {
	// AnalyzeText returns the result for req, or an *errors.AppError that is
	// either invalid input (400) or an internal failure (500).
	AnalyzeText(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error)
}

// textAnalysisService implements TextAnalysisService
type textAnalysisService struct {
	analyzer  analyzer.TextAnalyzer
	validator *validation.RequestValidator
	events    observer.Subject
}

// NewTextAnalysisService creates a new text analysis service. events may be nil.
func NewTextAnalysisService(
	textAnalyzer analyzer.TextAnalyzer,
	validator *validation.RequestValidator,
	events observer.Subject,
) TextAnalysisService {
	return &textAnalysisService{
		analyzer:  textAnalyzer,
		validator: validator,
		events:    events,
	}
}

// AnalyzeText validates req and runs the analyzer on its text
func (s *textAnalysisService) AnalyzeText(ctx context.Context, req *models.AnalysisRequest) (result *models.AnalysisResult, err error) {
	start := time.Now()
	s.notify(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Timestamp: start})

	// A panic in the analyzer becomes an internal failure carrying the panic value.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperrors.NewInternalError(fmt.Sprint(r), fmt.Errorf("panic: %v", r))
			s.notifyFailure(ctx, start, observer.AnalysisFailed, err)
		}
	}()

	if err := s.validator.ValidateAnalysisRequest(req); err != nil {
		s.notifyFailure(ctx, start, observer.AnalysisRejected, err)
		return nil, err
	}

	res, err := s.analyzer.Analyze(*req.Text)
	if err != nil {
		appErr := apperrors.NewInternalError(err.Error(), err)
		s.notifyFailure(ctx, start, observer.AnalysisFailed, appErr)
		return nil, appErr
	}

	s.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Timestamp:      time.Now(),
		ProcessingTime: time.Since(start),
		Success:        true,
		WordCount:      res.WordCount,
		CharacterCount: res.CharacterCount,
	})

	return &res, nil
}

func (s *textAnalysisService) notifyFailure(ctx context.Context, start time.Time, eventType observer.EventType, err error) {
	s.notify(ctx, observer.AnalysisEvent{
		EventType:      eventType,
		Timestamp:      time.Now(),
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
}

func (s *textAnalysisService) notify(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}
