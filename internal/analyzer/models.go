package analyzer

import (
	"github.com/anime-shed/text-analyzer-go/pkg/models"
)

// AnalysisResult is an alias to the shared models.AnalysisResult
type AnalysisResult = models.AnalysisResult
