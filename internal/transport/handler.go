package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/anime-shed/text-analyzer-go/internal/errors"
	"github.com/anime-shed/text-analyzer-go/internal/logger"
	"github.com/anime-shed/text-analyzer-go/internal/service"
	"github.com/anime-shed/text-analyzer-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by GET /health
const Version = "1.0.0"

// Options configure the router
type Options struct {
	MaxRequestBodySize int64
	// MetricsHandler is mounted on GET /metrics when non-nil
	MetricsHandler http.Handler
}

func NewHandler(svc service.TextAnalysisService, opts Options) http.Handler {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		requestLogger(),
		recovery(),
		requestSizeLimiter(opts.MaxRequestBodySize),
	)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, apperrors.NewNotFoundError(http.StatusText(http.StatusNotFound)))
	})
	r.NoMethod(func(c *gin.Context) {
		respondError(c, apperrors.NewMethodNotAllowedError(http.StatusText(http.StatusMethodNotAllowed)))
	})

	r.GET("/health", healthCheck)
	r.POST("/analyze", analyzeText(svc))
	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	return r
}

func analyzeText(svc service.TextAnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fails on empty and oversized bodies
		raw, err := c.GetRawData()
		if err != nil {
			respondError(c, apperrors.NewInvalidInputError(err))
			return
		}

		req, err := decodeAnalysisRequest(raw)
		if err != nil {
			respondError(c, err)
			return
		}

		result, err := svc.AnalyzeText(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// recovery turns a panic anywhere in the chain into a 500 whose message is
// the panic value.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if r == http.ErrAbortHandler {
					panic(r)
				}
				respondError(c, apperrors.NewInternalError(fmt.Sprint(r), fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}).Info("HTTP request")
	}
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	var appErr *apperrors.AppError
	if code >= http.StatusInternalServerError || !errors.As(err, &appErr) {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error: apperrors.PublicMessage(err),
	})
}
