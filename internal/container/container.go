package container

import (
	"net/http"

	"github.com/anime-shed/text-analyzer-go/internal/analyzer"
	"github.com/anime-shed/text-analyzer-go/internal/config"
	"github.com/anime-shed/text-analyzer-go/internal/logger"
	"github.com/anime-shed/text-analyzer-go/internal/observer"
	"github.com/anime-shed/text-analyzer-go/internal/service"
	"github.com/anime-shed/text-analyzer-go/internal/transport"
	"github.com/anime-shed/text-analyzer-go/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Container holds all application dependencies
type Container struct {
	config              *config.Config
	textAnalyzer        analyzer.TextAnalyzer
	events              *observer.EventPublisher
	metrics             *observer.MetricsObserver
	textAnalysisService service.TextAnalysisService
	handler             http.Handler
}

// NewContainer creates a new dependency injection container with a fresh
// Prometheus registry that also carries the Go runtime and process collectors
func NewContainer(cfg *config.Config) (*Container, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewContainerWithRegistry(cfg, registry)
}

// NewContainerWithRegistry creates a container whose metrics are registered
// on, and served from, registry
func NewContainerWithRegistry(cfg *config.Config, registry *prometheus.Registry) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Build dependency graph
	textAnalyzer := analyzer.NewTextAnalyzer()

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))

	metrics := observer.NewMetricsObserverWithRegistry(registry)
	events.Subscribe(metrics)

	textAnalysisService := service.NewTextAnalysisService(textAnalyzer, validation.NewRequestValidator(), events)

	opts := transport.Options{
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}
	if cfg.MetricsEnabled {
		opts.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	handler := transport.NewHandler(textAnalysisService, opts)

	return &Container{
		config:              cfg,
		textAnalyzer:        textAnalyzer,
		events:              events,
		metrics:             metrics,
		textAnalysisService: textAnalysisService,
		handler:             handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the text analysis service
func (c *Container) Service() service.TextAnalysisService {
	return c.textAnalysisService
}
