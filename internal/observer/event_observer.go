package observer

import (
	"context"
	"sync"
	"time"

	"github.com/anime-shed/text-analyzer-go/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// AnalysisEvent represents an analysis event
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	WordCount      int                    `json:"word_count,omitempty"`
	CharacterCount int                    `json:"character_count,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when a request reaches the service
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when analysis finishes successfully
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisRejected when the request is invalid input
	AnalysisRejected EventType = "analysis_rejected"
	// AnalysisFailed when analysis fails internally
	AnalysisFailed EventType = "analysis_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// LoggingObserver logs analysis events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles analysis events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	if event.EventType == AnalysisCompleted {
		fields["word_count"] = event.WordCount
		fields["character_count"] = event.CharacterCount
	}

	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case AnalysisStarted:
		o.logger.WithFields(fields).Debug("Text analysis started")
	case AnalysisCompleted:
		o.logger.WithFields(fields).Info("Text analysis completed")
	case AnalysisRejected:
		// Client mistakes are not server faults.
		o.logger.WithFields(fields).Warn("Text analysis rejected")
	case AnalysisFailed:
		o.logger.WithFields(fields).Error("Text analysis failed")
	default:
		o.logger.WithFields(fields).Info("Analysis event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Outcome label values of textanalyzer_analyses_total
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeInternalError = "internal_error"
)

// MetricsObserver records analysis events as Prometheus metrics
type MetricsObserver struct {
	analyses   *prometheus.CounterVec
	duration   prometheus.Histogram
	words      prometheus.Counter
	characters prometheus.Counter
}

// NewMetricsObserver creates a metrics observer registered with the default registerer
func NewMetricsObserver() *MetricsObserver {
	return NewMetricsObserverWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsObserverWithRegistry creates a metrics observer with a custom registry.
// A nil registerer leaves the collectors unregistered.
func NewMetricsObserverWithRegistry(registerer prometheus.Registerer) *MetricsObserver {
	o := &MetricsObserver{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "textanalyzer_analyses_total",
			Help: "Total number of analysis requests by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "textanalyzer_analysis_duration_seconds",
			Help:    "Time spent analyzing text in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		words: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textanalyzer_words_total",
			Help: "Total number of words counted across successful analyses",
		}),
		characters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "textanalyzer_characters_total",
			Help: "Total number of characters counted across successful analyses",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(o.analyses)
		registerer.MustRegister(o.duration)
		registerer.MustRegister(o.words)
		registerer.MustRegister(o.characters)
	}

	return o
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	switch event.EventType {
	case AnalysisCompleted:
		o.analyses.WithLabelValues(OutcomeSuccess).Inc()
		o.duration.Observe(event.ProcessingTime.Seconds())
		o.words.Add(float64(event.WordCount))
		o.characters.Add(float64(event.CharacterCount))
	case AnalysisRejected:
		o.analyses.WithLabelValues(OutcomeInvalidInput).Inc()
	case AnalysisFailed:
		o.analyses.WithLabelValues(OutcomeInternalError).Inc()
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event. Each observer runs in
// its own goroutine; the request context is detached so a finished request
// does not cut observers short.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	ctx = context.WithoutCancel(ctx)
	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(logrus.Fields{
						"observer": obs.GetObserverName(),
						"panic":    r,
					}).Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
