package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anime-shed/text-analyzer-go/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
)

// recordingObserver collects events and signals each delivery on wg
type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []AnalysisEvent
	wg     *sync.WaitGroup
}

func (o *recordingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	o.events = append(o.events, event)
	o.mu.Unlock()
	o.wg.Done()
}

func (o *recordingObserver) GetObserverName() string { return o.name }

type panickingObserver struct{ wg *sync.WaitGroup }

func (o *panickingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	defer o.wg.Done()
	panic("observer exploded")
}

func (o *panickingObserver) GetObserverName() string { return "panicking" }

func waitTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for observers")
	}
}

func TestEventPublisher_NotifyObservers(t *testing.T) {
	var wg sync.WaitGroup
	publisher := NewEventPublisher()
	first := &recordingObserver{name: "first", wg: &wg}
	second := &recordingObserver{name: "second", wg: &wg}
	publisher.Subscribe(first)
	publisher.Subscribe(second)

	wg.Add(2)
	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisCompleted})
	waitTimeout(t, &wg)

	for _, obs := range []*recordingObserver{first, second} {
		obs.mu.Lock()
		if len(obs.events) != 1 || obs.events[0].EventType != AnalysisCompleted {
			t.Errorf("Observer %s received %+v", obs.name, obs.events)
		}
		obs.mu.Unlock()
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	var wg sync.WaitGroup
	publisher := NewEventPublisher()
	kept := &recordingObserver{name: "kept", wg: &wg}
	removed := &recordingObserver{name: "removed", wg: &wg}
	publisher.Subscribe(kept)
	publisher.Subscribe(removed)
	publisher.Unsubscribe(removed)

	wg.Add(1)
	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	waitTimeout(t, &wg)

	removed.mu.Lock()
	defer removed.mu.Unlock()
	if len(removed.events) != 0 {
		t.Errorf("Expected unsubscribed observer to receive nothing, got %d events", len(removed.events))
	}
}

func TestEventPublisher_RecoversObserverPanic(t *testing.T) {
	var wg sync.WaitGroup
	publisher := NewEventPublisher()
	healthy := &recordingObserver{name: "healthy", wg: &wg}
	publisher.Subscribe(&panickingObserver{wg: &wg})
	publisher.Subscribe(healthy)

	wg.Add(2)
	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisFailed})
	waitTimeout(t, &wg)

	healthy.mu.Lock()
	defer healthy.mu.Unlock()
	if len(healthy.events) != 1 {
		t.Errorf("Expected healthy observer to receive the event, got %d", len(healthy.events))
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEventPublisher_LogsObserverPanic(t *testing.T) {
	out := &lockedBuffer{}
	logger.Logger.SetOutput(out)
	t.Cleanup(func() { logger.Logger.SetOutput(os.Stdout) })

	var wg sync.WaitGroup
	publisher := NewEventPublisher()
	publisher.Subscribe(&panickingObserver{wg: &wg})

	wg.Add(1)
	publisher.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisFailed})
	waitTimeout(t, &wg)

	deadline := time.Now().Add(2 * time.Second)
	for out.String() == "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	line := strings.SplitN(strings.TrimSpace(out.String()), "\n", 2)[0]
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Expected one JSON log line, got %q: %v", out.String(), err)
	}
	if entry["level"] != "error" || entry["observer"] != "panicking" || entry["panic"] != "observer exploded" {
		t.Errorf("Unexpected log entry: %v", entry)
	}
}

func TestLoggingObserver_OnEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     AnalysisEvent
		wantLevel string
		wantMsg   string
	}{
		{
			name:      "completed",
			event:     AnalysisEvent{EventType: AnalysisCompleted, Success: true, WordCount: 2, CharacterCount: 11},
			wantLevel: "info",
			wantMsg:   "Text analysis completed",
		},
		{
			name:      "rejected",
			event:     AnalysisEvent{EventType: AnalysisRejected, ErrorMessage: "missing text"},
			wantLevel: "warning",
			wantMsg:   "Text analysis rejected",
		},
		{
			name:      "failed",
			event:     AnalysisEvent{EventType: AnalysisFailed, ErrorMessage: "boom"},
			wantLevel: "error",
			wantMsg:   "Text analysis failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logrus.New()
			l.SetOutput(&buf)
			l.SetFormatter(&logrus.JSONFormatter{})

			NewLoggingObserver(l).OnEvent(context.Background(), tt.event)

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Expected JSON log line, got %q", buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("Expected level %s, got %v", tt.wantLevel, entry["level"])
			}
			if entry["msg"] != tt.wantMsg {
				t.Errorf("Expected msg %q, got %v", tt.wantMsg, entry["msg"])
			}
		})
	}
}

func TestLoggingObserver_StartedIsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.InfoLevel)

	NewLoggingObserver(l).OnEvent(context.Background(), AnalysisEvent{EventType: AnalysisStarted})

	if buf.Len() != 0 {
		t.Errorf("Expected started event to be hidden at info level, got %q", buf.String())
	}
}

func TestMetricsObserver_OnEvent(t *testing.T) {
	registry := prometheus.NewRegistry()
	obs := NewMetricsObserverWithRegistry(registry)
	ctx := context.Background()

	obs.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted})
	obs.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, ProcessingTime: time.Millisecond, WordCount: 2, CharacterCount: 11})
	obs.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, WordCount: 3, CharacterCount: 13})
	obs.OnEvent(ctx, AnalysisEvent{EventType: AnalysisRejected})
	obs.OnEvent(ctx, AnalysisEvent{EventType: AnalysisFailed})

	if got := testutil.ToFloat64(obs.analyses.WithLabelValues(OutcomeSuccess)); got != 2 {
		t.Errorf("Expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(obs.analyses.WithLabelValues(OutcomeInvalidInput)); got != 1 {
		t.Errorf("Expected 1 invalid input, got %v", got)
	}
	if got := testutil.ToFloat64(obs.analyses.WithLabelValues(OutcomeInternalError)); got != 1 {
		t.Errorf("Expected 1 internal error, got %v", got)
	}
	if got := testutil.ToFloat64(obs.words); got != 5 {
		t.Errorf("Expected 5 words, got %v", got)
	}
	if got := testutil.ToFloat64(obs.characters); got != 24 {
		t.Errorf("Expected 24 characters, got %v", got)
	}

	expected := `
# HELP textanalyzer_words_total Total number of words counted across successful analyses
# TYPE textanalyzer_words_total counter
textanalyzer_words_total 5
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "textanalyzer_words_total"); err != nil {
		t.Errorf("Unexpected metrics output: %v", err)
	}
}

func TestMetricsObserver_NilRegisterer(t *testing.T) {
	obs := NewMetricsObserverWithRegistry(nil)
	obs.OnEvent(context.Background(), AnalysisEvent{EventType: AnalysisCompleted, WordCount: 1})

	if got := testutil.ToFloat64(obs.words); got != 1 {
		t.Errorf("Expected unregistered observer to still count, got %v", got)
	}
}
