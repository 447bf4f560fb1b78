// internal/events/sink.go
//
// Best-effort delivery of gameplay events to an external log endpoint.
// Responsibilities:
//   - Accept events without blocking (buffered queue; full queue drops).
//   - POST each event as JSON from a single worker goroutine.
//   - Log and swallow delivery failures.
//
// An empty endpoint disables the sink: LogEvent becomes a no-op.

package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Config controls the sink.
type Config struct {
	Endpoint  string
	Timeout   time.Duration
	QueueSize int
}

// Sink posts events to Config.Endpoint.
type Sink struct {
	endpoint string
	client   *http.Client
	now      func() time.Time

	mu     sync.Mutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

// NewSink starts the delivery worker. Close must be called to stop it.
func NewSink(cfg Config) *Sink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	s := &Sink{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		now:      time.Now,
		queue:    make(chan Event, cfg.QueueSize),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Enabled reports whether an endpoint is configured.
func (s *Sink) Enabled() bool { return s.endpoint != "" }

// LogEvent enqueues ev, stamping an ID and timestamp when missing. It never blocks.
func (s *Sink) LogEvent(ev Event) {
	if !s.Enabled() {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- ev:
	default:
		log.Warn().Str("action", ev.Action).Msg("event queue full, dropping event")
	}
}

// Close stops accepting events and waits for queued ones to drain or ctx to end.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sink) run() {
	defer close(s.done)
	for ev := range s.queue {
		if err := s.post(ev); err != nil {
			log.Warn().Err(err).Str("action", ev.Action).Str("id", ev.ID).Msg("event delivery failed")
		}
	}
}

func (s *Sink) post(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
