// internal/ranking/mirror.go
//
// Fire-and-forget score mirror.
// Responsibilities:
//   - Accept UpsertScore calls from round controllers without blocking.
//   - Apply them to the Store from one worker goroutine.
//   - Push the refreshed top-N to live subscribers after each applied upsert.
//
// Failures are logged and dropped; the player's own persisted stats remain the
// source of truth.

package ranking

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type upsert struct {
	player string
	total  int
}

// Mirror forwards totals to a Store and fans the leaderboard out to subscribers.
type Mirror struct {
	store   Store
	topN    int
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan upsert
	subs   map[chan []Entry]struct{}
	done   chan struct{}
}

// NewMirror starts the worker. topN bounds the broadcast leaderboard.
func NewMirror(store Store, topN int) *Mirror {
	if topN <= 0 {
		topN = 10
	}
	m := &Mirror{
		store:   store,
		topN:    topN,
		timeout: 5 * time.Second,
		queue:   make(chan upsert, 128),
		subs:    make(map[chan []Entry]struct{}),
		done:    make(chan struct{}),
	}
	go m.run()
	return m
}

// UpsertScore enqueues the total. A full queue drops the update with a warning.
func (m *Mirror) UpsertScore(player string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- upsert{player: player, total: total}:
	default:
		log.Warn().Str("player", player).Int("total", total).Msg("ranking queue full, dropping update")
	}
}

// Top reads the leaderboard directly from the store.
func (m *Mirror) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > m.topN {
		limit = m.topN
	}
	return m.store.Top(ctx, limit)
}

// Subscribe registers for leaderboard pushes. The returned cancel func must be
// called once the subscriber goes away. Slow subscribers miss updates.
func (m *Mirror) Subscribe() (<-chan []Entry, func()) {
	ch := make(chan []Entry, 1)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, ok := m.subs[ch]; ok {
				delete(m.subs, ch)
				close(ch)
			}
		})
	}
}

// Close stops the worker after draining queued updates and closes every
// subscriber channel.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	select {
	case <-m.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs {
		delete(m.subs, ch)
		close(ch)
	}
	return nil
}

func (m *Mirror) run() {
	defer close(m.done)
	for u := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		if err := m.store.Upsert(ctx, u.player, u.total); err != nil {
			log.Warn().Err(err).Str("player", u.player).Msg("ranking upsert failed")
			cancel()
			continue
		}
		top, err := m.store.Top(ctx, m.topN)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("ranking refresh failed")
			continue
		}
		m.broadcast(top)
	}
}

func (m *Mirror) broadcast(top []Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs {
		// Keep only the freshest board per subscriber.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- top:
		default:
		}
	}
}
