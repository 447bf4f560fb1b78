package game

import "sync"

// Sessions owns one Controller per player ID, created on first use.
type Sessions struct {
	mu       sync.RWMutex
	opts     Options
	byPlayer map[string]*Controller
}

// NewSessions returns an empty registry whose controllers share opts.
func NewSessions(opts Options) *Sessions {
	return &Sessions{opts: opts, byPlayer: make(map[string]*Controller)}
}

// Get returns the player's controller, creating it if needed.
func (s *Sessions) Get(player string) *Controller {
	s.mu.RLock()
	c, ok := s.byPlayer[player]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byPlayer[player]; ok {
		return c
	}
	c = NewController(player, s.opts)
	s.byPlayer[player] = c
	return c
}

// Len returns the number of live controllers.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byPlayer)
}

// Close cancels every pending auto-advance.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.byPlayer {
		c.Close()
	}
}
