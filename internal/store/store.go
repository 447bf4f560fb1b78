// internal/store/store.go
//
// Persisted state for one player.
//
// A Backend is a namespaced key/value store of raw JSON values (memory or sqlite).
// State wraps a Backend and one namespace (the player ID) and exposes typed
// get/put per logical collection.
//
// Default-substitution policy:
//   - A missing key reads as the collection's empty value.
//   - A malformed value (bad JSON, wrong shape) reads as the empty value and is logged.
//   - A backend read error reads as the empty value and is logged.
//
// Reads therefore never fail; writes return the backend error so callers can log it.

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Backend defines the raw key/value persistence interface.
// Implementations may be backed by memory (this package), SQL, Redis, etc.
type Backend interface {
	// Get returns the stored value; ok is false when the key is absent.
	Get(ctx context.Context, namespace, key string) (value []byte, ok bool, err error)

	// Put persists or replaces a value.
	Put(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes keys from a namespace. Absent keys are ignored.
	Delete(ctx context.Context, namespace string, keys ...string) error
}

// Collection keys within a player namespace.
const (
	KeyProgress  = "progress"
	KeyLast      = "last"
	KeySolved    = "solved"
	KeyHistory   = "cat-history"
	KeyStats     = "stats"
	KeyPlayer    = "player"
	KeyOnboarded = "first-run"
)

// resettable lists every collection cleared by a full reset. The player name survives.
var resettable = []string{KeyProgress, KeyLast, KeySolved, KeyHistory, KeyStats, KeyOnboarded}

// CategoryProgress is the completion array of one category.
type CategoryProgress struct {
	Completed []bool `json:"completed"`
}

// ProgressMatrix maps category index to its completion array.
type ProgressMatrix map[int]CategoryProgress

// SolvedRecord is one completed (category, word) pair for the completion feed.
type SolvedRecord struct {
	Category int       `json:"c"`
	Word     int       `json:"w"`
	At       time.Time `json:"ts"`
}

// GuessEntry is one scored guess as persisted in the history log.
// Distance is -1 for an unranked guess.
type GuessEntry struct {
	Guess      string    `json:"g"`
	Tier       string    `json:"tier"`
	Distance   int       `json:"dist"`
	Percentage int       `json:"pct"`
	At         time.Time `json:"at"`
}

// HistoryLog maps category index -> word index -> entries (most recent first).
type HistoryLog map[int]map[int][]GuessEntry

// Stats holds the cross-round aggregate counters.
type Stats struct {
	RoundsPlayed int `json:"rodadas"`
	RoundsWon    int `json:"ganhas"`
	TotalPoints  int `json:"pontosTotal"`
}

// lastPlayed is the stored shape of the last-category pointer.
type lastPlayed struct {
	Category *int `json:"idxCat"`
}

// State is the typed repository for one player's persisted collections.
type State struct {
	backend   Backend
	namespace string
}

// NewState scopes a Backend to one namespace.
func NewState(b Backend, namespace string) *State {
	return &State{backend: b, namespace: namespace}
}

// Namespace returns the namespace this state is scoped to.
func (s *State) Namespace() string { return s.namespace }

// load decodes key into dst. It reports false when dst must be replaced by a default.
func (s *State) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.backend.Get(ctx, s.namespace, key)
	if err != nil {
		log.Warn().Err(err).Str("namespace", s.namespace).Str("key", key).Msg("state read failed, using default")
		return false
	}
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("namespace", s.namespace).Str("key", key).Msg("malformed state, using default")
		return false
	}
	return true
}

// save encodes v under key.
func (s *State) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.backend.Put(ctx, s.namespace, key, raw)
}

// Progress returns the completion matrix (empty if absent or malformed).
func (s *State) Progress(ctx context.Context) ProgressMatrix {
	var p ProgressMatrix
	if !s.load(ctx, KeyProgress, &p) || p == nil {
		return ProgressMatrix{}
	}
	return p
}

// SaveProgress persists the completion matrix.
func (s *State) SaveProgress(ctx context.Context, p ProgressMatrix) error {
	return s.save(ctx, KeyProgress, p)
}

// LastCategory returns the last played category pointer, if one was stored.
func (s *State) LastCategory(ctx context.Context) (int, bool) {
	var l lastPlayed
	if !s.load(ctx, KeyLast, &l) || l.Category == nil {
		return 0, false
	}
	return *l.Category, true
}

// SaveLastCategory persists the last played category pointer.
func (s *State) SaveLastCategory(ctx context.Context, idx int) error {
	return s.save(ctx, KeyLast, lastPlayed{Category: &idx})
}

// Solved returns the append-only solved log (empty if absent or malformed).
func (s *State) Solved(ctx context.Context) []SolvedRecord {
	var out []SolvedRecord
	if !s.load(ctx, KeySolved, &out) {
		return []SolvedRecord{}
	}
	return out
}

// SaveSolved persists the solved log.
func (s *State) SaveSolved(ctx context.Context, recs []SolvedRecord) error {
	return s.save(ctx, KeySolved, recs)
}

// History returns the per-word guess log (empty if absent or malformed).
func (s *State) History(ctx context.Context) HistoryLog {
	var h HistoryLog
	if !s.load(ctx, KeyHistory, &h) || h == nil {
		return HistoryLog{}
	}
	return h
}

// SaveHistory persists the per-word guess log.
func (s *State) SaveHistory(ctx context.Context, h HistoryLog) error {
	return s.save(ctx, KeyHistory, h)
}

// Stats returns aggregate counters (zero if absent or malformed).
func (s *State) Stats(ctx context.Context) Stats {
	var st Stats
	if !s.load(ctx, KeyStats, &st) {
		return Stats{}
	}
	return st
}

// SaveStats persists aggregate counters.
func (s *State) SaveStats(ctx context.Context, st Stats) error {
	return s.save(ctx, KeyStats, st)
}

// PlayerName returns the stored display name ("" if none).
func (s *State) PlayerName(ctx context.Context) string {
	var name string
	if !s.load(ctx, KeyPlayer, &name) {
		return ""
	}
	return name
}

// SavePlayerName persists the display name.
func (s *State) SavePlayerName(ctx context.Context, name string) error {
	return s.save(ctx, KeyPlayer, name)
}

// Onboarded reports whether the first-run flag was set.
func (s *State) Onboarded(ctx context.Context) bool {
	var v bool
	if !s.load(ctx, KeyOnboarded, &v) {
		return false
	}
	return v
}

// SetOnboarded sets the first-run flag.
func (s *State) SetOnboarded(ctx context.Context) error {
	return s.save(ctx, KeyOnboarded, true)
}

// Reset clears every collection except the player name.
func (s *State) Reset(ctx context.Context) error {
	return s.backend.Delete(ctx, s.namespace, resettable...)
}
