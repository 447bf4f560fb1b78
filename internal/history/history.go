// Package history keeps every scored guess per (category, word), most recent first.
//
// The log is unbounded and never deduplicated; the round controller seeds its
// tried-guess list from it so a resumed word shows its earlier attempts.
package history

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/contexto/internal/store"
)

// Repository is the slice of store.State the history store needs.
type Repository interface {
	History(ctx context.Context) store.HistoryLog
	SaveHistory(ctx context.Context, h store.HistoryLog) error
}

// Store appends to and reads the per-word guess log.
type Store struct {
	repo Repository
}

// New constructs a Store over repo.
func New(repo Repository) *Store {
	return &Store{repo: repo}
}

// Append prepends entry to the (cat, word) list and persists the log.
func (s *Store) Append(ctx context.Context, cat, word int, entry store.GuessEntry) error {
	h := s.repo.History(ctx)
	words, ok := h[cat]
	if !ok {
		words = make(map[int][]store.GuessEntry)
		h[cat] = words
	}
	words[word] = append([]store.GuessEntry{entry}, words[word]...)
	if err := s.repo.SaveHistory(ctx, h); err != nil {
		log.Warn().Err(err).Int("category", cat).Int("word", word).Msg("persist guess history")
		return err
	}
	return nil
}

// Get returns the (cat, word) list, most recent first; empty if none.
func (s *Store) Get(ctx context.Context, cat, word int) []store.GuessEntry {
	entries := s.repo.History(ctx)[cat][word]
	if entries == nil {
		return []store.GuessEntry{}
	}
	return entries
}
