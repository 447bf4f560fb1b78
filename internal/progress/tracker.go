// Package progress tracks per-category, per-word completion for one player.
//
// The completion matrix is authoritative for "which word is next": a category's
// array is created lazily the first time it is touched and re-created all-false
// when its length no longer matches the category's word count.
package progress

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/contexto/internal/store"
)

// Repository is the slice of store.State the tracker needs.
type Repository interface {
	Progress(ctx context.Context) store.ProgressMatrix
	SaveProgress(ctx context.Context, p store.ProgressMatrix) error
}

// WordCounter reports how many words each category has.
type WordCounter interface {
	Len() int
	WordCount(idx int) int
}

// Counts is the per-category completion summary.
type Counts struct {
	Done      int `json:"done"`
	Remaining int `json:"remaining"`
}

// GlobalCounts is the aggregate completion summary across every category.
type GlobalCounts struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Tracker reads and mutates the completion matrix.
type Tracker struct {
	repo    Repository
	dataset WordCounter
}

// NewTracker constructs a Tracker over repo for the given dataset.
func NewTracker(repo Repository, dataset WordCounter) *Tracker {
	return &Tracker{repo: repo, dataset: dataset}
}

// ensure returns the matrix with category cat guaranteed to have wordCount slots.
// A (re)initialization is persisted immediately.
func (t *Tracker) ensure(ctx context.Context, cat, wordCount int) store.ProgressMatrix {
	prog := t.repo.Progress(ctx)
	cp, ok := prog[cat]
	if !ok || cp.Completed == nil || len(cp.Completed) != wordCount {
		if ok {
			log.Warn().Int("category", cat).Int("stored", len(cp.Completed)).Int("words", wordCount).
				Msg("progress length mismatch, resetting category")
		}
		prog[cat] = store.CategoryProgress{Completed: make([]bool, wordCount)}
		if err := t.repo.SaveProgress(ctx, prog); err != nil {
			log.Warn().Err(err).Int("category", cat).Msg("persist progress init")
		}
	}
	return prog
}

// Ensure returns a copy of category cat's completion array.
func (t *Tracker) Ensure(ctx context.Context, cat, wordCount int) []bool {
	prog := t.ensure(ctx, cat, wordCount)
	return append([]bool(nil), prog[cat].Completed...)
}

// FirstUnfinished returns the first incomplete word index, or wordCount when the
// category is complete.
func (t *Tracker) FirstUnfinished(ctx context.Context, cat, wordCount int) int {
	arr := t.ensure(ctx, cat, wordCount)[cat].Completed
	_, idx, found := lo.FindIndexOf(arr, func(done bool) bool { return !done })
	if !found {
		return wordCount
	}
	return idx
}

// MarkCompleted sets word's slot to true. Marking twice is harmless.
func (t *Tracker) MarkCompleted(ctx context.Context, cat, word, wordCount int) {
	prog := t.ensure(ctx, cat, wordCount)
	arr := prog[cat].Completed
	if word < 0 || word >= len(arr) {
		log.Warn().Int("category", cat).Int("word", word).Msg("mark completed out of range")
		return
	}
	arr[word] = true
	if err := t.repo.SaveProgress(ctx, prog); err != nil {
		log.Warn().Err(err).Int("category", cat).Int("word", word).Msg("persist completion")
	}
}

// Counts returns done/remaining for one category.
func (t *Tracker) Counts(ctx context.Context, cat, wordCount int) Counts {
	arr := t.ensure(ctx, cat, wordCount)[cat].Completed
	done := lo.Count(arr, true)
	return Counts{Done: done, Remaining: wordCount - done}
}

// GlobalCounts sums completion across every dataset category.
func (t *Tracker) GlobalCounts(ctx context.Context) GlobalCounts {
	var g GlobalCounts
	for i := 0; i < t.dataset.Len(); i++ {
		n := t.dataset.WordCount(i)
		c := t.Counts(ctx, i, n)
		g.Done += c.Done
		g.Total += n
	}
	return g
}
