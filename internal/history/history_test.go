package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/contexto/internal/store"
)

func TestGetEmpty(t *testing.T) {
	s := New(store.NewState(store.NewMemoryBackend(), "p"))
	got := s.Get(context.Background(), 0, 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAppendMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewState(store.NewMemoryBackend(), "p"))

	require.NoError(t, s.Append(ctx, 1, 2, store.GuessEntry{Guess: "lua"}))
	require.NoError(t, s.Append(ctx, 1, 2, store.GuessEntry{Guess: "estrela"}))
	require.NoError(t, s.Append(ctx, 1, 2, store.GuessEntry{Guess: "lua"}))

	got := s.Get(ctx, 1, 2)
	require.Len(t, got, 3, "entries are never deduplicated")
	assert.Equal(t, "lua", got[0].Guess)
	assert.Equal(t, "estrela", got[1].Guess)
	assert.Equal(t, "lua", got[2].Guess)
}

func TestAppendScopedPerWord(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewState(store.NewMemoryBackend(), "p"))

	require.NoError(t, s.Append(ctx, 0, 0, store.GuessEntry{Guess: "sol"}))
	require.NoError(t, s.Append(ctx, 0, 1, store.GuessEntry{Guess: "mar"}))
	require.NoError(t, s.Append(ctx, 3, 0, store.GuessEntry{Guess: "onda"}))

	assert.Len(t, s.Get(ctx, 0, 0), 1)
	assert.Len(t, s.Get(ctx, 0, 1), 1)
	assert.Len(t, s.Get(ctx, 3, 0), 1)
	assert.Empty(t, s.Get(ctx, 3, 1))
}
