package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		distance int
		want     Tier
	}{
		{0, TierVeryClose},
		{10, TierVeryClose},
		{11, TierClose},
		{20, TierClose},
		{21, TierFar},
		{100, TierFar},
		{101, TierVeryFar},
		{InfiniteDistance, TierUnranked},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.distance), "distance %d", tc.distance)
	}
}

func TestScoreSelfIsPerfect(t *testing.T) {
	idx := BuildRankIndex(letterWords(30))
	for _, tok := range idx.Tokens() {
		p := Score(tok, tok, idx)
		assert.Equal(t, Proximity{Distance: 0, Tier: TierVeryClose, Percentage: 100}, p, tok)
	}
}

func TestScoreSymmetricDistance(t *testing.T) {
	idx := BuildRankIndex(letterWords(40))
	toks := idx.Tokens()
	for _, a := range toks[:10] {
		for _, b := range toks[25:] {
			assert.Equal(t, Score(a, b, idx).Distance, Score(b, a, idx).Distance)
		}
	}
}

func TestScoreSmallCategory(t *testing.T) {
	idx := BuildRankIndex([]string{"sol", "lua", "estrela"})

	p := Score("Estrela", "sol", idx)
	assert.Equal(t, 2, p.Distance)
	assert.Equal(t, TierVeryClose, p.Tier)
	assert.Equal(t, 0, p.Percentage)

	p = Score("lua", "sol", idx)
	assert.Equal(t, 1, p.Distance)
	assert.Equal(t, 50, p.Percentage)
}

func TestScorePercentageAndTiers(t *testing.T) {
	list := letterWords(201)
	idx := BuildRankIndex(list)
	answer := list[0]

	assert.Equal(t, TierVeryClose, Score(list[10], answer, idx).Tier)
	assert.Equal(t, TierClose, Score(list[11], answer, idx).Tier)
	assert.Equal(t, TierFar, Score(list[21], answer, idx).Tier)
	assert.Equal(t, TierVeryFar, Score(list[101], answer, idx).Tier)

	p := Score(list[50], answer, idx)
	assert.Equal(t, 50, p.Distance)
	assert.Equal(t, 75, p.Percentage)
	assert.Equal(t, 0, Score(list[200], answer, idx).Percentage)
}

func TestScoreUnranked(t *testing.T) {
	idx := BuildRankIndex([]string{"sol", "lua", "estrela"})
	unranked := Proximity{Distance: InfiniteDistance, Tier: TierUnranked}

	assert.Equal(t, unranked, Score("vento", "sol", idx))
	assert.Equal(t, unranked, Score("sol", "vento", idx))
	assert.False(t, Score("vento", "sol", idx).Ranked())

	single := BuildRankIndex([]string{"sol"})
	assert.Equal(t, unranked, Score("sol", "sol", single))
}

func TestTierPresentation(t *testing.T) {
	assert.Equal(t, "🚀", TierVeryClose.Icon())
	assert.Equal(t, "❄️", TierUnranked.Icon())
	assert.Equal(t, "perto", TierClose.Label())
	assert.Equal(t, "fora da lista", TierUnranked.Label())
}

// letterWords returns n distinct letter-only words ("ba", "bb", ...).
func letterWords(n int) []string {
	out := make([]string, 0, n)
	for i := 0; len(out) < n; i++ {
		out = append(out, string([]rune{rune('b' + i/26), rune('a' + i%26)}))
	}
	return out
}
