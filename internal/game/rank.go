package game

import "github.com/robalobadob/contexto/internal/words"

// RankIndex maps normalized tokens to their 1-based rank within one category.
// When two words normalize to the same token the later one's rank wins, while
// the token keeps its first-insertion position in iteration order.
type RankIndex struct {
	ranks map[string]int
	order []string
}

// BuildRankIndex indexes an ordered word list. Words normalizing to "" are skipped.
func BuildRankIndex(list []string) *RankIndex {
	idx := &RankIndex{ranks: make(map[string]int, len(list))}
	for i, w := range list {
		tok := words.Normalize(w)
		if tok == "" {
			continue
		}
		if _, seen := idx.ranks[tok]; !seen {
			idx.order = append(idx.order, tok)
		}
		idx.ranks[tok] = i + 1
	}
	return idx
}

// Rank returns the rank of an already normalized token.
func (r *RankIndex) Rank(token string) (int, bool) {
	rank, ok := r.ranks[token]
	return rank, ok
}

// Size returns the number of distinct tokens.
func (r *RankIndex) Size() int { return len(r.ranks) }

// Tokens returns the distinct tokens in first-insertion order.
func (r *RankIndex) Tokens() []string {
	return append([]string(nil), r.order...)
}

// Nearest returns the token with the smallest rank distance to answer, excluding
// answer itself and anything in exclude. Ties go to the earliest inserted token.
func (r *RankIndex) Nearest(answer string, exclude map[string]struct{}) (string, bool) {
	ar, ok := r.ranks[answer]
	if !ok {
		return "", false
	}
	best, bestDist := "", InfiniteDistance
	for _, tok := range r.order {
		if tok == answer {
			continue
		}
		if _, skip := exclude[tok]; skip {
			continue
		}
		if d := abs(r.ranks[tok] - ar); d < bestDist {
			best, bestDist = tok, d
		}
	}
	return best, best != ""
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
