package game

import (
	"math"

	"github.com/robalobadob/contexto/internal/words"
)

// InfiniteDistance marks a guess whose distance cannot be computed.
const InfiniteDistance = math.MaxInt

// Score rates guess against answer within idx. Both sides are normalized first.
//
//	distance   = |rank(guess) - rank(answer)|
//	percentage = round(100 * (1 - distance/max(1, size-1))), clamped to [0, 100]
//
// An unranked guess or answer, or an index of at most one token, yields
// InfiniteDistance, TierUnranked and 0%.
func Score(guess, answer string, idx *RankIndex) Proximity {
	g, a := words.Normalize(guess), words.Normalize(answer)
	gr, okG := idx.Rank(g)
	ar, okA := idx.Rank(a)
	if !okG || !okA || idx.Size() <= 1 {
		return Proximity{Distance: InfiniteDistance, Tier: TierUnranked}
	}
	d := abs(gr - ar)
	return Proximity{Distance: d, Tier: TierFor(d), Percentage: percentage(d, idx.Size())}
}

// TierFor buckets a distance.
func TierFor(distance int) Tier {
	switch {
	case distance == InfiniteDistance:
		return TierUnranked
	case distance <= 10:
		return TierVeryClose
	case distance <= 20:
		return TierClose
	case distance <= 100:
		return TierFar
	default:
		return TierVeryFar
	}
}

// percentage rounds half up.
func percentage(distance, size int) int {
	span := max(1, size-1)
	p := int(math.Floor(100*(1-float64(distance)/float64(span)) + 0.5))
	return max(0, min(100, p))
}
