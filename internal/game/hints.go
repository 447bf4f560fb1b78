package game

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// nextHint builds the clue for the round's current hint step:
//
//	0: answer length
//	1: first letter
//	2: nearest untried word by rank, or an explicit "none available"
//	3+: the answer itself
func nextHint(r *round) Hint {
	step := r.hintStep
	switch step {
	case 0:
		n := utf8.RuneCountInString(r.answer)
		return Hint{Step: step, Kind: HintLength, Value: strconv.Itoa(n), Message: fmt.Sprintf(msgHintLength, n)}
	case 1:
		first, _ := utf8.DecodeRuneInString(r.answer)
		letter := strings.ToUpper(string(first))
		return Hint{Step: step, Kind: HintFirstLetter, Value: letter, Message: fmt.Sprintf(msgHintFirst, letter)}
	case 2:
		exclude := make(map[string]struct{}, len(r.tried))
		for _, t := range r.tried {
			exclude[t] = struct{}{}
		}
		if tok, ok := r.index.Nearest(r.answer, exclude); ok {
			return Hint{Step: step, Kind: HintNearest, Value: tok, Message: fmt.Sprintf(msgHintNearest, tok)}
		}
		return Hint{Step: step, Kind: HintNearest, Message: msgHintNoNearest}
	default:
		return Hint{Step: step, Kind: HintAnswer, Value: r.literal, Message: fmt.Sprintf(msgHintAnswer, r.literal)}
	}
}
