// internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Phase: where a player's round controller currently is.
//   - Tier: coarse proximity bucket of a scored guess.
//   - Proximity: the scorer's verdict for one guess.
//   - Rules: the tunable scoring/hint constants.
//   - Snapshot and the per-operation result types returned to callers.

package game

import (
	"time"

	"github.com/robalobadob/contexto/internal/progress"
	"github.com/robalobadob/contexto/internal/store"
)

// Phase is the round controller state.
//
//	awaiting_start --start--> round_active --correct guess--> round_won
//	round_won --advance--> round_active | category_complete | all_complete
//	any --reset--> awaiting_start
type Phase string

const (
	PhaseAwaitingStart    Phase = "awaiting_start"
	PhaseRoundActive      Phase = "round_active"
	PhaseRoundWon         Phase = "round_won"
	PhaseCategoryComplete Phase = "category_complete"
	PhaseAllComplete      Phase = "all_complete"
)

// Tier is the proximity bucket of a scored guess.
type Tier string

const (
	TierVeryClose Tier = "very close" // distance <= 10
	TierClose     Tier = "close"      // distance <= 20
	TierFar       Tier = "far"        // distance <= 100
	TierVeryFar   Tier = "very far"   // distance > 100
	TierUnranked  Tier = "unranked"   // guess or answer not in the category
)

// Icon returns the display glyph for the tier.
func (t Tier) Icon() string {
	switch t {
	case TierVeryClose:
		return "🚀"
	case TierClose:
		return "✨"
	case TierFar:
		return "🔥"
	default:
		return "❄️"
	}
}

// Label returns the player-facing tip text for the tier.
func (t Tier) Label() string {
	switch t {
	case TierVeryClose:
		return "muito perto"
	case TierClose:
		return "perto"
	case TierFar:
		return "longe"
	case TierVeryFar:
		return "muito longe"
	default:
		return "fora da lista"
	}
}

// Proximity is the scorer's verdict for one guess.
// Distance is InfiniteDistance when either word is unranked.
type Proximity struct {
	Distance   int
	Tier       Tier
	Percentage int
}

// Ranked reports whether the distance is finite.
func (p Proximity) Ranked() bool { return p.Distance != InfiniteDistance }

// Rules are the scoring and hint constants of a round.
type Rules struct {
	RoundPoints  int           // points a fresh round starts with
	HintBudget   int           // hints available per round
	HintPenalty  int           // points deducted per hint
	PenaltyEvery int           // every Nth submitted guess costs GuessPenalty; 0 disables
	GuessPenalty int           // points deducted on every PenaltyEvery-th guess
	AdvanceDelay time.Duration // pause between a win and the next round
}

// DefaultRules returns the stock rule set.
func DefaultRules() Rules {
	return Rules{
		RoundPoints:  100,
		HintBudget:   3,
		HintPenalty:  10,
		PenaltyEvery: 10,
		GuessPenalty: 1,
		AdvanceDelay: 600 * time.Millisecond,
	}
}

// HintKind identifies which escalation step a hint belongs to.
type HintKind string

const (
	HintLength      HintKind = "length"
	HintFirstLetter HintKind = "first_letter"
	HintNearest     HintKind = "nearest"
	HintAnswer      HintKind = "answer"
)

// Hint is one revealed clue.
type Hint struct {
	Step    int      `json:"step"`
	Kind    HintKind `json:"kind"`
	Value   string   `json:"value"`
	Message string   `json:"message"`
}

// Snapshot is a read-only view of a player's controller.
type Snapshot struct {
	Player        string             `json:"player"`
	Name          string             `json:"name"`
	Phase         Phase              `json:"phase"`
	Category      int                `json:"category"`
	CategoryName  string             `json:"categoryName"`
	Word          int                `json:"word"`
	AbsoluteRound int                `json:"absoluteRound"`
	TotalRounds   int                `json:"totalRounds"`
	Points        int                `json:"points"`
	HintsLeft     int                `json:"hintsLeft"`
	Tried         []string           `json:"tried"`
	History       []store.GuessEntry `json:"history"`
	Stats         store.Stats        `json:"stats"`
	Onboarded     bool               `json:"onboarded"`
	Message       string             `json:"message,omitempty"`
}

// GuessResult is returned by SubmitGuess for an accepted guess.
type GuessResult struct {
	Guess     string
	Proximity Proximity
	Message   string
	Won       bool
	Penalized bool
	Points    int
	Attempts  int
}

// HintResult is returned by RequestHint.
type HintResult struct {
	Hint      Hint
	HintsLeft int
	Points    int
}

// StartResult is returned by every operation that (re)starts a round.
// Skipped lists categories that were found complete while cascading.
type StartResult struct {
	Snapshot Snapshot
	Skipped  []int
}

// CategoryOverview summarizes one category for the chooser screen.
type CategoryOverview struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Words int    `json:"words"`
	progress.Counts
}

// SolvedWord is one entry of the completion feed.
type SolvedWord struct {
	Word string    `json:"word"`
	At   time.Time `json:"at"`
}

// SolvedGroup groups the completion feed by category, in first-solve order.
type SolvedGroup struct {
	Category int          `json:"category"`
	Name     string       `json:"name"`
	Words    []SolvedWord `json:"words"`
}

// Overview is the category chooser / progress screen.
type Overview struct {
	Categories []CategoryOverview    `json:"categories"`
	Global     progress.GlobalCounts `json:"global"`
	Stats      store.Stats           `json:"stats"`
	Solved     []SolvedGroup         `json:"solved"`
}
