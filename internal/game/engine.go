// internal/game/engine.go
//
// Round controller for a single player.
// Responsibilities:
//   - Resolve the next word through the progress tracker, cascading across
//     categories, and (re)start rounds.
//   - Score guesses, enforce the duplicate guard and the every-Nth-guess penalty.
//   - Serve escalating hints (see hints.go).
//   - On a win: award points, persist stats/progress/solved log, mirror the total,
//     emit a log event and schedule the delayed auto-advance.
//
// Notes:
//   - Every exported method holds c.mu for its whole duration, so actions of one
//     player never interleave and each read-modify-write of persisted state is a unit.
//   - The auto-advance is a time.AfterFunc tagged with a generation counter; any
//     later action bumps the generation so a stale timer does nothing.
//   - Score mirror and event logger are fire-and-forget; they must not block.

package game

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/contexto/internal/events"
	"github.com/robalobadob/contexto/internal/history"
	"github.com/robalobadob/contexto/internal/progress"
	"github.com/robalobadob/contexto/internal/store"
	"github.com/robalobadob/contexto/internal/words"
)

// AnonymousName is shown for players who never entered a name. Anonymous totals
// are not mirrored.
const AnonymousName = "—"

// ScoreMirror receives a player's cumulative total after every win.
type ScoreMirror interface {
	UpsertScore(player string, total int)
}

// EventLogger receives gameplay events.
type EventLogger interface {
	LogEvent(ev events.Event)
}

// Options wires a Controller to its collaborators.
type Options struct {
	Dataset *words.Dataset
	Backend store.Backend
	Mirror  ScoreMirror // optional
	Events  EventLogger // optional
	Rules   Rules
	Now     func() time.Time // optional, defaults to time.Now
}

// round is the in-memory state of the word being played.
type round struct {
	category  int
	word      int
	answer    string // normalized token
	literal   string // dataset spelling
	index     *RankIndex
	points    int
	hintsLeft int
	hintStep  int
	submitted int
	tried     []string // most recent first
}

// Controller drives one player's rounds.
type Controller struct {
	mu sync.Mutex

	player   string
	dataset  *words.Dataset
	state    *store.State
	progress *progress.Tracker
	history  *history.Store
	mirror   ScoreMirror
	events   EventLogger
	rules    Rules
	now      func() time.Time

	phase      Phase
	category   int
	round      *round
	timer      *time.Timer
	generation uint64
}

// NewController builds a controller whose persisted state lives under the
// player's namespace in opts.Backend.
func NewController(player string, opts Options) *Controller {
	st := store.NewState(opts.Backend, player)
	c := &Controller{
		player:   player,
		dataset:  opts.Dataset,
		state:    st,
		progress: progress.NewTracker(st, opts.Dataset),
		history:  history.New(st),
		mirror:   opts.Mirror,
		events:   opts.Events,
		rules:    opts.Rules,
		now:      opts.Now,
		phase:    PhaseAwaitingStart,
	}
	if c.mirror == nil {
		c.mirror = nopMirror{}
	}
	if c.events == nil {
		c.events = nopEvents{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Player returns the player ID this controller is scoped to.
func (c *Controller) Player() string { return c.player }

// Begin records the display name (blank keeps the stored one), marks the player
// onboarded and resumes at the last played category.
func (c *Controller) Begin(ctx context.Context, name string) StartResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelAdvanceLocked()

	if name = strings.TrimSpace(name); name != "" {
		if err := c.state.SavePlayerName(ctx, name); err != nil {
			log.Warn().Err(err).Str("player", c.player).Msg("persist player name")
		}
	}
	if err := c.state.SetOnboarded(ctx); err != nil {
		log.Warn().Err(err).Str("player", c.player).Msg("persist onboarding flag")
	}

	c.category = 0
	if last, ok := c.state.LastCategory(ctx); ok && last >= 0 && last < c.dataset.Len() {
		c.category = last
	}
	c.phase = PhaseAwaitingStart
	return c.startLocked(ctx)
}

// SelectCategory jumps to category idx and starts its first unfinished word.
// A completed category cascades forward like StartRound.
func (c *Controller) SelectCategory(ctx context.Context, idx int) (StartResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx < 0 || idx >= c.dataset.Len() {
		return StartResult{}, ErrUnknownCategory
	}
	c.cancelAdvanceLocked()
	c.category = idx
	c.phase = PhaseAwaitingStart
	return c.startLocked(ctx), nil
}

// StartRound (re)starts the current category's first unfinished word with fresh
// points and hints. It is a no-op once every category is complete.
func (c *Controller) StartRound(ctx context.Context) StartResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == PhaseAllComplete {
		return StartResult{Snapshot: c.snapshotLocked(ctx)}
	}
	c.cancelAdvanceLocked()
	return c.startLocked(ctx)
}

// SubmitGuess scores the first token of raw against the current answer.
func (c *Controller) SubmitGuess(ctx context.Context, raw string) (GuessResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.round
	if c.phase != PhaseRoundActive || r == nil {
		return GuessResult{}, ErrRoundNotActive
	}
	tok := words.FirstToken(raw)
	if tok == "" {
		return GuessResult{}, ErrEmptyGuess
	}
	if slices.Contains(r.tried, tok) {
		return GuessResult{}, ErrAlreadyTried
	}

	prox := Score(tok, r.answer, r.index)
	dist := prox.Distance
	if !prox.Ranked() {
		dist = -1
	}
	_ = c.history.Append(ctx, r.category, r.word, store.GuessEntry{
		Guess:      tok,
		Tier:       string(prox.Tier),
		Distance:   dist,
		Percentage: prox.Percentage,
		At:         c.now(),
	})
	r.tried = append([]string{tok}, r.tried...)
	r.submitted++

	res := GuessResult{Guess: tok, Proximity: prox, Attempts: r.submitted}
	if c.rules.PenaltyEvery > 0 && r.submitted%c.rules.PenaltyEvery == 0 {
		r.points = max(0, r.points-c.rules.GuessPenalty)
		res.Penalized = true
	}

	if tok == r.answer {
		res.Won = true
		res.Message = msgWon
		res.Points = r.points
		c.winLocked(ctx)
		return res, nil
	}
	res.Message = proximityMessage(prox)
	res.Points = r.points
	return res, nil
}

// RequestHint reveals the next clue, spending one hint and HintPenalty points.
func (c *Controller) RequestHint(ctx context.Context) (HintResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.round
	if c.phase != PhaseRoundActive || r == nil {
		return HintResult{}, ErrRoundNotActive
	}
	if r.hintsLeft <= 0 {
		return HintResult{}, ErrNoHintsLeft
	}

	hint := nextHint(r)
	r.hintsLeft--
	r.hintStep++
	r.points = max(0, r.points-c.rules.HintPenalty)

	c.events.LogEvent(events.Event{
		Action:    events.ActionHint,
		Player:    c.displayNameLocked(ctx),
		Timestamp: c.now(),
		Fields: map[string]any{
			"category":  c.categoryName(r.category),
			"wordIndex": r.word,
			"hintStep":  r.hintStep,
		},
	})
	return HintResult{Hint: hint, HintsLeft: r.hintsLeft, Points: r.points}, nil
}

// Reset clears every persisted collection except the player name, cancels a
// pending auto-advance and returns to awaiting_start.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelAdvanceLocked()

	c.round = nil
	c.category = 0
	c.phase = PhaseAwaitingStart
	if err := c.state.Reset(ctx); err != nil {
		log.Error().Err(err).Str("player", c.player).Msg("reset state")
		return fmt.Errorf("reset %s: %w", c.player, err)
	}
	c.events.LogEvent(events.Event{
		Action:    events.ActionReset,
		Player:    c.displayNameLocked(ctx),
		Timestamp: c.now(),
	})
	log.Info().Str("player", c.player).Msg("progress reset")
	return nil
}

// Snapshot returns the current view of the controller.
func (c *Controller) Snapshot(ctx context.Context) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(ctx)
}

// Overview summarizes progress per category plus the solved feed.
func (c *Controller) Overview(ctx context.Context) Overview {
	c.mu.Lock()
	defer c.mu.Unlock()

	cats := c.dataset.Categories()
	return Overview{
		Categories: lo.Map(cats, func(cat words.Category, i int) CategoryOverview {
			return CategoryOverview{
				Index:  i,
				Name:   cat.Name,
				Words:  len(cat.Words),
				Counts: c.progress.Counts(ctx, i, len(cat.Words)),
			}
		}),
		Global: c.progress.GlobalCounts(ctx),
		Stats:  c.state.Stats(ctx),
		Solved: c.solvedFeedLocked(ctx),
	}
}

// History returns the guess log of one word, most recent first.
func (c *Controller) History(ctx context.Context, cat, word int) ([]store.GuessEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if word < 0 || word >= c.dataset.WordCount(cat) {
		return nil, ErrUnknownCategory
	}
	return c.history.Get(ctx, cat, word), nil
}

// Close cancels a pending auto-advance.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelAdvanceLocked()
}

// startLocked visits categories from c.category forward, wrapping once, and
// begins the first unfinished word it finds.
func (c *Controller) startLocked(ctx context.Context) StartResult {
	n := c.dataset.Len()
	start := c.category
	if start < 0 || start >= n {
		start = 0
	}

	var skipped []int
	for step := 0; step < n; step++ {
		cat := (start + step) % n
		count := c.dataset.WordCount(cat)
		if word := c.progress.FirstUnfinished(ctx, cat, count); word < count {
			c.beginRoundLocked(ctx, cat, word)
			return StartResult{Snapshot: c.snapshotLocked(ctx), Skipped: skipped}
		}
		c.phase = PhaseCategoryComplete
		skipped = append(skipped, cat)
		log.Debug().Str("player", c.player).Int("category", cat).Msg("category complete")
	}

	c.round = nil
	c.phase = PhaseAllComplete
	log.Info().Str("player", c.player).Msg("all categories complete")
	return StartResult{Snapshot: c.snapshotLocked(ctx), Skipped: skipped}
}

func (c *Controller) beginRoundLocked(ctx context.Context, cat, word int) {
	category, _ := c.dataset.Category(cat)
	literal := category.Words[word]
	answer := words.Normalize(literal)

	prior := lo.Map(c.history.Get(ctx, cat, word), func(e store.GuessEntry, _ int) string { return e.Guess })
	tried := lo.Without(lo.Uniq(prior), answer)

	c.category = cat
	c.round = &round{
		category:  cat,
		word:      word,
		answer:    answer,
		literal:   literal,
		index:     BuildRankIndex(category.Words),
		points:    c.rules.RoundPoints,
		hintsLeft: c.rules.HintBudget,
		tried:     tried,
	}
	c.phase = PhaseRoundActive
	if err := c.state.SaveLastCategory(ctx, cat); err != nil {
		log.Warn().Err(err).Str("player", c.player).Msg("persist last category")
	}
	log.Debug().Str("player", c.player).Int("category", cat).Int("word", word).Int("tried", len(tried)).Msg("round started")
}

func (c *Controller) winLocked(ctx context.Context) {
	r := c.round

	stats := c.state.Stats(ctx)
	stats.TotalPoints += r.points
	stats.RoundsPlayed++
	stats.RoundsWon++
	if err := c.state.SaveStats(ctx, stats); err != nil {
		log.Warn().Err(err).Str("player", c.player).Msg("persist stats")
	}
	c.progress.MarkCompleted(ctx, r.category, r.word, c.dataset.WordCount(r.category))
	c.recordSolvedLocked(ctx, r.category, r.word)

	name := c.displayNameLocked(ctx)
	if name != AnonymousName {
		c.mirror.UpsertScore(name, stats.TotalPoints)
	}
	c.events.LogEvent(events.Event{
		Action:    events.ActionSolve,
		Player:    name,
		Timestamp: c.now(),
		Fields: map[string]any{
			"category": c.categoryName(r.category),
			"word":     r.answer,
			"attempts": r.submitted,
			"points":   r.points,
		},
	})
	log.Info().Str("player", c.player).Int("category", r.category).Int("word", r.word).
		Int("points", r.points).Int("total", stats.TotalPoints).Msg("round won")

	c.phase = PhaseRoundWon
	c.scheduleAdvanceLocked()
}

func (c *Controller) recordSolvedLocked(ctx context.Context, cat, word int) {
	recs := c.state.Solved(ctx)
	if lo.ContainsBy(recs, func(s store.SolvedRecord) bool { return s.Category == cat && s.Word == word }) {
		return
	}
	recs = append(recs, store.SolvedRecord{Category: cat, Word: word, At: c.now()})
	if err := c.state.SaveSolved(ctx, recs); err != nil {
		log.Warn().Err(err).Str("player", c.player).Msg("persist solved log")
	}
}

func (c *Controller) scheduleAdvanceLocked() {
	c.generation++
	gen := c.generation
	c.timer = time.AfterFunc(c.rules.AdvanceDelay, func() { c.advance(gen) })
}

func (c *Controller) advance(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.phase != PhaseRoundWon {
		return
	}
	c.timer = nil
	c.startLocked(context.Background())
}

func (c *Controller) cancelAdvanceLocked() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) snapshotLocked(ctx context.Context) Snapshot {
	s := Snapshot{
		Player:      c.player,
		Name:        c.displayNameLocked(ctx),
		Phase:       c.phase,
		Category:    c.category,
		TotalRounds: c.dataset.TotalWords(),
		Tried:       []string{},
		History:     []store.GuessEntry{},
		Stats:       c.state.Stats(ctx),
		Onboarded:   c.state.Onboarded(ctx),
	}
	s.CategoryName = c.categoryName(c.category)
	if r := c.round; r != nil {
		s.Word = r.word
		s.Points = r.points
		s.HintsLeft = r.hintsLeft
		s.Tried = append(s.Tried, r.tried...)
		s.History = c.history.Get(ctx, r.category, r.word)
		s.AbsoluteRound = c.absoluteRound(r.category, r.word)
	}
	if c.phase == PhaseAllComplete {
		s.Message = msgAllComplete
	}
	return s
}

// solvedFeedLocked groups the solved log by category in order of first solve.
func (c *Controller) solvedFeedLocked(ctx context.Context) []SolvedGroup {
	recs := lo.Filter(c.state.Solved(ctx), func(s store.SolvedRecord, _ int) bool {
		return s.Word >= 0 && s.Word < c.dataset.WordCount(s.Category)
	})
	slices.SortStableFunc(recs, func(a, b store.SolvedRecord) int { return a.At.Compare(b.At) })

	order := lo.Uniq(lo.Map(recs, func(s store.SolvedRecord, _ int) int { return s.Category }))
	grouped := lo.GroupBy(recs, func(s store.SolvedRecord) int { return s.Category })
	return lo.Map(order, func(ci int, _ int) SolvedGroup {
		cat, _ := c.dataset.Category(ci)
		return SolvedGroup{
			Category: ci,
			Name:     cat.Name,
			Words: lo.Map(grouped[ci], func(s store.SolvedRecord, _ int) SolvedWord {
				return SolvedWord{Word: cat.Words[s.Word], At: s.At}
			}),
		}
	})
}

func (c *Controller) absoluteRound(cat, word int) int {
	n := word + 1
	for i := 0; i < cat; i++ {
		n += c.dataset.WordCount(i)
	}
	return n
}

func (c *Controller) categoryName(idx int) string {
	cat, _ := c.dataset.Category(idx)
	return cat.Name
}

func (c *Controller) displayNameLocked(ctx context.Context) string {
	if name := c.state.PlayerName(ctx); name != "" {
		return name
	}
	return AnonymousName
}

func proximityMessage(p Proximity) string {
	if !p.Ranked() {
		return fmt.Sprintf(msgProximityNoPct, p.Tier.Icon(), p.Tier.Label())
	}
	return fmt.Sprintf(msgProximity, p.Tier.Icon(), p.Percentage)
}

type nopMirror struct{}

func (nopMirror) UpsertScore(string, int) {}

type nopEvents struct{}

func (nopEvents) LogEvent(events.Event) {}
