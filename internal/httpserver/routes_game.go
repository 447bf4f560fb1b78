// internal/httpserver/routes_game.go
//
// HTTP routes for one player's rounds. Every route requires a player token and
// resolves the player's controller through the session registry:
//   - POST /game/begin          → set name, resume at the last category
//   - POST /game/category/{idx} → jump to a category
//   - POST /game/start          → (re)start the current word
//   - POST /game/guess          → score a guess (rate limited)
//   - POST /game/hint           → reveal the next hint (rate limited)
//   - POST /game/reset          → wipe progress, keep the name
//   - GET  /game/state          → snapshot
//   - GET  /game/overview       → per-category progress and solved feed
//   - GET  /game/history/{cat}/{word} → guess log of one word
//
// Input errors map to 422 {"error": code, "message": player text}.

package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/contexto/internal/game"
	"github.com/robalobadob/contexto/internal/store"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Use(s.requirePlayer())
		r.Post("/begin", s.handleBegin)
		r.Post("/category/{idx}", s.handleSelectCategory)
		r.Post("/start", s.handleStart)
		r.With(s.limiter.middleware).Post("/guess", s.handleGuess)
		r.With(s.limiter.middleware).Post("/hint", s.handleHint)
		r.Post("/reset", s.handleReset)
		r.Get("/state", s.handleState)
		r.Get("/overview", s.handleOverview)
		r.Get("/history/{cat}/{word}", s.handleHistory)
	})
}

// controller returns the calling player's controller.
func (s *Server) controller(r *http.Request) *game.Controller {
	return s.sessions.Get(playerFrom(r.Context()).ID)
}

// startRes is the payload of every route that (re)starts a round.
type startRes struct {
	State   game.Snapshot `json:"state"`
	Skipped []int         `json:"skipped"`
}

func newStartRes(res game.StartResult) startRes {
	skipped := res.Skipped
	if skipped == nil {
		skipped = []int{}
	}
	return startRes{State: res.Snapshot, Skipped: skipped}
}

type beginReq struct {
	Name string `json:"name"`
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	var req beginReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	name := cleanName(req.Name)
	if name == "" {
		name = playerFrom(r.Context()).Name
	}
	writeJSON(w, http.StatusOK, newStartRes(s.controller(r).Begin(r.Context(), name)))
}

func (s *Server) handleSelectCategory(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeGameError(w, game.ErrUnknownCategory)
		return
	}
	res, err := s.controller(r).SelectCategory(r.Context(), idx)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStartRes(res))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStartRes(s.controller(r).StartRound(r.Context())))
}

type guessReq struct {
	Guess string `json:"guess"`
}

type guessRes struct {
	Guess      string        `json:"guess"`
	Distance   *int          `json:"distance"` // null when unranked
	Tier       game.Tier     `json:"tier"`
	Icon       string        `json:"icon"`
	Label      string        `json:"label"`
	Percentage int           `json:"percentage"`
	Won        bool          `json:"won"`
	Penalized  bool          `json:"penalized"`
	Points     int           `json:"points"`
	Attempts   int           `json:"attempts"`
	Message    string        `json:"message"`
	State      game.Snapshot `json:"state"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	ctrl := s.controller(r)
	res, err := ctrl.SubmitGuess(r.Context(), req.Guess)
	if err != nil {
		writeGameError(w, err)
		return
	}

	out := guessRes{
		Guess:      res.Guess,
		Tier:       res.Proximity.Tier,
		Icon:       res.Proximity.Tier.Icon(),
		Label:      res.Proximity.Tier.Label(),
		Percentage: res.Proximity.Percentage,
		Won:        res.Won,
		Penalized:  res.Penalized,
		Points:     res.Points,
		Attempts:   res.Attempts,
		Message:    res.Message,
		State:      ctrl.Snapshot(r.Context()),
	}
	if res.Proximity.Ranked() {
		d := res.Proximity.Distance
		out.Distance = &d
	}
	writeJSON(w, http.StatusOK, out)
}

type hintRes struct {
	game.Hint
	HintsLeft int `json:"hintsLeft"`
	Points    int `json:"points"`
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	res, err := s.controller(r).RequestHint(r.Context())
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hintRes{Hint: res.Hint, HintsLeft: res.HintsLeft, Points: res.Points})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controller(r)
	if err := ctrl.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "reset_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": ctrl.Snapshot(r.Context())})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller(r).Snapshot(r.Context()))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller(r).Overview(r.Context()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	cat, errC := strconv.Atoi(chi.URLParam(r, "cat"))
	word, errW := strconv.Atoi(chi.URLParam(r, "word"))
	if errC != nil || errW != nil {
		writeGameError(w, game.ErrUnknownCategory)
		return
	}
	entries, err := s.controller(r).History(r.Context(), cat, word)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.GuessEntry{"entries": entries})
}

// errorCodes names each input error on the wire.
var errorCodes = map[error]string{
	game.ErrEmptyGuess:      "empty_guess",
	game.ErrAlreadyTried:    "already_tried",
	game.ErrNoHintsLeft:     "no_hints_left",
	game.ErrRoundNotActive:  "round_not_active",
	game.ErrUnknownCategory: "unknown_category",
}

// writeGameError maps engine errors to HTTP responses.
func writeGameError(w http.ResponseWriter, err error) {
	for target, code := range errorCodes {
		if errors.Is(err, target) {
			writeError(w, http.StatusUnprocessableEntity, code, game.Message(err))
			return
		}
	}
	log.Error().Err(err).Msg("game operation failed")
	writeError(w, http.StatusInternalServerError, "internal", "")
}
