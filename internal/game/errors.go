package game

import "errors"

// Input errors. They never mutate state; transports surface Message(err) to the player.
var (
	ErrEmptyGuess      = errors.New("empty guess")
	ErrAlreadyTried    = errors.New("already tried")
	ErrNoHintsLeft     = errors.New("no hints left")
	ErrRoundNotActive  = errors.New("round not active")
	ErrUnknownCategory = errors.New("unknown category")
)

// Player-facing texts.
const (
	msgEmptyGuess     = "Digite um palpite."
	msgAlreadyTried   = "Você já tentou essa palavra."
	msgNoHintsLeft    = "Sem mais dicas nesta rodada."
	msgRoundInactive  = "Nenhuma rodada em andamento."
	msgUnknownCat     = "Categoria inexistente."
	msgWon            = "🎉 Parabéns! Próxima palavra…"
	msgAllComplete    = "🎉 Parabéns! Você concluiu todas as categorias."
	msgHintLength     = "A resposta tem %d letras."
	msgHintFirst      = "Começa com \"%s\"."
	msgHintNearest    = "Uma palavra bem próxima é \"%s\"."
	msgHintNoNearest  = "Sem palavra próxima disponível."
	msgHintAnswer     = "A resposta é \"%s\"."
	msgProximity      = "Proximidade: %s — %d%%"
	msgProximityNoPct = "Proximidade: %s — %s"
)

// Message returns the player-facing text for an input error, or "" for anything else.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrEmptyGuess):
		return msgEmptyGuess
	case errors.Is(err, ErrAlreadyTried):
		return msgAlreadyTried
	case errors.Is(err, ErrNoHintsLeft):
		return msgNoHintsLeft
	case errors.Is(err, ErrRoundNotActive):
		return msgRoundInactive
	case errors.Is(err, ErrUnknownCategory):
		return msgUnknownCat
	default:
		return ""
	}
}

// IsInputError reports whether err is one of the recoverable player input errors.
func IsInputError(err error) bool { return Message(err) != "" }
