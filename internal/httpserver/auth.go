// internal/httpserver/auth.go
//
// Player tokens.
// POST /session hands out an HS256 JWT carrying a player ID (uuid) and display
// name, both as a cookie and in the body. Player routes require that token via
// Authorization: Bearer or the cookie. A request that already carries a valid
// token keeps its player ID, so renaming never loses progress.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/contexto/internal/config"
)

const maxNameLen = 40

type playerClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	cookie string
	secure bool
	now    func() time.Time
}

func newTokenIssuer(cfg config.AuthConfig) *tokenIssuer {
	return &tokenIssuer{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		cookie: cfg.CookieName,
		secure: cfg.Secure,
		now:    time.Now,
	}
}

// sign creates a token for the player with the configured expiry.
func (t *tokenIssuer) sign(id, name string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, playerClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

func (t *tokenIssuer) parse(raw string) (*playerClaims, error) {
	claims := &playerClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// setAuthCookie writes the token cookie with appropriate security attributes.
func (t *tokenIssuer) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if t.secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     t.cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from the Authorization header or the cookie.
func (t *tokenIssuer) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(t.cookie); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- session endpoint -----------------------------

type sessionReq struct {
	Name string `json:"name"`
}

type sessionRes struct {
	Token     string    `json:"token"`
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var req sessionReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	name := cleanName(req.Name)

	id := ""
	if raw := s.tokens.bearerOrCookie(r); raw != "" {
		if claims, err := s.tokens.parse(raw); err == nil {
			id = claims.Subject
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	tok, exp, err := s.tokens.sign(id, name)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "token_failed", "")
		return
	}
	s.tokens.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, sessionRes{Token: tok, PlayerID: id, Name: name, ExpiresAt: exp})
}

// cleanName trims and caps a display name.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}

// ---------------------------- auth middleware ------------------------------

type ctxPlayerKey struct{}

type authPlayer struct {
	ID   string
	Name string
}

// requirePlayer enforces a valid token and injects authPlayer into the request context.
func (s *Server) requirePlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := s.tokens.bearerOrCookie(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}
			claims, err := s.tokens.parse(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token", "")
				return
			}
			ctx := context.WithValue(r.Context(), ctxPlayerKey{}, &authPlayer{ID: claims.Subject, Name: claims.Name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func playerFrom(ctx context.Context) *authPlayer {
	p, _ := ctx.Value(ctxPlayerKey{}).(*authPlayer)
	return p
}
