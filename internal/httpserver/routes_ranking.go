// internal/httpserver/routes_ranking.go
//
// Leaderboard endpoints.
//   - GET /leaderboard?limit=N → top N totals (capped by the mirror's top-N)
//   - GET /leaderboard/live    → websocket; pushes the top-N JSON on connect and
//     after every applied score upsert

package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/contexto/internal/ranking"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

type leaderboardRes struct {
	Entries []ranking.Entry `json:"entries"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Ranking.TopN
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_limit", "")
			return
		}
		limit = n
	}
	top, err := s.board.Top(r.Context(), limit)
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard query")
		writeError(w, http.StatusServiceUnavailable, "leaderboard_unavailable", "")
		return
	}
	if top == nil {
		top = []ranking.Entry{}
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Entries: top})
}

func (s *Server) upgrader() websocket.Upgrader {
	origin := s.cfg.Server.ClientOrigin
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || o == origin || o == "http://"+r.Host || o == "https://"+r.Host
		},
	}
}

// handleLiveLeaderboard upgrades the connection and streams leaderboard updates.
func (s *Server) handleLiveLeaderboard(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade")
		return
	}

	updates, cancel := s.board.Subscribe()
	feed := &liveFeed{conn: conn, updates: updates, done: make(chan struct{})}

	top, err := s.board.Top(r.Context(), s.cfg.Ranking.TopN)
	if err != nil {
		log.Warn().Err(err).Msg("initial leaderboard")
	}
	if top == nil {
		top = []ranking.Entry{}
	}

	go feed.writePump(top)
	feed.readPump()
	cancel()
}

// liveFeed is one websocket leaderboard subscriber.
type liveFeed struct {
	conn    *websocket.Conn
	updates <-chan []ranking.Entry
	done    chan struct{}
}

// readPump discards client messages and keeps the pong deadline fresh. It
// returns when the peer goes away.
func (f *liveFeed) readPump() {
	defer func() {
		close(f.done)
		f.conn.Close()
	}()

	f.conn.SetReadLimit(maxMessageSize)
	_ = f.conn.SetReadDeadline(time.Now().Add(pongWait))
	f.conn.SetPongHandler(func(string) error {
		return f.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := f.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump sends the initial board, then every update, plus periodic pings.
func (f *liveFeed) writePump(initial []ranking.Entry) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		f.conn.Close()
	}()

	if !f.send(initial) {
		return
	}
	for {
		select {
		case <-f.done:
			return
		case top, ok := <-f.updates:
			if !ok {
				_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = f.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !f.send(top) {
				return
			}
		case <-ticker.C:
			_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *liveFeed) send(top []ranking.Entry) bool {
	_ = f.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := f.conn.WriteJSON(leaderboardRes{Entries: top}); err != nil {
		log.Debug().Err(err).Msg("websocket write")
		return false
	}
	return true
}
