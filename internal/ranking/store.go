package ranking

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"
)

// Entry is one leaderboard row.
type Entry struct {
	Player      string    `json:"player"`
	TotalPoints int       `json:"totalPoints"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Store is the ranked score table behind the mirror.
type Store interface {
	// Upsert sets the player's total, creating the row when missing.
	Upsert(ctx context.Context, player string, total int) error
	// Top returns the best limit rows, highest total first; ties go to the
	// earliest update.
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// SQLStore keeps the ranking in the sqlite "ranking" table.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db, now: time.Now} }

func (s *SQLStore) Upsert(ctx context.Context, player string, total int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ranking(player, total_points, updated_at) VALUES(?,?,?)
		 ON CONFLICT(player) DO UPDATE SET total_points = excluded.total_points, updated_at = excluded.updated_at`,
		player, total, s.now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLStore) Top(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, total_points, updated_at
		 FROM ranking
		 ORDER BY total_points DESC, updated_at ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		if err := rows.Scan(&e.Player, &e.TotalPoints, &ts); err != nil {
			return nil, err
		}
		e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// MemoryStore is the process-local Store used with the memory storage driver.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]Entry
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Entry), now: time.Now}
}

func (m *MemoryStore) Upsert(_ context.Context, player string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[player] = Entry{Player: player, TotalPoints: total, UpdatedAt: m.now().UTC()}
	return nil
}

func (m *MemoryStore) Top(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		return out[i].Player < out[j].Player
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
