// Package memory provides map-backed repositories satisfying the same
// interfaces as the PostgreSQL ones. The DBTX handed to the factories is
// ignored; all repositories of one manager share a single store.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/dmitrijs2005/moodjournal/internal/dbx"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/entries"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/sessions"
	"github.com/google/uuid"
)

type store struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	byName   map[string]string
	entries  []*models.Entry
	sessions map[string]*models.Session
	now      func() time.Time
}

// InMemoryRepositoryManager vends repositories over one in-process store.
type InMemoryRepositoryManager struct {
	s *store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{s: &store{
		accounts: make(map[string]*models.Account),
		byName:   make(map[string]string),
		sessions: make(map[string]*models.Session),
		now:      time.Now,
	}}
}

// SetClock replaces the time source used for CreatedAt stamps.
func (m *InMemoryRepositoryManager) SetClock(now func() time.Time) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.now = now
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *InMemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return (*accountRepo)(m.s)
}

func (m *InMemoryRepositoryManager) Entries(dbx.DBTX) entries.Repository {
	return (*entryRepo)(m.s)
}

func (m *InMemoryRepositoryManager) Sessions(dbx.DBTX) sessions.Repository {
	return (*sessionRepo)(m.s)
}

type accountRepo store

func (r *accountRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[a.UserName]; taken {
		return nil, common.ErrorDuplicateUsername
	}
	cp := *a
	cp.ID = uuid.NewString()
	cp.CreatedAt = r.now()
	r.accounts[cp.ID] = &cp
	r.byName[cp.UserName] = cp.ID

	a.ID, a.CreatedAt = cp.ID, cp.CreatedAt
	return a, nil
}

func (r *accountRepo) GetByUserName(_ context.Context, userName string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byName[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r.accounts[id]
	return &cp, nil
}

func (r *accountRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *accountRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.accounts)), nil
}

type entryRepo store

func (r *entryRepo) Create(_ context.Context, e *models.Entry) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[e.AccountID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	cp.ID = uuid.NewString()
	cp.CreatedAt = r.now()
	r.entries = append(r.entries, &cp)

	e.ID, e.CreatedAt = cp.ID, cp.CreatedAt
	return e, nil
}

// ListByAccount orders by CreatedAt and falls back to insertion order for
// equal stamps, mirroring the (created_at, id) ordering of the SQL store.
func (r *entryRepo) ListByAccount(_ context.Context, accountID string, order models.SortOrder) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Entry
	for _, e := range r.entries {
		if e.AccountID == accountID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if order == models.Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r *entryRepo) MoodCounts(_ context.Context, accountID string) (map[int]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[int]int)
	for _, e := range r.entries {
		if e.AccountID == accountID {
			counts[e.Mood]++
		}
	}
	return counts, nil
}

type sessionRepo store

func (r *sessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	cp.CreatedAt = r.now()
	r.sessions[cp.ID] = &cp
	return nil
}

func (r *sessionRepo) Find(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *sessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *sessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.sessions {
		if !s.ExpiresAt.After(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *sessionRepo) DeleteExpiredForAccount(_ context.Context, accountID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.AccountID == accountID && !s.ExpiresAt.After(now) {
			delete(r.sessions, id)
		}
	}
	return nil
}
