package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/moodjournal/internal/dbx"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/entries"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/sessions"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type fakeAccountsRepo struct {
	createOut *models.Account
	createErr error
	created   *models.Account

	getOut *models.Account
	getErr error
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.created = a
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return a, nil
}
func (f *fakeAccountsRepo) GetByUserName(ctx context.Context, userName string) (*models.Account, error) {
	return f.getOut, f.getErr
}
func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return f.getOut, f.getErr
}
func (f *fakeAccountsRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakeEntriesRepo struct {
	createErr error
	created   *models.Entry

	listOut   []*models.Entry
	listErr   error
	listOrder models.SortOrder

	counts    map[int]int
	countsErr error
}

func (f *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	e.ID = "e1"
	e.CreatedAt = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	f.created = e
	return e, nil
}
func (f *fakeEntriesRepo) ListByAccount(ctx context.Context, accountID string, order models.SortOrder) ([]*models.Entry, error) {
	f.listOrder = order
	return f.listOut, f.listErr
}
func (f *fakeEntriesRepo) MoodCounts(ctx context.Context, accountID string) (map[int]int, error) {
	return f.counts, f.countsErr
}

type fakeSessionsRepo struct {
	createErr error
	created   *models.Session

	findOut *models.Session
	findErr error

	deleteErr error
	deleted   string

	purgeN   int64
	purgeErr error

	expireErr error
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) error {
	f.created = s
	return f.createErr
}
func (f *fakeSessionsRepo) Find(ctx context.Context, id string) (*models.Session, error) {
	return f.findOut, f.findErr
}
func (f *fakeSessionsRepo) Delete(ctx context.Context, id string) error {
	f.deleted = id
	return f.deleteErr
}
func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.purgeN, f.purgeErr
}
func (f *fakeSessionsRepo) DeleteExpiredForAccount(ctx context.Context, accountID string, now time.Time) error {
	return f.expireErr
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	e *fakeEntriesRepo
	s *fakeSessionsRepo
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository { return m.a }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository { return m.e }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessions.Repository { return m.s }
