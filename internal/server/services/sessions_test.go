package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/dmitrijs2005/moodjournal/internal/server/auth"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
)

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func TestOpen_CommitsAndSignsToken(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeSessionsRepo{}
	s := NewSessionService(db, &fakeRepoManager{s: repo}, "k", time.Hour)
	s.now = func() time.Time { return fixedNow }

	token, exp, err := s.Open(context.Background(), &models.Account{ID: "a1"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !exp.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("expiry: got %v", exp)
	}
	if repo.created == nil || repo.created.AccountID != "a1" || repo.created.ID == "" {
		t.Fatalf("session row not created: %+v", repo.created)
	}

	claims, err := auth.ParseToken(token, []byte("k"))
	if err != nil {
		t.Fatalf("token must parse: %v", err)
	}
	if claims.SessionID != repo.created.ID || claims.AccountID != "a1" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestOpen_CreateErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewSessionService(db, &fakeRepoManager{s: &fakeSessionsRepo{createErr: errBoom{}}}, "k", time.Hour)

	_, _, err := s.Open(context.Background(), &models.Account{ID: "a1"})
	if err == nil || !regexp.MustCompile(`error creating session: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped create error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestOpen_ExpireErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeSessionsRepo{expireErr: errBoom{}}
	s := NewSessionService(db, &fakeRepoManager{s: repo}, "k", time.Hour)

	_, _, err := s.Open(context.Background(), &models.Account{ID: "a1"})
	if err == nil || !regexp.MustCompile(`error deleting expired sessions: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("create must not run after a failed cleanup")
	}
}

func resolveFixture(t *testing.T, session *models.Session, sessErr error, account *models.Account, accErr error) (*SessionService, string) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })

	rm := &fakeRepoManager{
		s: &fakeSessionsRepo{findOut: session, findErr: sessErr},
		a: &fakeAccountsRepo{getOut: account, getErr: accErr},
	}
	s := NewSessionService(db, rm, "k", time.Hour)
	s.now = func() time.Time { return fixedNow }

	token, err := auth.GenerateToken("s1", "a1", []byte("k"), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return s, token
}

func TestResolve_Valid(t *testing.T) {
	s, token := resolveFixture(t,
		&models.Session{ID: "s1", AccountID: "a1", ExpiresAt: fixedNow.Add(time.Minute)}, nil,
		&models.Account{ID: "a1", UserName: "alice"}, nil)

	id, err := s.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if *id != (models.Identity{AccountID: "a1", UserName: "alice", SessionID: "s1"}) {
		t.Fatalf("identity: %+v", id)
	}
}

func TestResolve_Rejections(t *testing.T) {
	live := &models.Session{ID: "s1", AccountID: "a1", ExpiresAt: fixedNow.Add(time.Minute)}
	alice := &models.Account{ID: "a1", UserName: "alice"}

	tests := []struct {
		name    string
		session *models.Session
		sessErr error
		account *models.Account
		accErr  error
		want    error
	}{
		{"session gone", nil, common.ErrorNotFound, alice, nil, common.ErrorUnauthorized},
		{"session expired", &models.Session{ID: "s1", AccountID: "a1", ExpiresAt: fixedNow}, nil, alice, nil, common.ErrSessionExpired},
		{"account mismatch", &models.Session{ID: "s1", AccountID: "other", ExpiresAt: fixedNow.Add(time.Minute)}, nil, alice, nil, common.ErrInvalidToken},
		{"account gone", live, nil, nil, common.ErrorNotFound, common.ErrorUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, token := resolveFixture(t, tc.session, tc.sessErr, tc.account, tc.accErr)
			_, err := s.Resolve(context.Background(), token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestResolve_BadTokens(t *testing.T) {
	s, _ := resolveFixture(t, nil, nil, nil, nil)

	if _, err := s.Resolve(context.Background(), ""); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("empty token: got %v", err)
	}
	if _, err := s.Resolve(context.Background(), "garbage"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("garbage token: got %v", err)
	}

	forged, _ := auth.GenerateToken("s1", "a1", []byte("other-secret"), time.Now().Add(time.Hour))
	if _, err := s.Resolve(context.Background(), forged); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("forged token: got %v", err)
	}
}

func TestResolve_RepoErr(t *testing.T) {
	s, token := resolveFixture(t, nil, errBoom{}, nil, nil)
	_, err := s.Resolve(context.Background(), token)
	if err == nil || !regexp.MustCompile(`error searching session: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}
}

func TestCloseAndPurge(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeSessionsRepo{purgeN: 3}
	s := NewSessionService(db, &fakeRepoManager{s: repo}, "k", time.Hour)

	if err := s.Close(context.Background(), "s9"); err != nil || repo.deleted != "s9" {
		t.Fatalf("Close: deleted=%q err=%v", repo.deleted, err)
	}
	n, err := s.PurgeExpired(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("PurgeExpired: got (%d, %v)", n, err)
	}

	repo.deleteErr = errBoom{}
	repo.purgeErr = errBoom{}
	if err := s.Close(context.Background(), "s9"); err == nil {
		t.Fatalf("Close must surface repo error")
	}
	if _, err := s.PurgeExpired(context.Background()); err == nil {
		t.Fatalf("PurgeExpired must surface repo error")
	}
}
