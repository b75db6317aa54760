package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/dmitrijs2005/moodjournal/internal/dbx"
	"github.com/dmitrijs2005/moodjournal/internal/server/auth"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// SessionService opens, resolves and closes login sessions. The token handed
// to the client is a signed reference to a server-side session row.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secret      []byte
	validity    time.Duration
	now         func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, secret string, validity time.Duration) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		secret:      []byte(secret),
		validity:    validity,
		now:         time.Now,
	}
}

// Open creates a session for account and returns its signed token together
// with the expiry to put on the cookie. Stale rows of the same account are
// removed in the same transaction.
func (s *SessionService) Open(ctx context.Context, account *models.Account) (string, time.Time, error) {
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		ExpiresAt: now.Add(s.validity),
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sessions(tx)
		if err := repo.DeleteExpiredForAccount(ctx, account.ID, now); err != nil {
			return fmt.Errorf("error deleting expired sessions: %w", err)
		}
		if err := repo.Create(ctx, session); err != nil {
			return fmt.Errorf("error creating session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", time.Time{}, err
	}

	token, err := auth.GenerateToken(session.ID, account.ID, s.secret, session.ExpiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error generating token: %w", err)
	}

	return token, session.ExpiresAt, nil
}

// Resolve maps a token back to the identity it was issued for. Tokens whose
// session row is gone, expired, or bound to another account are rejected.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := auth.ParseToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching session: %w", err)
	}

	if session.AccountID != claims.AccountID {
		return nil, common.ErrInvalidToken
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, common.ErrSessionExpired
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}

	return &models.Identity{
		AccountID: account.ID,
		UserName:  account.UserName,
		SessionID: session.ID,
	}, nil
}

// Close removes the session row; closing an unknown session is not an error.
func (s *SessionService) Close(ctx context.Context, sessionID string) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session whose expiry has passed.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error purging sessions: %w", err)
	}
	return n, nil
}
