// Package services contains server-side business logic. This file implements
// AccountService, which registers accounts and verifies username/PIN pairs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/dmitrijs2005/moodjournal/internal/server/auth"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/repomanager"
)

const (
	maxUserNameLen = 100
	maxPinBytes    = 72
)

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager) *AccountService {
	return &AccountService{db: db, repomanager: m}
}

// Register creates an account with a bcrypt hash of pin. A taken username
// yields common.ErrorDuplicateUsername and leaves the store unchanged.
func (s *AccountService) Register(ctx context.Context, username, pin string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, pin); err != nil {
		return nil, err
	}

	hash, err := auth.HashPin(pin)
	if err != nil {
		return nil, fmt.Errorf("error hashing pin: %w", err)
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.Create(ctx, &models.Account{UserName: username, PinHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return account, nil
}

// Authenticate returns the account when pin matches its stored hash.
// Unknown usernames and wrong PINs both yield common.ErrorUnauthorized.
func (s *AccountService) Authenticate(ctx context.Context, username, pin string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || pin == "" {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn one comparison so response time does not reveal existence
			auth.CheckPin(nil, pin)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: error searching account: %w", common.ErrorInternal, err)
	}

	if !auth.CheckPin(account.PinHash, pin) {
		return nil, common.ErrorUnauthorized
	}

	return account, nil
}

func validateCredentials(username, pin string) error {
	n := utf8.RuneCountInString(username)
	if n == 0 {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if n > maxUserNameLen {
		return fmt.Errorf("%w: username longer than %d characters", common.ErrorValidation, maxUserNameLen)
	}
	if pin == "" {
		return fmt.Errorf("%w: pin is required", common.ErrorValidation)
	}
	if len(pin) > maxPinBytes {
		return fmt.Errorf("%w: pin longer than %d bytes", common.ErrorValidation, maxPinBytes)
	}
	return nil
}
