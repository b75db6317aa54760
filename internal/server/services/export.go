package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/server/models"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const exportLinkValidity = 15 * time.Minute

// ObjectStore is the blob storage an export is written to.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type journalExport struct {
	UserName   string          `json:"username"`
	ExportedAt time.Time       `json:"exported_at"`
	Entries    []*models.Entry `json:"entries"`
}

// ExportService snapshots an account's journal into object storage and hands
// back a short-lived download link.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	now         func() time.Time
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore) *ExportService {
	return &ExportService{db: db, repomanager: m, store: store, now: time.Now}
}

func exportStorageKey(accountID string, d time.Time) string {
	return fmt.Sprintf("exports/%s/%d/%d/%d/%v.json", accountID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// Export uploads all entries of the identity's account, oldest first, and
// returns a presigned GET URL for the uploaded object.
func (s *ExportService) Export(ctx context.Context, id *models.Identity) (string, error) {
	list, err := s.repomanager.Entries(s.db).ListByAccount(ctx, id.AccountID, models.Ascending)
	if err != nil {
		return "", fmt.Errorf("error listing entries: %w", err)
	}
	if list == nil {
		list = []*models.Entry{}
	}

	now := s.now()
	body, err := json.Marshal(journalExport{UserName: id.UserName, ExportedAt: now.UTC(), Entries: list})
	if err != nil {
		return "", fmt.Errorf("error encoding export: %w", err)
	}

	key := exportStorageKey(id.AccountID, now)
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return "", fmt.Errorf("error uploading export: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, exportLinkValidity)
	if err != nil {
		return "", fmt.Errorf("error presigning export: %w", err)
	}
	return url, nil
}
