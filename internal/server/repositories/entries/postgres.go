// Package entries provides the PostgreSQL-backed diary entry store. Every
// read is scoped by the owning account.
package entries

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moodjournal/internal/dbx"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the entry and fills in its generated ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO entries (account_id, content, mood)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, entry.AccountID, entry.Content, entry.Mood).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

const (
	listAscending = `
		SELECT id, account_id, content, mood, created_at FROM entries
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC
	`
	listDescending = `
		SELECT id, account_id, content, mood, created_at FROM entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`
)

// ListByAccount returns every entry owned by accountID in the given order.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string, order models.SortOrder) ([]*models.Entry, error) {
	query := listDescending
	if order == models.Ascending {
		query = listAscending
	}

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		if err := rows.Scan(&item.ID, &item.AccountID, &item.Content, &item.Mood, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MoodCounts aggregates the account's entries by mood value.
func (r *PostgresRepository) MoodCounts(ctx context.Context, accountID string) (map[int]int, error) {
	query := `
		SELECT mood, COUNT(*) FROM entries
		WHERE account_id = $1
		GROUP BY mood
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to count moods: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var mood, n int
		if err := rows.Scan(&mood, &n); err != nil {
			return nil, err
		}
		counts[mood] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
