package entries

import (
	"context"

	"github.com/dmitrijs2005/moodjournal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	ListByAccount(ctx context.Context, accountID string, order models.SortOrder) ([]*models.Entry, error)
	MoodCounts(ctx context.Context, accountID string) (map[int]int, error)
}
