package accounts

import (
	"context"

	"github.com/dmitrijs2005/moodjournal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByUserName(ctx context.Context, userName string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	Count(ctx context.Context) (int64, error)
}
