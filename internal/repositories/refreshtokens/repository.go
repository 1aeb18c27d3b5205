package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bankcore/internal/models"
)

// Repository is the server-stored refresh token contract.
type Repository interface {
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}
