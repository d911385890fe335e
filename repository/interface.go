package repository

import (
	"context"
	"time"

	"github.com/CharlesX20/chimestradingstore/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderRepository persists orders. Create returns *ConflictError when a
// unique index rejects the insert.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error)
	SalesSummary(ctx context.Context) (models.SalesSummary, error)
	DailySales(ctx context.Context, start, end time.Time, loc *time.Location) ([]models.DailySales, error)
}

type ProductRepository interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindFeatured(ctx context.Context) ([]models.Product, error)
	FindByCategory(ctx context.Context, category string) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Sample(ctx context.Context, size int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Create(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	Count(ctx context.Context) (int64, error)
}

// CartRepository returns a nil cart (and no error) when the user has none.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

// TokenStore keeps the single valid refresh token per user.
type TokenStore interface {
	SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	DeleteRefreshToken(ctx context.Context, userID string) error
}
