package controllers

import (
	"context"

	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/services"

	"github.com/gin-gonic/gin"
)

// OrderServiceAPI defines the order operations the controller needs.
type OrderServiceAPI interface {
	SubmitOrder(ctx context.Context, req *models.CheckoutRequest) (*services.SubmitResult, error)
	GetOrder(ctx context.Context, id string) (*models.Order, *services.ServiceError)
	ListOrders(ctx context.Context, page, limit int) ([]models.Order, int64, *services.ServiceError)
}

type ProductServiceAPI interface {
	GetAll(ctx context.Context) ([]models.Product, *services.ServiceError)
	GetFeatured(ctx context.Context) ([]models.Product, *services.ServiceError)
	GetByCategory(ctx context.Context, category string) ([]models.Product, *services.ServiceError)
	GetRecommendations(ctx context.Context) ([]models.Product, *services.ServiceError)
	Create(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *services.ServiceError)
	Update(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, *services.ServiceError)
	ToggleFeatured(ctx context.Context, id string) (*models.Product, *services.ServiceError)
	Delete(ctx context.Context, id string) *services.ServiceError
}

type CartServiceAPI interface {
	Get(ctx context.Context, userID string) (*models.CartView, *services.ServiceError)
	Add(ctx context.Context, userID, productID string) (*models.CartView, *services.ServiceError)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartView, *services.ServiceError)
	Remove(ctx context.Context, userID, productID string) (*models.CartView, *services.ServiceError)
}

type AuthServiceAPI interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*services.AuthResult, *services.ServiceError)
	Login(ctx context.Context, req *models.LoginRequest) (*services.AuthResult, *services.ServiceError)
	Logout(ctx context.Context, refreshToken string) *services.ServiceError
	Refresh(ctx context.Context, refreshToken string) (string, *services.ServiceError)
}

type AnalyticsServiceAPI interface {
	Dashboard(ctx context.Context) (*models.Dashboard, *services.ServiceError)
}

func respondError(c *gin.Context, err *services.ServiceError) {
	c.JSON(err.StatusCode, gin.H{"message": err.Message})
}
