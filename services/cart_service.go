package services

import (
	"context"
	"errors"

	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{carts: carts, products: products, logger: logger}
}

// Get returns the user's cart joined with current product data. Lines whose
// product no longer exists are left out.
func (s *CartService) Get(ctx context.Context, userID string) (*models.CartView, *ServiceError) {
	cart, svcErr := s.load(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.view(ctx, cart)
}

// Add puts one more unit of productID in the cart.
func (s *CartService) Add(ctx context.Context, userID, productID string) (*models.CartView, *ServiceError) {
	oid, svcErr := parseProductID(productID)
	if svcErr != nil {
		return nil, svcErr
	}
	if _, err := s.products.FindByID(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		s.logger.Error("failed to load product for cart", zap.String("product_id", productID), zap.Error(err))
		return nil, internalError("Failed to update cart")
	}

	cart, svcErr := s.load(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: 1})
	}

	return s.save(ctx, cart)
}

// UpdateQuantity sets the quantity of a line; zero removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartView, *ServiceError) {
	if quantity < 0 {
		return nil, badRequest("Quantity must not be negative")
	}
	cart, svcErr := s.load(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, notFound("Product not found in cart")
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}
	return s.save(ctx, cart)
}

// Remove drops productID from the cart, or empties the cart when productID
// is blank.
func (s *CartService) Remove(ctx context.Context, userID, productID string) (*models.CartView, *ServiceError) {
	if productID == "" {
		if err := s.carts.DeleteCart(ctx, userID); err != nil {
			s.logger.Error("failed to clear cart", zap.String("user_id", userID), zap.Error(err))
			return nil, internalError("Failed to clear cart")
		}
		return &models.CartView{Items: []models.CartLine{}}, nil
	}

	cart, svcErr := s.load(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}
	kept := make([]models.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	return s.save(ctx, cart)
}

func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, *ServiceError) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get cart", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to get cart")
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.CartView, *ServiceError) {
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		s.logger.Error("failed to save cart", zap.String("user_id", cart.UserID), zap.Error(err))
		return nil, internalError("Failed to save cart")
	}
	return s.view(ctx, cart)
}

func (s *CartService) view(ctx context.Context, cart *models.Cart) (*models.CartView, *ServiceError) {
	view := &models.CartView{Items: []models.CartLine{}}
	if len(cart.Items) == 0 {
		return view, nil
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		if oid, err := primitive.ObjectIDFromHex(item.ProductID); err == nil {
			ids = append(ids, oid)
		}
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load cart products", zap.String("user_id", cart.UserID), zap.Error(err))
		return nil, internalError("Failed to get cart")
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID.Hex()] = p
	}

	for _, item := range cart.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		view.Items = append(view.Items, models.CartLine{Product: p, Quantity: item.Quantity})
		view.Total += p.Price * float64(item.Quantity)
	}
	return view, nil
}
