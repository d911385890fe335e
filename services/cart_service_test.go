package services

import (
	"context"
	"errors"
	"testing"

	"github.com/CharlesX20/chimestradingstore/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryCartRepo struct {
	carts   map[string]models.Cart
	saveErr error
}

func newMemoryCartRepo() *memoryCartRepo {
	return &memoryCartRepo{carts: map[string]models.Cart{}}
}

func (r *memoryCartRepo) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	c, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	c.Items = append([]models.CartItem(nil), c.Items...)
	return &c, nil
}

func (r *memoryCartRepo) SaveCart(_ context.Context, cart *models.Cart) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[cart.UserID] = *cart
	return nil
}

func (r *memoryCartRepo) DeleteCart(_ context.Context, userID string) error {
	delete(r.carts, userID)
	return nil
}

func TestCartService_AddAndView(t *testing.T) {
	rice := seededProduct()
	oil := seededProduct()
	oil.Name, oil.Price = "Palm Oil", 3500
	carts := newMemoryCartRepo()
	svc := NewCartService(carts, newFakeProductRepo(rice, oil), zap.NewNop())
	ctx := context.Background()

	_, svcErr := svc.Add(ctx, "u1", rice.ID.Hex())
	require.Nil(t, svcErr)
	_, svcErr = svc.Add(ctx, "u1", rice.ID.Hex())
	require.Nil(t, svcErr)
	view, svcErr := svc.Add(ctx, "u1", oil.ID.Hex())
	require.Nil(t, svcErr)

	require.Len(t, view.Items, 2)
	assert.Equal(t, "Rice", view.Items[0].Name)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 13500.0, view.Total)
}

func TestCartService_AddUnknownProduct(t *testing.T) {
	svc := NewCartService(newMemoryCartRepo(), newFakeProductRepo(), zap.NewNop())

	_, svcErr := svc.Add(context.Background(), "u1", primitive.NewObjectID().Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	rice := seededProduct()
	carts := newMemoryCartRepo()
	carts.carts["u1"] = models.Cart{UserID: "u1", Items: []models.CartItem{{ProductID: rice.ID.Hex(), Quantity: 1}}}
	svc := NewCartService(carts, newFakeProductRepo(rice), zap.NewNop())
	ctx := context.Background()

	view, svcErr := svc.UpdateQuantity(ctx, "u1", rice.ID.Hex(), 4)
	require.Nil(t, svcErr)
	assert.Equal(t, 20000.0, view.Total)

	view, svcErr = svc.UpdateQuantity(ctx, "u1", rice.ID.Hex(), 0)
	require.Nil(t, svcErr)
	assert.Empty(t, view.Items)
	assert.Empty(t, carts.carts["u1"].Items)

	_, svcErr = svc.UpdateQuantity(ctx, "u1", rice.ID.Hex(), 2)
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestCartService_Remove(t *testing.T) {
	rice := seededProduct()
	oil := seededProduct()
	carts := newMemoryCartRepo()
	carts.carts["u1"] = models.Cart{UserID: "u1", Items: []models.CartItem{
		{ProductID: rice.ID.Hex(), Quantity: 1},
		{ProductID: oil.ID.Hex(), Quantity: 2},
	}}
	svc := NewCartService(carts, newFakeProductRepo(rice, oil), zap.NewNop())
	ctx := context.Background()

	view, svcErr := svc.Remove(ctx, "u1", rice.ID.Hex())
	require.Nil(t, svcErr)
	require.Len(t, view.Items, 1)
	assert.Equal(t, oil.ID, view.Items[0].ID)

	view, svcErr = svc.Remove(ctx, "u1", "")
	require.Nil(t, svcErr)
	assert.Empty(t, view.Items)
	assert.NotContains(t, carts.carts, "u1")
}

func TestCartService_SkipsDeletedProducts(t *testing.T) {
	rice := seededProduct()
	carts := newMemoryCartRepo()
	carts.carts["u1"] = models.Cart{UserID: "u1", Items: []models.CartItem{
		{ProductID: rice.ID.Hex(), Quantity: 1},
		{ProductID: primitive.NewObjectID().Hex(), Quantity: 3},
	}}
	svc := NewCartService(carts, newFakeProductRepo(rice), zap.NewNop())

	view, svcErr := svc.Get(context.Background(), "u1")
	require.Nil(t, svcErr)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, 5000.0, view.Total)
}

func TestCartService_SaveFailure(t *testing.T) {
	rice := seededProduct()
	carts := newMemoryCartRepo()
	carts.saveErr = errors.New("redis down")
	svc := NewCartService(carts, newFakeProductRepo(rice), zap.NewNop())

	_, svcErr := svc.Add(context.Background(), "u1", rice.ID.Hex())
	require.NotNil(t, svcErr)
	assert.Equal(t, 500, svcErr.StatusCode)
}
