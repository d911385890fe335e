package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CharlesX20/chimestradingstore/middleware"
	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeCartService struct {
	userID    string
	productID string
	quantity  int
	removed   *string
}

func (f *fakeCartService) Get(_ context.Context, userID string) (*models.CartView, *services.ServiceError) {
	f.userID = userID
	return &models.CartView{Items: []models.CartLine{}}, nil
}

func (f *fakeCartService) Add(_ context.Context, userID, productID string) (*models.CartView, *services.ServiceError) {
	f.userID, f.productID = userID, productID
	if productID == "missing" {
		return nil, &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Product not found"}
	}
	return &models.CartView{Items: []models.CartLine{}}, nil
}

func (f *fakeCartService) UpdateQuantity(_ context.Context, userID, productID string, quantity int) (*models.CartView, *services.ServiceError) {
	f.userID, f.productID, f.quantity = userID, productID, quantity
	return &models.CartView{Items: []models.CartLine{}}, nil
}

func (f *fakeCartService) Remove(_ context.Context, userID, productID string) (*models.CartView, *services.ServiceError) {
	f.userID = userID
	f.removed = &productID
	return &models.CartView{Items: []models.CartLine{}}, nil
}

var cartUser = &models.User{ID: primitive.NewObjectID(), Name: "Ada", Role: models.RoleCustomer}

func newCartRouter(svc CartServiceAPI, signedIn bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cc := NewCartController(svc)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if signedIn {
			c.Set(middleware.ContextUserKey, cartUser)
		}
		c.Next()
	})
	router.GET("/api/cart", cc.GetCart)
	router.POST("/api/cart", cc.AddItem)
	router.PUT("/api/cart/:id", cc.UpdateQuantity)
	router.DELETE("/api/cart", cc.RemoveItem)
	return router
}

func TestCartController_RequiresUser(t *testing.T) {
	router := newCartRouter(&fakeCartService{}, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartController_AddItem(t *testing.T) {
	svc := &fakeCartService{}
	router := newCartRouter(svc, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(`{"productId":"p1"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cartUser.ID.Hex(), svc.userID)
	assert.Equal(t, "p1", svc.productID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(`{"productId":"missing"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Product not found")
}

func TestCartController_UpdateQuantity(t *testing.T) {
	svc := &fakeCartService{}
	router := newCartRouter(svc, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/cart/p2", strings.NewReader(`{"quantity":0}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p2", svc.productID)
	assert.Equal(t, 0, svc.quantity)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/cart/p2", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_RemoveWithoutBodyClears(t *testing.T) {
	svc := &fakeCartService{}
	router := newCartRouter(svc, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cart", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, svc.removed) {
		assert.Equal(t, "", *svc.removed)
	}
}
