package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	submitErr  error
	lastReq    *models.CheckoutRequest
	lastPage   int
	lastLimit  int
	orders     []models.Order
	getErr     *services.ServiceError
	submitCall int
}

func (f *fakeOrderService) SubmitOrder(_ context.Context, req *models.CheckoutRequest) (*services.SubmitResult, error) {
	f.submitCall++
	f.lastReq = req
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &services.SubmitResult{
		OrderID:     "665f1c2a9b1e8a0012345678",
		ReceiptURL:  "https://img.example/r.png",
		WhatsAppURL: "https://wa.me/2348099999999?text=hi",
	}, nil
}

func (f *fakeOrderService) GetOrder(_ context.Context, id string) (*models.Order, *services.ServiceError) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Order{BuyerName: "Ada"}, nil
}

func (f *fakeOrderService) ListOrders(_ context.Context, page, limit int) ([]models.Order, int64, *services.ServiceError) {
	f.lastPage, f.lastLimit = page, limit
	return f.orders, int64(len(f.orders)), nil
}

const checkoutBody = `{
	"buyerName": "Ada",
	"buyerPhone": "+2348012345678",
	"pickupDatetime": "2026-05-12T14:30",
	"items": [{"_id": "p1", "name": "Rice", "price": "5000", "quantity": 2}],
	"total": 10000,
	"receipt": "data:image/png;base64,AAAA"
}`

func newOrderRouter(svc OrderServiceAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	oc := NewOrderController(svc)
	router.POST("/api/orders", oc.CreateOrder)
	router.GET("/api/orders", oc.ListOrders)
	router.GET("/api/orders/:id", oc.GetOrder)
	return router
}

func postCheckout(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder_Success(t *testing.T) {
	svc := &fakeOrderService{}
	rec := postCheckout(newOrderRouter(svc), checkoutBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "665f1c2a9b1e8a0012345678", body["orderId"])
	assert.Equal(t, "https://img.example/r.png", body["receiptUrl"])
	assert.Equal(t, "https://wa.me/2348099999999?text=hi", body["whatsappUrl"])

	require.NotNil(t, svc.lastReq)
	assert.Equal(t, models.Amount(5000), svc.lastReq.Items[0].Price)
	assert.Equal(t, "p1", svc.lastReq.Items[0].Ref())
}

func TestCreateOrder_ErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", &services.ValidationError{Field: "buyerName", Message: "must not be empty"}, http.StatusBadRequest, "buyerName must not be empty"},
		{"upload", &services.UploadError{Err: errors.New("quota")}, http.StatusBadGateway, "Failed to upload receipt"},
		{"persistence", &services.PersistenceError{Err: errors.New("timeout")}, http.StatusInternalServerError, "Server error creating order"},
		{"persistence after retry", &services.PersistenceError{Err: errors.New("dup"), RetryErr: errors.New("timeout")}, http.StatusInternalServerError, "Server error creating order (retry failed)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postCheckout(newOrderRouter(&fakeOrderService{submitErr: tt.err}), checkoutBody)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestCreateOrder_MalformedJSON(t *testing.T) {
	svc := &fakeOrderService{}
	rec := postCheckout(newOrderRouter(svc), `{"buyerName": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.submitCall)
}

func TestListOrders_Pagination(t *testing.T) {
	svc := &fakeOrderService{orders: []models.Order{{BuyerName: "Ada"}}}
	router := newOrderRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders?page=3&limit=500", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.lastPage)
	assert.Equal(t, maxOrderLimit, svc.lastLimit)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders?page=x", nil))
	assert.Equal(t, defaultOrderPage, svc.lastPage)
	assert.Equal(t, defaultOrderLimit, svc.lastLimit)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := &fakeOrderService{getErr: &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}}
	rec := httptest.NewRecorder()
	newOrderRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Order not found"}`, rec.Body.String())
}
