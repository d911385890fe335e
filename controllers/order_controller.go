package controllers

import (
	"errors"
	"net/http"
	"strconv"

	applog "github.com/CharlesX20/chimestradingstore/logger"
	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultOrderPage  = 1
	defaultOrderLimit = 20
	maxOrderLimit     = 100
)

type OrderController struct {
	service OrderServiceAPI
}

func NewOrderController(service OrderServiceAPI) *OrderController {
	return &OrderController{service: service}
}

// CreateOrder accepts a checkout and answers 201 with the order id, the
// hosted receipt URL and the WhatsApp handoff link.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		applog.Warn(c, "invalid checkout payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}

	result, err := oc.service.SubmitOrder(c.Request.Context(), &req)
	if err != nil {
		c.JSON(services.HTTPStatus(err), gin.H{"message": submissionMessage(err)})
		return
	}

	c.JSON(http.StatusCreated, models.CheckoutResponse{
		OrderID:     result.OrderID,
		ReceiptURL:  result.ReceiptURL,
		WhatsAppURL: result.WhatsAppURL,
	})
}

// submissionMessage gives each failure kind its own user-facing text.
func submissionMessage(err error) string {
	var (
		validationErr  *services.ValidationError
		uploadErr      *services.UploadError
		persistenceErr *services.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		if validationErr.Field == "" {
			return validationErr.Message
		}
		return validationErr.Field + " " + validationErr.Message
	case errors.As(err, &uploadErr):
		return "Failed to upload receipt"
	case errors.As(err, &persistenceErr):
		if persistenceErr.Retried() {
			return "Server error creating order (retry failed)"
		}
		return "Server error creating order"
	default:
		return "Server error creating order"
	}
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, svcErr := oc.service.GetOrder(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) ListOrders(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultOrderPage)))
	if err != nil || page < 1 {
		page = defaultOrderPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultOrderLimit)))
	if err != nil || limit <= 0 {
		limit = defaultOrderLimit
	}
	if limit > maxOrderLimit {
		limit = maxOrderLimit
	}

	orders, total, svcErr := oc.service.ListOrders(c.Request.Context(), page, limit)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}
