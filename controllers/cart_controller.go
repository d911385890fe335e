package controllers

import (
	"net/http"

	"github.com/CharlesX20/chimestradingstore/middleware"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	service CartServiceAPI
}

func NewCartController(service CartServiceAPI) *CartController {
	return &CartController{service: service}
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (cc *CartController) GetCart(c *gin.Context) {
	userID, ok := cartUserID(c)
	if !ok {
		return
	}
	view, svcErr := cc.service.Get(c.Request.Context(), userID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (cc *CartController) AddItem(c *gin.Context) {
	userID, ok := cartUserID(c)
	if !ok {
		return
	}
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productId is required"})
		return
	}

	view, svcErr := cc.service.Add(c.Request.Context(), userID, req.ProductID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (cc *CartController) UpdateQuantity(c *gin.Context) {
	userID, ok := cartUserID(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "quantity is required"})
		return
	}

	view, svcErr := cc.service.UpdateQuantity(c.Request.Context(), userID, c.Param("id"), *req.Quantity)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveItem removes one product, or clears the cart when the body names none.
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, ok := cartUserID(c)
	if !ok {
		return
	}
	var req cartItemRequest
	_ = c.ShouldBindJSON(&req)

	view, svcErr := cc.service.Remove(c.Request.Context(), userID, req.ProductID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, view)
}

func cartUserID(c *gin.Context) (string, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return "", false
	}
	return user.ID.Hex(), true
}
