package controllers

import (
	"net/http"

	"github.com/CharlesX20/chimestradingstore/models"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	service ProductServiceAPI
	cache   *CacheManager
}

func NewProductController(service ProductServiceAPI, cache *CacheManager) *ProductController {
	return &ProductController{service: service, cache: cache}
}

func (pc *ProductController) GetAll(c *gin.Context) {
	products, svcErr := pc.service.GetAll(c.Request.Context())
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetFeatured serves the cached list when present.
func (pc *ProductController) GetFeatured(c *gin.Context) {
	if products, ok := pc.cache.GetFeatured(c.Request.Context()); ok {
		c.JSON(http.StatusOK, products)
		return
	}

	products, svcErr := pc.service.GetFeatured(c.Request.Context())
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	pc.cache.SetFeaturedAsync(products)
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) GetByCategory(c *gin.Context) {
	products, svcErr := pc.service.GetByCategory(c.Request.Context(), c.Param("category"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (pc *ProductController) GetRecommendations(c *gin.Context) {
	products, svcErr := pc.service.GetRecommendations(c.Request.Context())
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) Create(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}

	product, svcErr := pc.service.Create(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	pc.cache.InvalidateFeatured(c.Request.Context())
	c.JSON(http.StatusCreated, product)
}

func (pc *ProductController) Update(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}

	product, svcErr := pc.service.Update(c.Request.Context(), c.Param("id"), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	pc.cache.InvalidateFeatured(c.Request.Context())
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) ToggleFeatured(c *gin.Context) {
	product, svcErr := pc.service.ToggleFeatured(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	pc.cache.InvalidateFeatured(c.Request.Context())
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) Delete(c *gin.Context) {
	if svcErr := pc.service.Delete(c.Request.Context(), c.Param("id")); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	pc.cache.InvalidateFeatured(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
