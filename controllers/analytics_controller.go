package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	service AnalyticsServiceAPI
}

func NewAnalyticsController(service AnalyticsServiceAPI) *AnalyticsController {
	return &AnalyticsController{service: service}
}

func (ac *AnalyticsController) GetDashboard(c *gin.Context) {
	dash, svcErr := ac.service.Dashboard(c.Request.Context())
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, dash)
}
