package controllers

import (
	"net/http"

	"github.com/CharlesX20/chimestradingstore/middleware"
	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	service      AuthServiceAPI
	secureCookie bool
}

func NewAuthController(service AuthServiceAPI, secureCookie bool) *AuthController {
	return &AuthController{service: service, secureCookie: secureCookie}
}

func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}

	res, svcErr := ac.service.Signup(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	ac.setTokenCookies(c, res.Tokens)
	c.JSON(http.StatusCreated, res.User)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request payload"})
		return
	}

	res, svcErr := ac.service.Login(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	ac.setTokenCookies(c, res.Tokens)
	c.JSON(http.StatusOK, res.User)
}

func (ac *AuthController) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	if svcErr := ac.service.Logout(c.Request.Context(), refreshToken); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	ac.clearCookie(c, middleware.AccessTokenCookie)
	ac.clearCookie(c, middleware.RefreshTokenCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	accessToken, svcErr := ac.service.Refresh(c.Request.Context(), refreshToken)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	ac.setCookie(c, middleware.AccessTokenCookie, accessToken, int(services.AccessTokenTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed successfully"})
}

func (ac *AuthController) Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (ac *AuthController) setTokenCookies(c *gin.Context, tokens *services.TokenPair) {
	ac.setCookie(c, middleware.AccessTokenCookie, tokens.AccessToken, int(services.AccessTokenTTL.Seconds()))
	ac.setCookie(c, middleware.RefreshTokenCookie, tokens.RefreshToken, int(services.RefreshTokenTTL.Seconds()))
}

func (ac *AuthController) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", "", ac.secureCookie, true)
}

func (ac *AuthController) clearCookie(c *gin.Context, name string) {
	ac.setCookie(c, name, "", -1)
}
