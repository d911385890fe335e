package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CharlesX20/chimestradingstore/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeValidator struct {
	claims jwt.MapClaims
	err    error
}

func (f fakeValidator) ValidateToken(_, _ string) (jwt.MapClaims, error) {
	return f.claims, f.err
}

type fakeUsers map[primitive.ObjectID]*models.User

func (f fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newProtectedRouter(v TokenValidator, users UserFinder, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{ProtectRoute(v, users)}
	if admin {
		handlers = append(handlers, AdminRoute())
	}
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"name": user.Name})
	})
	r.GET("/secure", handlers...)
	return r
}

func TestProtectRoute(t *testing.T) {
	customerID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()
	users := fakeUsers{
		customerID: {ID: customerID, Name: "Ada", Role: models.RoleCustomer},
		adminID:    {ID: adminID, Name: "Boss", Role: models.RoleAdmin},
	}

	tests := []struct {
		name      string
		validator fakeValidator
		cookie    string
		bearer    string
		admin     bool
		wantCode  int
		wantBody  string
	}{
		{"no token", fakeValidator{}, "", "", false, http.StatusUnauthorized, "No access token provided"},
		{"expired", fakeValidator{err: ErrTokenExpired}, "tok", "", false, http.StatusUnauthorized, "Access token expired"},
		{"invalid", fakeValidator{err: errors.New("bad")}, "tok", "", false, http.StatusUnauthorized, "Invalid access token"},
		{"unknown user", fakeValidator{claims: jwt.MapClaims{"sub": primitive.NewObjectID().Hex()}}, "tok", "", false, http.StatusUnauthorized, "User not found"},
		{"cookie ok", fakeValidator{claims: jwt.MapClaims{"sub": customerID.Hex()}}, "tok", "", false, http.StatusOK, "Ada"},
		{"bearer ok", fakeValidator{claims: jwt.MapClaims{"sub": customerID.Hex()}}, "", "tok", false, http.StatusOK, "Ada"},
		{"customer on admin route", fakeValidator{claims: jwt.MapClaims{"sub": customerID.Hex()}}, "tok", "", true, http.StatusForbidden, "Admin only"},
		{"admin on admin route", fakeValidator{claims: jwt.MapClaims{"sub": adminID.Hex()}}, "tok", "", true, http.StatusOK, "Boss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newProtectedRouter(tt.validator, users, tt.admin)
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
