package services

import (
	"context"
	"errors"
	"strings"

	"github.com/CharlesX20/chimestradingstore/models"
	"github.com/CharlesX20/chimestradingstore/repository"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

type ITokenService interface {
	GenerateTokenPair(userID, email, role string) (*TokenPair, error)
	GenerateAccessToken(userID, email, role string) (string, error)
	ValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error)
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User   models.Profile
	Tokens *TokenPair
}

type AuthService struct {
	users     repository.UserRepository
	tokens    ITokenService
	store     repository.TokenStore
	passwords *PasswordValidator
	validate  *validator.Validate
	logger    *zap.Logger

	// refreshes collapses concurrent refreshes of the same refresh token
	// into one lookup; entries live only while a call is in flight.
	refreshes singleflight.Group
}

func NewAuthService(users repository.UserRepository, tokens ITokenService, store repository.TokenStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		store:     store,
		passwords: NewPasswordValidator(),
		validate:  newValidator(),
		logger:    logger,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (*AuthResult, *ServiceError) {
	if err := s.validate.Struct(req); err != nil {
		v := firstViolation(err)
		return nil, badRequest(v.Field + " " + v.Message)
	}
	if err := s.passwords.ValidatePassword(req.Password); err != nil {
		return nil, badRequest(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, internalError("Failed to create account")
	}

	now := timeNow().UTC()
	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Password:  string(hashed),
		Role:      models.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.users.Create(ctx, user)
	if repository.IsConflictOn(err, repository.UserEmailIndex) {
		return nil, badRequest("User already exists")
	}
	if err != nil {
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, internalError("Failed to create account")
	}
	user.ID = id

	return s.issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, *ServiceError) {
	if err := s.validate.Struct(req); err != nil {
		return nil, badRequest("Invalid email or password")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, badRequest("Invalid email or password")
	}
	if err != nil {
		s.logger.Error("failed to load user", zap.Error(err))
		return nil, internalError("Login failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, badRequest("Invalid email or password")
	}

	return s.issue(ctx, user)
}

// Logout forgets the stored refresh token. An unreadable token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) *ServiceError {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ValidateToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil
	}
	sub, _ := claims["sub"].(string)
	if err := s.store.DeleteRefreshToken(ctx, sub); err != nil {
		s.logger.Error("failed to delete refresh token", zap.String("user_id", sub), zap.Error(err))
		return internalError("Logout failed")
	}
	return nil
}

// Refresh issues a new access token for a refresh token that matches the one
// stored for its user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, *ServiceError) {
	if refreshToken == "" {
		return "", unauthorized("No refresh token provided")
	}
	claims, err := s.tokens.ValidateToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", unauthorized("Invalid refresh token")
	}
	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)

	v, err, shared := s.refreshes.Do(sub+":"+jti, func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx), sub, refreshToken)
	})
	if shared {
		s.logger.Debug("refresh shared with in-flight call", zap.String("user_id", sub))
	}
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return "", svcErr
		}
		return "", internalError("Failed to refresh token")
	}
	return v.(string), nil
}

func (s *AuthService) refresh(ctx context.Context, userID, refreshToken string) (string, error) {
	stored, err := s.store.GetRefreshToken(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && stored != refreshToken) {
		return "", unauthorized("Invalid refresh token")
	}
	if err != nil {
		s.logger.Error("failed to read refresh token", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}

	user, svcErr := s.Profile(ctx, userID)
	if svcErr != nil {
		return "", unauthorized("User not found")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return "", err
	}
	return token, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, *ServiceError) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, badRequest("Invalid user ID")
	}
	user, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		s.logger.Error("failed to load user", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to load profile")
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResult, *ServiceError) {
	userID := user.ID.Hex()
	pair, err := s.tokens.GenerateTokenPair(userID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to sign tokens", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to issue tokens")
	}
	if err := s.store.SaveRefreshToken(ctx, userID, pair.RefreshToken, RefreshTokenTTL); err != nil {
		s.logger.Error("failed to store refresh token", zap.String("user_id", userID), zap.Error(err))
		return nil, internalError("Failed to issue tokens")
	}
	return &AuthResult{User: user.Profile(), Tokens: pair}, nil
}
