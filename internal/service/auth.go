package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aidar/team-management-service/internal/domain"
	"github.com/aidar/team-management-service/internal/repository"
)

// Claims represents JWT claims. Subject carries the external identity id,
// not the internal user id: the resolver maps one to the other per request.
type Claims struct {
	ExternalID string `json:"external_id"`
	jwt.RegisteredClaims
}

// AuthService handles registration, token issuance and identity resolution
type AuthService struct {
	store     repository.Store
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(store repository.Store, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Register links an external identity to a new user with the member role
func (s *AuthService) Register(ctx context.Context, externalID, username string) (*domain.User, error) {
	user := &domain.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Username:   username,
		Role:       domain.RoleMember,
	}

	if err := s.store.Repos().Users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login issues a JWT token for a linked external identity
func (s *AuthService) Login(ctx context.Context, externalID string) (string, error) {
	user, err := s.store.Repos().Users.GetByExternalID(ctx, externalID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrIdentityNotLinked
	}

	claims := &Claims{
		ExternalID: user.ExternalID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ExternalID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// ResolveUser maps an authenticated external identity to the internal user.
// An empty external id means no principal was presented at all
// (ErrNotAuthenticated); a valid token whose identity has no linked user
// is a distinct absent result (ErrIdentityNotLinked).
func (s *AuthService) ResolveUser(ctx context.Context, externalID string) (*domain.User, error) {
	if externalID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.store.Repos().Users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrIdentityNotLinked
	}

	return user, nil
}
