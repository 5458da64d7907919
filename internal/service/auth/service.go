package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"khrental/internal/config"
	"khrental/internal/domain"
	"khrental/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInactiveUser = errors.New("user is inactive")
)

// Claims identify the actor. The subject is the user id.
type Claims struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Service interface {
	IssueAccessToken(user *domain.User) (string, error)
	ValidateAccessToken(token string) (*Claims, error)
	// Authenticate validates token and resolves the actor against the user
	// table, so a deactivated account or a changed role takes effect at once.
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}

type service struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewService(userRepo repository.UserRepository, cfg *config.Config) Service {
	return &service{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *service) IssueAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name: user.FullName,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTAccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) Authenticate(ctx context.Context, tokenString string) (domain.Actor, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return domain.Actor{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Actor{}, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Actor{}, ErrInvalidToken
		}
		return domain.Actor{}, err
	}
	if !user.IsActive {
		return domain.Actor{}, ErrInactiveUser
	}

	return domain.Actor{ID: user.ID, Name: user.FullName, Role: user.Role}, nil
}
