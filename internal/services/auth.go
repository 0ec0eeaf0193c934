package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/data/repos/user"
	types "github.com/yungbote/lendtrack-backend/internal/domain"
	"github.com/yungbote/lendtrack-backend/internal/platform/ctxutil"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*types.User, string, error)
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	// SetContextFromToken verifies the bearer token and attaches the actor to
	// the context for everything downstream.
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type authService struct {
	log      *logger.Logger
	userRepo user.UserRepo
	cfg      AuthConfig
}

func NewAuthService(log *logger.Logger, userRepo user.UserRepo, cfg AuthConfig) (AuthService, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("missing JWT secret")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &authService{
		log:      log.With("service", "AuthService"),
		userRepo: userRepo,
		cfg:      cfg,
	}, nil
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*types.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, "", fmt.Errorf("name and email are required")
	}
	if len(password) < 8 {
		return nil, "", fmt.Errorf("password must be at least 8 characters")
	}

	exists, err := s.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.userRepo.Create(ctx, nil, []*types.User{{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     types.RoleUser,
	}})
	if err != nil {
		return nil, "", err
	}
	u := rows[0]
	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user registered", "user_id", u.ID.String())
	return u, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, ErrTokenExpired
		}
		return ctx, ErrTokenInvalid
	}
	if !token.Valid {
		return ctx, ErrTokenInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ctx, ErrTokenInvalid
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, ErrTokenInvalid
	}

	rd := &ctxutil.RequestData{UserID: userID}
	if name, ok := claims["name"].(string); ok {
		rd.UserName = name
	}
	if role, ok := claims["role"].(string); ok {
		rd.Role = types.UserRole(role)
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (s *authService) issueToken(u *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  u.ID.String(),
		"name": u.Name,
		"role": string(u.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
