package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"homestay/config"
	"homestay/infras/otel"
	"homestay/shared/constant"
	"homestay/shared/timezone"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claim")
)

const (
	bearerPrefix     = "Bearer "
	otelScopeName    = "jwt"
	secondsPerMinute = 60
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type JWT interface {
	GenerateTokenPair(ctx context.Context, userID, email, role string) (*TokenPair, error)
	ValidateToken(ctx context.Context, tokenString string, tokenType TokenType) (*Claims, error)
}

type Service struct {
	config *config.Config
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) JWT {
	return &Service{
		config: cfg,
		otel:   otel,
	}
}

// GenerateTokenPair issues an access and a refresh token carrying the same identity.
func (s *Service) GenerateTokenPair(ctx context.Context, userID, email, role string) (pair *TokenPair, err error) {
	_, scope := s.otel.NewScope(ctx, otelScopeName, otelScopeName+".GenerateTokenPair")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	now := timezone.Now()

	accessToken, err := s.sign(userID, email, role, AccessToken, now, s.config.JWT.AccessExpireMin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.sign(userID, email, role, RefreshToken, now, s.config.JWT.RefreshExpireMin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    strings.TrimSpace(bearerPrefix),
		ExpiresIn:    int64(s.config.JWT.AccessExpireMin * secondsPerMinute),
	}, nil
}

func (s *Service) secret(tokenType TokenType) (string, error) {
	switch tokenType {
	case AccessToken:
		return s.config.JWT.AccessSecret, nil
	case RefreshToken:
		return s.config.JWT.RefreshSecret, nil
	default:
		return constant.Empty, fmt.Errorf("unknown token type: %s", tokenType)
	}
}

func (s *Service) sign(userID, email, role string, tokenType TokenType, issuedAt time.Time, expireMin int) (string, error) {
	secret, err := s.secret(tokenType)
	if err != nil {
		return constant.Empty, err
	}

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Duration(expireMin) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    s.config.App.Name,
			Subject:   userID,
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses tokenString and checks that it was issued as tokenType.
func (s *Service) ValidateToken(ctx context.Context, tokenString string, tokenType TokenType) (claims *Claims, err error) {
	_, scope := s.otel.NewScope(ctx, otelScopeName, otelScopeName+".ValidateToken")
	defer scope.End()

	secret, err := s.secret(tokenType)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}

		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != tokenType || claims.UserID == "" {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

// ExtractTokenFromHeader returns the token of a "Bearer <token>" header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return constant.Empty, errors.New("authorization header is required")
	}

	token, ok := strings.CutPrefix(authHeader, bearerPrefix)
	if !ok || token == "" {
		return constant.Empty, errors.New("authorization header must start with 'Bearer '")
	}

	return token, nil
}
