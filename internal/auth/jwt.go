package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"linkshrink-backend/internal/config"
)

// ErrInvalidToken covers every verification failure. Decode, signature and
// expiry problems are deliberately indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated identity; the subject is the user email.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies bearer tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewJWTService(cfg *config.Auth) *JWTService {
	return &JWTService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.AccessTokenTTL,
		issuer: cfg.Issuer,
	}
}

// GenerateAccessToken creates a signed access token for the user.
func (s *JWTService) GenerateAccessToken(userID int64, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies and parses a token. It fails closed: any failure
// yields ErrInvalidToken.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
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

// ExtractTokenFromBearer extracts the token from an Authorization header.
func ExtractTokenFromBearer(authHeader string) string {
	const bearerPrefix = "Bearer "
	if len(authHeader) > len(bearerPrefix) && authHeader[:len(bearerPrefix)] == bearerPrefix {
		return authHeader[len(bearerPrefix):]
	}
	return ""
}
