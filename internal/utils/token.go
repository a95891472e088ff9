package utils

import (
	"errors"
	"time"

	"stock-app/config"

	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	UserID  uint   `json:"user_id"`
	Role    string `json:"role"`
	StockID *uint  `json:"stock_id"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uint, role string, stockID *uint) (string, error) {
	expiry := time.Duration(config.AppConfig.Server.JWTExpirationHours) * time.Hour

	claims := TokenClaims{
		UserID:  userID,
		Role:    role,
		StockID: stockID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.Server.JWTSecret))
}

func ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.Server.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
