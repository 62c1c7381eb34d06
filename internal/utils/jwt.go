// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// JWTClaims identifies the staff member behind a request. Name is recorded as the override actor.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

var (
	jwtSecret = []byte("change-me-larder-secret")
	jwtIssuer = "larder-backend"
)

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func SetJWTIssuer(issuer string) {
	if issuer != "" {
		jwtIssuer = issuer
	}
}

func GenerateJWT(subject, email, name string, ttl time.Duration) (string, error) {
	issuedAt := time.Now()
	claims := JWTClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    jwtIssuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.VerifyIssuer(jwtIssuer, true) {
		return nil, errors.New("unexpected token issuer")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}

// IsTokenExpired reports whether a ValidateJWT error was caused by expiry.
func IsTokenExpired(err error) bool {
	var validationErr *jwt.ValidationError
	return errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0
}
