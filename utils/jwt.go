package utils

import (
	"errors"
	"time"

	"estuary/config"

	"github.com/golang-jwt/jwt"
)

const fallbackSecret = "ESTUARY-DEV-SECRET"

func secretKey() []byte {
	if config.AppConfig.JWTSecret == "" {
		return []byte(fallbackSecret)
	}
	return []byte(config.AppConfig.JWTSecret)
}

// TokenClaims is the identity carried by a wizard API token.
type TokenClaims struct {
	Subject   string
	SessionID string
	Email     string
}

// GenerateToken creates a signed JWT token for a practitioner. sessionID points at
// the auth session in Redis that holds the upstream API credentials.
func GenerateToken(subject, sessionID, email string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"sid":   sessionID,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractClaims validates the token and returns its subject and session id.
func ExtractClaims(tokenString string) (*TokenClaims, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return nil, errors.New("token does not contain a valid 'sid' claim")
	}
	email, _ := claims["email"].(string)

	return &TokenClaims{Subject: sub, SessionID: sid, Email: email}, nil
}
