package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// JWT configuration constants
const (
	// Default values - actual values are loaded from configuration
	defaultJWTSecret       = "fallback_secret_change_in_production"
	defaultTokenExpiration = 24 * time.Hour

	tokenIssuer = "retrobasic"
	tokenCookie = "session_token"
)

// ErrNoToken is returned when a request carries no token at all.
var ErrNoToken = errors.New("no token found in request")

// getJWTSecret retrieves the JWT secret from environment variable or configuration
func getJWTSecret() string {
	if envSecret := os.Getenv("JWT_SECRET_KEY"); envSecret != "" {
		return envSecret
	}

	secret := configuration.GetString("JWT", "secret_key", "")
	if secret == "" || secret == defaultJWTSecret {
		logger.AuthWarn("Using fallback JWT secret - set JWT_SECRET_KEY environment variable for production!")
		return defaultJWTSecret
	}
	return secret
}

// getTokenExpiration retrieves the token expiration duration from configuration
func getTokenExpiration() time.Duration {
	hours := configuration.GetInt("JWT", "token_expiration_hours", 0)
	if hours <= 0 {
		return defaultTokenExpiration
	}
	return time.Duration(hours) * time.Hour
}

// TokenRequired reports whether the websocket endpoint rejects clients
// without a valid token.
func TokenRequired() bool {
	return configuration.GetBool("JWT", "require_token", false)
}

// SessionClaims are the claims of an interpreter session token.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a token for sessionID issued to subject.
func GenerateSessionToken(sessionID, subject string) (string, error) {
	if subject == "" {
		subject = "guest"
	}
	now := time.Now()

	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(getTokenExpiration())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   subject,
			ID:        sessionID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(getJWTSecret()))
	if err != nil {
		return "", fmt.Errorf("token could not be signed: %w", err)
	}
	logger.AuthInfo("Session token generated for session ID: %s, subject: %s", sessionID, subject)
	return signedToken, nil
}

// ValidateSessionToken parses tokenString and checks signature, issuer and
// expiry.
func ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	secretKey := getJWTSecret()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing algorithm: %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("could not extract token claims")
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("token carries no session ID")
	}
	return claims, nil
}

// ExtractTokenFromRequest extracts the JWT token from the HTTP request.
// Browsers cannot set headers on a websocket handshake, so the cookie and
// the token query parameter are accepted as well.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" { // Format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], nil
		}
		return "", fmt.Errorf("invalid authorization header format")
	}

	if cookie, err := r.Cookie(tokenCookie); err == nil {
		return cookie.Value, nil
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", ErrNoToken
}

// RequireSessionToken ist ein Middleware für HTTP-Handler, die einen gültigen Token erfordert
func RequireSessionToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := ExtractTokenFromRequest(r)
		if err != nil {
			logger.AuthWarn("No token in request from %s: %v", getClientIP(r), err)
			http.Error(w, "Unauthorized: token missing", http.StatusUnauthorized)
			return
		}

		claims, err := ValidateSessionToken(tokenString)
		if err != nil {
			logger.AuthWarn("Invalid token from %s: %v", getClientIP(r), err)
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(AddClaimsToContext(r.Context(), claims)))
	}
}
