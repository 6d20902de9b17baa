package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

type JwtManager struct {
	auth   *jwtauth.JWTAuth
	secret []byte
}

func NewJwtManager(secret []byte) *JwtManager {
	return &JwtManager{auth: jwtauth.New("HS256", secret, nil), secret: secret}
}

func (m *JwtManager) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(m.auth)
}

func (m *JwtManager) Authenticator() func(http.Handler) http.Handler {
	return jwtauth.Authenticator(m.auth)
}

const (
	subjectKey = "sub"
	emailKey   = "email"
	nameKey    = "name"
)

// SessionClaims is the decoded identity portion of an access token.
type SessionClaims struct {
	Subject string
	Email   string
	Name    string
	Expiry  time.Time
}

func (m *JwtManager) CreateSessionToken(subject, email, name string, exp time.Duration) (string, error) {
	claims := map[string]interface{}{
		subjectKey: subject,
		emailKey:   email,
		nameKey:    name,
		"exp":      time.Now().Add(exp),
	}
	_, token, err := m.auth.Encode(claims)
	if err != nil {
		slog.Error("error generating jwt", "error", err)
		return "", fmt.Errorf("error generating access token: %w", err)
	}
	return token, nil
}

// ParseSessionToken verifies the token signature and extracts the session
// claims.
func (m *JwtManager) ParseSessionToken(token string) (SessionClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return SessionClaims{}, fmt.Errorf("error parsing access token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return SessionClaims{}, fmt.Errorf("invalid access token")
	}

	stringClaim := func(key string) string {
		value, _ := claims[key].(string)
		return value
	}

	session := SessionClaims{
		Subject: stringClaim(subjectKey),
		Email:   stringClaim(emailKey),
		Name:    stringClaim(nameKey),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.Expiry = exp.Time
	}

	if session.Subject == "" || session.Email == "" {
		return SessionClaims{}, fmt.Errorf("invalid token: missing identity claims")
	}

	return session, nil
}
