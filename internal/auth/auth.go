// Package auth provides single-user password authentication with JWT
// sessions plus static API keys for automation clients.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoPasswordSet      = errors.New("no password has been set")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidAPIKey      = errors.New("invalid API key")
)

const tokenExpiry = 24 * time.Hour

// Service handles authentication operations.
type Service struct {
	db        *sql.DB
	jwtSecret []byte
}

// Claims represents JWT claims.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewService creates a new auth service.
func NewService(db *sql.DB, jwtSecret string) (*Service, error) {
	secret := []byte(jwtSecret)

	// Generate random secret if not provided
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
	}

	return &Service{
		db:        db,
		jwtSecret: secret,
	}, nil
}

// SetCredentials sets or updates the username and password.
func (s *Service) SetCredentials(ctx context.Context, username, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if username == "" {
		username = "admin"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO auth (id, username, password_hash, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			password_hash = excluded.password_hash,
			updated_at = CURRENT_TIMESTAMP
	`, username, string(hash))
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	return nil
}

// ValidateCredentials checks the provided username and password.
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) error {
	var storedUser, hash string
	err := s.db.QueryRowContext(ctx, "SELECT username, password_hash FROM auth WHERE id = 1").Scan(&storedUser, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoPasswordSet
		}
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	if username != storedUser {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return nil
}

// IsConfigured returns true if credentials have been set up.
func (s *Service) IsConfigured(ctx context.Context) bool {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM auth WHERE id = 1").Scan(&count)
	return err == nil && count > 0
}

// GenerateToken creates a new JWT token for the given user.
func (s *Service) GenerateToken(username string) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "profilarr",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// EnsureAPIKey returns the stored API key, creating one on first use.
func (s *Service) EnsureAPIKey(ctx context.Context) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx, "SELECT key FROM api_keys ORDER BY id LIMIT 1").Scan(&key)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to load API key: %w", err)
	}

	key, err = generateAPIKey()
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO api_keys (key, name) VALUES (?, 'default')", key); err != nil {
		return "", fmt.Errorf("failed to store API key: %w", err)
	}
	return key, nil
}

// ValidateAPIKey checks an API key against the stored keys.
func (s *Service) ValidateAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidAPIKey
	}
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_keys WHERE key = ?", key).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check API key: %w", err)
	}
	if count == 0 {
		return ErrInvalidAPIKey
	}
	return nil
}

// RotateAPIKey replaces the stored API key with a fresh one.
func (s *Service) RotateAPIKey(ctx context.Context) (string, error) {
	key, err := generateAPIKey()
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM api_keys"); err != nil {
		return "", fmt.Errorf("failed to clear API keys: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO api_keys (key, name) VALUES (?, 'default')", key); err != nil {
		return "", fmt.Errorf("failed to store API key: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit API key rotation: %w", err)
	}
	return key, nil
}

// generateAPIKey generates a random API key.
func generateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
