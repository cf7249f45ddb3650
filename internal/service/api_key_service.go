package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-admission/internal/models"
	"hospital-admission/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidAPIKey  = errors.New("invalid or expired API key")
	ErrAPIKeyNotFound = errors.New("API key not found")
)

type APIKeyService struct {
	keyRepo   APIKeyStore
	auditRepo AuditStore
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAPIKeyService(keyRepo APIKeyStore, auditRepo AuditStore, logger zerolog.Logger) *APIKeyService {
	return &APIKeyService{
		keyRepo:   keyRepo,
		auditRepo: auditRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateAPIKey creates a key of the form hak_<prefix>_<secret>. Only the
// bcrypt hash is stored; the plain key is returned once. A zero ttl never
// expires.
func (s *APIKeyService) GenerateAPIKey(ctx context.Context, description string, ttl time.Duration) (*models.APIKeyResponse, error) {
	prefixBytes := make([]byte, 6)
	if _, err := rand.Read(prefixBytes); err != nil {
		return nil, fmt.Errorf("failed to generate key prefix: %w", err)
	}
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}

	prefix := hex.EncodeToString(prefixBytes)
	plainKey := models.APIKeyPrefix + prefix + "_" + base64.RawURLEncoding.EncodeToString(secretBytes)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plainKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash API key: %w", err)
	}

	key := models.APIKey{
		Prefix:      prefix,
		KeyHash:     string(hashed),
		Description: description,
		CreatedBy:   actorFrom(ctx),
		IsActive:    true,
	}
	if ttl > 0 {
		expires := s.now().Add(ttl).UTC()
		key.ExpiresAt = &expires
	}

	if err := s.keyRepo.CreateAPIKey(ctx, &key); err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	s.audit(ctx, "api_key_generate", fmt.Sprintf("Generated API key %s (%s)", prefix, description))
	return &models.APIKeyResponse{APIKey: key, Key: plainKey}, nil
}

// ValidateAPIKey returns the stored key matching plainKey if it is usable
func (s *APIKeyService) ValidateAPIKey(ctx context.Context, plainKey string) (*models.APIKey, error) {
	rest, ok := strings.CutPrefix(plainKey, models.APIKeyPrefix)
	if !ok {
		return nil, ErrInvalidAPIKey
	}
	prefix, _, ok := strings.Cut(rest, "_")
	if !ok || prefix == "" {
		return nil, ErrInvalidAPIKey
	}

	key, err := s.keyRepo.FindAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}

	if !key.Usable(s.now()) {
		return nil, ErrInvalidAPIKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(plainKey)); err != nil {
		return nil, ErrInvalidAPIKey
	}
	return key, nil
}

// ListAPIKeys returns every key without its secret
func (s *APIKeyService) ListAPIKeys(ctx context.Context) ([]models.APIKey, error) {
	return s.keyRepo.ListAPIKeys(ctx)
}

// RevokeAPIKey deactivates a key
func (s *APIKeyService) RevokeAPIKey(ctx context.Context, id uint) error {
	key, err := s.keyRepo.RevokeAPIKey(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAPIKeyNotFound
		}
		return fmt.Errorf("failed to revoke API key: %w", err)
	}

	s.audit(ctx, "api_key_revoke", fmt.Sprintf("Revoked API key %s", key.Prefix))
	return nil
}

func (s *APIKeyService) audit(ctx context.Context, action, details string) {
	if err := s.auditRepo.CreateAuditLog(ctx, actorFrom(ctx), action, details); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("Failed to write audit log")
	}
}
