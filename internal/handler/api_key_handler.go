package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hospital-admission/internal/models"
	"hospital-admission/internal/service"
	"hospital-admission/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// APIKeyManager issues and revokes integration API keys
type APIKeyManager interface {
	GenerateAPIKey(ctx context.Context, description string, ttl time.Duration) (*models.APIKeyResponse, error)
	ListAPIKeys(ctx context.Context) ([]models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uint) error
}

type APIKeyHandler struct {
	keys   APIKeyManager
	logger zerolog.Logger
}

func NewAPIKeyHandler(keys APIKeyManager, logger zerolog.Logger) *APIKeyHandler {
	return &APIKeyHandler{keys: keys, logger: logger}
}

type GenerateAPIKeyRequest struct {
	Description   string `json:"description" binding:"required,max=255"`
	ExpiresInDays int    `json:"expires_in_days" binding:"min=0,max=3650"`
}

// GenerateAPIKey creates a key; the plain key is only in this response
func (h *APIKeyHandler) GenerateAPIKey(c *gin.Context) {
	var req GenerateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	ttl := time.Duration(req.ExpiresInDays) * 24 * time.Hour
	key, err := h.keys.GenerateAPIKey(actorContext(c), req.Description, ttl)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to generate API key")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to generate API key")
		return
	}

	utils.CreatedResponse(c, key)
}

// ListAPIKeys returns every key without secrets
func (h *APIKeyHandler) ListAPIKeys(c *gin.Context) {
	keys, err := h.keys.ListAPIKeys(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list API keys")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch API keys")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"api_keys": keys,
		"count":    len(keys),
	})
}

// RevokeAPIKey deactivates a key
func (h *APIKeyHandler) RevokeAPIKey(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid API key ID")
		return
	}

	if err := h.keys.RevokeAPIKey(actorContext(c), id); err != nil {
		if errors.Is(err, service.ErrAPIKeyNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "API key not found")
			return
		}
		h.logger.Error().Err(err).Uint("key_id", id).Msg("Failed to revoke API key")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to revoke API key")
		return
	}

	utils.MessageResponse(c, "API key revoked")
}
