package handler

import (
	"context"
	"net/http"

	"hospital-admission/internal/models"
	"hospital-admission/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CensusProvider reports active patients per specialty
type CensusProvider interface {
	SpecialtyCensus(ctx context.Context, withPatients bool) ([]models.SpecialtySummary, error)
}

type SpecialtyHandler struct {
	census CensusProvider
	logger zerolog.Logger
}

func NewSpecialtyHandler(census CensusProvider, logger zerolog.Logger) *SpecialtyHandler {
	return &SpecialtyHandler{census: census, logger: logger}
}

// SpecialtiesPage renders every specialty with its active patients; the
// admission form lands here after a successful admission
func (h *SpecialtyHandler) SpecialtiesPage(c *gin.Context) {
	census, err := h.census.SpecialtyCensus(c.Request.Context(), true)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load specialty census")
		c.String(http.StatusInternalServerError, "Failed to load specialties")
		return
	}

	c.HTML(http.StatusOK, "specialties.tmpl", gin.H{"Census": census})
}

// ListSpecialties returns the per-specialty active patient counts
func (h *SpecialtyHandler) ListSpecialties(c *gin.Context) {
	census, err := h.census.SpecialtyCensus(c.Request.Context(), false)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load specialty census")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch specialties")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"specialties": census,
		"count":       len(census),
	})
}
