package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hospital-admission/internal/models"
	"hospital-admission/internal/repository"
	"hospital-admission/internal/service"
	"hospital-admission/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PatientManager is the patient API's view of the patient service
type PatientManager interface {
	Admit(ctx context.Context, draft models.PatientDraft) (*models.Patient, error)
	GetPatient(ctx context.Context, id uint) (*models.Patient, error)
	ListPatients(ctx context.Context, filter repository.PatientFilter) ([]models.Patient, error)
	Discharge(ctx context.Context, id uint) (*models.Patient, error)
	ExportCensus(ctx context.Context, filter repository.PatientFilter, w io.Writer) error
}

type PatientHandler struct {
	patients PatientManager
	logger   zerolog.Logger
}

func NewPatientHandler(patients PatientManager, logger zerolog.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, logger: logger}
}

// AdmitPatientRequest is the JSON body of POST /api/patients; field names
// match models.PatientDraft
type AdmitPatientRequest struct {
	Name           string  `json:"name" binding:"required,max=255"`
	MRN            string  `json:"mrn" binding:"required,max=64"`
	Age            *int    `json:"age" binding:"required,min=0,max=150"`
	Gender         string  `json:"gender" binding:"required,gender"`
	Diagnosis      string  `json:"diagnosis" binding:"max=1000"`
	AdmissionDate  string  `json:"admissionDate" binding:"required,datetime=2006-01-02T15:04:05"`
	Status         string  `json:"status" binding:"omitempty,eq=Active"`
	Specialty      string  `json:"specialty" binding:"required,specialty"`
	AssignedDoctor *string `json:"assignedDoctor"`
}

func (r AdmitPatientRequest) draft() models.PatientDraft {
	d := models.PatientDraft{
		Name:          strings.TrimSpace(r.Name),
		MRN:           strings.TrimSpace(r.MRN),
		Age:           *r.Age,
		Gender:        models.Gender(r.Gender),
		Diagnosis:     r.Diagnosis,
		AdmissionDate: r.AdmissionDate,
		Status:        models.StatusActive,
		Specialty:     models.Specialty(r.Specialty),
	}
	if r.AssignedDoctor != nil {
		if doctor := strings.TrimSpace(*r.AssignedDoctor); doctor != "" {
			d.AssignedDoctor = &doctor
		}
	}
	return d
}

// CreatePatient admits a patient from a JSON draft
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req AdmitPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	patient, err := h.patients.Admit(actorContext(c), req.draft())
	if err != nil {
		h.writeError(c, err, "Failed to admit patient")
		return
	}

	utils.CreatedResponse(c, patient)
}

// ListPatients returns patients, optionally filtered by specialty and status
func (h *PatientHandler) ListPatients(c *gin.Context) {
	filter, ok := patientFilter(c)
	if !ok {
		return
	}

	patients, err := h.patients.ListPatients(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err, "Failed to fetch patients")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"patients": patients,
		"count":    len(patients),
	})
}

// GetPatient returns one patient
func (h *PatientHandler) GetPatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	patient, err := h.patients.GetPatient(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "Failed to fetch patient")
		return
	}

	utils.SuccessResponse(c, patient)
}

// DischargePatient ends an active admission
func (h *PatientHandler) DischargePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	patient, err := h.patients.Discharge(actorContext(c), id)
	if err != nil {
		h.writeError(c, err, "Failed to discharge patient")
		return
	}

	utils.SuccessResponse(c, patient)
}

// ExportCensus streams the census workbook
func (h *PatientHandler) ExportCensus(c *gin.Context) {
	filter, ok := patientFilter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.patients.ExportCensus(c.Request.Context(), filter, &buf); err != nil {
		h.writeError(c, err, "Failed to export census")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="census-%s.xlsx"`, time.Now().Format("2006-01-02")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *PatientHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrDuplicateMRN):
		utils.ErrorResponse(c, http.StatusConflict, service.ErrDuplicateMRN.Error())
	case errors.Is(err, service.ErrPatientNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Patient not found")
	case errors.Is(err, service.ErrInvalidPatient):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		utils.ErrorResponse(c, http.StatusInternalServerError, fallback)
	}
}

// patientFilter reads the specialty and status query parameters, writing a
// 400 response when either is unknown
func patientFilter(c *gin.Context) (repository.PatientFilter, bool) {
	filter := repository.PatientFilter{
		Specialty: models.Specialty(c.Query("specialty")),
		Status:    c.Query("status"),
	}

	if filter.Specialty != "" && !filter.Specialty.Valid() {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unknown specialty")
		return filter, false
	}
	switch filter.Status {
	case "", models.StatusActive, models.StatusDischarged:
	default:
		utils.ErrorResponse(c, http.StatusBadRequest, "Status must be Active or Discharged")
		return filter, false
	}
	return filter, true
}
