package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hospital-admission/internal/models"
	"hospital-admission/internal/repository"

	"github.com/rs/zerolog"
)

// AdmissionDateLayout is the layout of PatientDraft.AdmissionDate
const AdmissionDateLayout = "2006-01-02T15:04:05"

const maxAge = 150

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrDuplicateMRN    = errors.New("MRN duplicate")
	ErrInvalidPatient  = errors.New("invalid patient")
)

type PatientService struct {
	patientRepo PatientStore
	auditRepo   AuditStore
	logger      zerolog.Logger
	now         func() time.Time
}

func NewPatientService(patientRepo PatientStore, auditRepo AuditStore, logger zerolog.Logger) *PatientService {
	return &PatientService{
		patientRepo: patientRepo,
		auditRepo:   auditRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Admit validates a draft and stores it as a new active patient
func (s *PatientService) Admit(ctx context.Context, draft models.PatientDraft) (*models.Patient, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetPatientByMRN(ctx, draft.MRN); err == nil {
		return nil, ErrDuplicateMRN
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check MRN: %w", err)
	}

	patient := models.NewPatientFromDraft(draft)
	if err := s.patientRepo.CreatePatient(ctx, patient); err != nil {
		// lost a race with a concurrent admission of the same MRN
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateMRN
		}
		return nil, fmt.Errorf("failed to admit patient: %w", err)
	}

	details := fmt.Sprintf("Admitted patient %s (MRN: %s) to %s", patient.Name, patient.MRN, patient.Specialty)
	if err := s.auditRepo.CreateAuditLog(ctx, actorFrom(ctx), "patient_admit", details); err != nil {
		s.logger.Warn().Err(err).Uint("patient_id", patient.ID).Msg("Failed to write admission audit log")
	}

	return patient, nil
}

// GetPatient retrieves a patient by ID
func (s *PatientService) GetPatient(ctx context.Context, id uint) (*models.Patient, error) {
	patient, err := s.patientRepo.GetPatientByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	return patient, err
}

// ListPatients returns patients matching the filter
func (s *PatientService) ListPatients(ctx context.Context, filter repository.PatientFilter) ([]models.Patient, error) {
	if filter.Specialty != "" && !filter.Specialty.Valid() {
		return nil, fmt.Errorf("%w: unknown specialty %q", ErrInvalidPatient, filter.Specialty)
	}
	return s.patientRepo.ListPatients(ctx, filter)
}

// Discharge ends an active admission
func (s *PatientService) Discharge(ctx context.Context, id uint) (*models.Patient, error) {
	if err := s.patientRepo.DischargePatient(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to discharge patient: %w", err)
	}

	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Discharged patient %s (MRN: %s)", patient.Name, patient.MRN)
	if err := s.auditRepo.CreateAuditLog(ctx, actorFrom(ctx), "patient_discharge", details); err != nil {
		s.logger.Warn().Err(err).Uint("patient_id", id).Msg("Failed to write discharge audit log")
	}

	return patient, nil
}

// SpecialtyCensus returns every specialty in display order with its active
// patient count, and the active patients themselves when withPatients is set
func (s *PatientService) SpecialtyCensus(ctx context.Context, withPatients bool) ([]models.SpecialtySummary, error) {
	counts, err := s.patientRepo.CountActiveBySpecialty(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}

	bySpecialty := map[models.Specialty][]models.Patient{}
	if withPatients {
		active, err := s.patientRepo.ListPatients(ctx, repository.PatientFilter{Status: models.StatusActive})
		if err != nil {
			return nil, fmt.Errorf("failed to list patients: %w", err)
		}
		for _, p := range active {
			bySpecialty[p.Specialty] = append(bySpecialty[p.Specialty], p)
		}
	}

	census := make([]models.SpecialtySummary, 0, len(models.Specialties))
	for _, specialty := range models.Specialties {
		census = append(census, models.SpecialtySummary{
			Specialty:      specialty,
			ActivePatients: counts[specialty],
			Patients:       bySpecialty[specialty],
		})
	}
	return census, nil
}

func validateDraft(d models.PatientDraft) error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidPatient, fmt.Sprintf(format, args...))
	}

	switch {
	case strings.TrimSpace(d.Name) == "":
		return invalid("name is required")
	case strings.TrimSpace(d.MRN) == "":
		return invalid("MRN is required")
	case d.Age < 0 || d.Age > maxAge:
		return invalid("age must be between 0 and %d", maxAge)
	case !d.Gender.Valid():
		return invalid("unknown gender %q", d.Gender)
	case !d.Specialty.Valid():
		return invalid("unknown specialty %q", d.Specialty)
	case d.Status != models.StatusActive:
		return invalid("new admissions must be %s", models.StatusActive)
	case d.AssignedDoctor != nil && strings.TrimSpace(*d.AssignedDoctor) == "":
		return invalid("assigned doctor must be omitted rather than blank")
	}

	if _, err := time.Parse(AdmissionDateLayout, d.AdmissionDate); err != nil {
		return invalid("admission date %q is not a valid date and time", d.AdmissionDate)
	}
	return nil
}
