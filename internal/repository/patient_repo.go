package repository

import (
	"context"
	"time"

	"hospital-admission/internal/models"

	"gorm.io/gorm"
)

// PatientFilter narrows patient listings; empty fields match everything
type PatientFilter struct {
	Specialty models.Specialty
	Status    string
}

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// CreatePatient inserts a patient; a taken MRN yields ErrDuplicate
func (r *PatientRepository) CreatePatient(ctx context.Context, patient *models.Patient) error {
	return translate(r.db.WithContext(ctx).Create(patient).Error)
}

// GetPatientByID retrieves a patient by ID
func (r *PatientRepository) GetPatientByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

// GetPatientByMRN retrieves a patient by medical record number
func (r *PatientRepository) GetPatientByMRN(ctx context.Context, mrn string) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).Where("mrn = ?", mrn).First(&patient).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

// ListPatients returns patients matching the filter, most recent admission first
func (r *PatientRepository) ListPatients(ctx context.Context, filter PatientFilter) ([]models.Patient, error) {
	query := r.db.WithContext(ctx).Model(&models.Patient{})
	if filter.Specialty != "" {
		query = query.Where("specialty = ?", filter.Specialty)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var patients []models.Patient
	err := query.Order("admission_date DESC").Order("id DESC").Find(&patients).Error
	return patients, err
}

// CountActiveBySpecialty returns the number of active patients per specialty.
// Specialties without patients are absent from the map.
func (r *PatientRepository) CountActiveBySpecialty(ctx context.Context) (map[models.Specialty]int64, error) {
	var rows []struct {
		Specialty models.Specialty
		Total     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Select("specialty, COUNT(*) AS total").
		Where("status = ?", models.StatusActive).
		Group("specialty").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Specialty]int64, len(rows))
	for _, row := range rows {
		counts[row.Specialty] = row.Total
	}
	return counts, nil
}

// DischargePatient marks an active patient as discharged.
// Returns ErrNotFound when no active patient has that ID.
func (r *PatientRepository) DischargePatient(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("id = ? AND status = ?", id, models.StatusActive).
		Updates(map[string]interface{}{
			"status":        models.StatusDischarged,
			"discharged_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
