package admission

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hospital-admission/internal/models"
)

// ErrInvalidAge is returned when the age field does not hold a whole number
var ErrInvalidAge = errors.New("age must be a whole number")

// Form holds the current values of the admission form fields
type Form struct {
	Name           string           `form:"name" json:"name"`
	MRN            string           `form:"mrn" json:"mrn"`
	Age            string           `form:"age" json:"age"`
	Gender         models.Gender    `form:"gender" json:"gender"`
	Diagnosis      string           `form:"diagnosis" json:"diagnosis"`
	Specialty      models.Specialty `form:"specialty" json:"specialty"`
	AssignedDoctor string           `form:"assigned_doctor" json:"assignedDoctor"`
	AdmissionDate  string           `form:"admission_date" json:"admissionDate"`
	AdmissionTime  string           `form:"admission_time" json:"admissionTime"`
}

// NewForm returns an empty form with the default gender and specialty selected
func NewForm() Form {
	return Form{
		Gender:    models.GenderMale,
		Specialty: models.SpecialtyGeneralInternalMedicine,
	}
}

// AdmissionTimestamp joins a date ("2024-03-05") and a time ("14:30")
// into "2024-03-05T14:30:00".
func AdmissionTimestamp(date, clock string) string {
	return date + "T" + clock + ":00"
}

// BuildDraft shapes the form into the payload sent to the admitter.
// Only the age is checked. The assigned doctor is trimmed and left out when
// blank; every other field is passed through as entered.
func (f Form) BuildDraft() (models.PatientDraft, error) {
	age, err := strconv.Atoi(strings.TrimSpace(f.Age))
	if err != nil {
		return models.PatientDraft{}, fmt.Errorf("%w: %q", ErrInvalidAge, f.Age)
	}

	var doctor *string
	if d := strings.TrimSpace(f.AssignedDoctor); d != "" {
		doctor = &d
	}

	return models.PatientDraft{
		Name:           f.Name,
		MRN:            f.MRN,
		Age:            age,
		Gender:         f.Gender,
		Diagnosis:      f.Diagnosis,
		AdmissionDate:  AdmissionTimestamp(f.AdmissionDate, f.AdmissionTime),
		Status:         models.StatusActive,
		Specialty:      f.Specialty,
		AssignedDoctor: doctor,
	}, nil
}
