package models

import "time"

// Gender of an admitted patient
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists the values accepted by the admission form
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Valid reports whether g is one of Genders
func (g Gender) Valid() bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

// Specialty is the clinical service a patient is admitted under
type Specialty string

const (
	SpecialtyGeneralInternalMedicine Specialty = "General Internal Medicine"
	SpecialtyCardiology              Specialty = "Cardiology"
	SpecialtyNeurology               Specialty = "Neurology"
	SpecialtyOncology                Specialty = "Oncology"
	SpecialtyPulmonology             Specialty = "Pulmonology"
	SpecialtyGastroenterology        Specialty = "Gastroenterology"
	SpecialtyNephrology              Specialty = "Nephrology"
	SpecialtyEndocrinology           Specialty = "Endocrinology"
	SpecialtyInfectiousDiseases      Specialty = "Infectious Diseases"
	SpecialtyOrthopedics             Specialty = "Orthopedics"
	SpecialtyPediatrics              Specialty = "Pediatrics"
	SpecialtyGeriatrics              Specialty = "Geriatrics"
)

// Specialties is the fixed list offered on the admission form, in display order
var Specialties = []Specialty{
	SpecialtyGeneralInternalMedicine,
	SpecialtyCardiology,
	SpecialtyNeurology,
	SpecialtyOncology,
	SpecialtyPulmonology,
	SpecialtyGastroenterology,
	SpecialtyNephrology,
	SpecialtyEndocrinology,
	SpecialtyInfectiousDiseases,
	SpecialtyOrthopedics,
	SpecialtyPediatrics,
	SpecialtyGeriatrics,
}

// Valid reports whether s is one of Specialties
func (s Specialty) Valid() bool {
	for _, v := range Specialties {
		if s == v {
			return true
		}
	}
	return false
}

// Patient statuses
const (
	StatusActive     = "Active"
	StatusDischarged = "Discharged"
)

// PatientDraft is the admission payload assembled from the form before it is
// handed to an admitter. It has no identifier yet.
type PatientDraft struct {
	Name           string    `json:"name"`
	MRN            string    `json:"mrn"`
	Age            int       `json:"age"`
	Gender         Gender    `json:"gender"`
	Diagnosis      string    `json:"diagnosis"`
	AdmissionDate  string    `json:"admissionDate"`
	Status         string    `json:"status"`
	Specialty      Specialty `json:"specialty"`
	AssignedDoctor *string   `json:"assignedDoctor,omitempty"`
}

// Patient represents the patients table
type Patient struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	MRN            string     `gorm:"column:mrn;size:50;uniqueIndex;not null" json:"mrn"`
	Age            int        `json:"age"`
	Gender         Gender     `gorm:"size:10;not null" json:"gender"`
	Diagnosis      string     `gorm:"type:text" json:"diagnosis"`
	AdmissionDate  string     `gorm:"size:25;not null" json:"admissionDate"`
	Status         string     `gorm:"size:20;not null;default:'Active';index" json:"status"`
	Specialty      Specialty  `gorm:"size:100;not null;index" json:"specialty"`
	AssignedDoctor *string    `gorm:"size:255" json:"assignedDoctor,omitempty"`
	DischargedAt   *time.Time `json:"dischargedAt,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Patient model
func (Patient) TableName() string {
	return "patients"
}

// NewPatientFromDraft copies a draft into a record ready to be inserted
func NewPatientFromDraft(d PatientDraft) *Patient {
	return &Patient{
		Name:           d.Name,
		MRN:            d.MRN,
		Age:            d.Age,
		Gender:         d.Gender,
		Diagnosis:      d.Diagnosis,
		AdmissionDate:  d.AdmissionDate,
		Status:         d.Status,
		Specialty:      d.Specialty,
		AssignedDoctor: d.AssignedDoctor,
	}
}

// SpecialtySummary is the per-specialty census shown on the specialties view
type SpecialtySummary struct {
	Specialty      Specialty `json:"specialty"`
	ActivePatients int64     `json:"active_patients"`
	Patients       []Patient `json:"patients,omitempty"`
}
