package service

import (
	"context"
	"fmt"
	"io"

	"hospital-admission/internal/models"
	"hospital-admission/internal/repository"

	"github.com/tealeg/xlsx"
)

var censusHeader = []string{
	"ID", "MRN", "Name", "Age", "Gender", "Specialty",
	"Diagnosis", "Admitted", "Assigned Doctor", "Status",
}

// ExportCensus writes the patients matching filter as an .xlsx workbook with
// one sheet of patients and one sheet of per-specialty totals
func (s *PatientService) ExportCensus(ctx context.Context, filter repository.PatientFilter, w io.Writer) error {
	patients, err := s.ListPatients(ctx, filter)
	if err != nil {
		return err
	}
	census, err := s.SpecialtyCensus(ctx, false)
	if err != nil {
		return err
	}

	file, err := buildCensusWorkbook(patients, census)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write census workbook: %w", err)
	}
	return nil
}

func buildCensusWorkbook(patients []models.Patient, census []models.SpecialtySummary) (*xlsx.File, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Patients")
	if err != nil {
		return nil, fmt.Errorf("failed to add patients sheet: %w", err)
	}
	headRow := sheet.AddRow()
	for _, title := range censusHeader {
		headRow.AddCell().Value = title
	}
	for _, p := range patients {
		addPatientRow(sheet.AddRow(), p)
	}

	totals, err := file.AddSheet("Specialties")
	if err != nil {
		return nil, fmt.Errorf("failed to add specialties sheet: %w", err)
	}
	headRow = totals.AddRow()
	headRow.AddCell().Value = "Specialty"
	headRow.AddCell().Value = "Active Patients"
	for _, summary := range census {
		row := totals.AddRow()
		row.AddCell().Value = string(summary.Specialty)
		row.AddCell().SetInt64(summary.ActivePatients)
	}

	return file, nil
}

func addPatientRow(row *xlsx.Row, p models.Patient) {
	row.AddCell().SetInt64(int64(p.ID))
	row.AddCell().Value = p.MRN
	row.AddCell().Value = p.Name
	row.AddCell().SetInt(p.Age)
	row.AddCell().Value = string(p.Gender)
	row.AddCell().Value = string(p.Specialty)
	row.AddCell().Value = p.Diagnosis
	row.AddCell().Value = p.AdmissionDate

	cell := row.AddCell()
	if p.AssignedDoctor != nil {
		cell.Value = *p.AssignedDoctor
	}
	row.AddCell().Value = p.Status
}
