package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
)

type vaccinationsRepo struct {
	db dbtx
}

const vaccinationColumns = `id, pet_id, medication_name, dosage, unit, notes, administered_at`

func (r *vaccinationsRepo) CreateVaccination(ctx context.Context, v domain.VaccinationRecord) error {
	at := v.AdministeredAt
	if at.IsZero() {
		at = now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vaccination_records (`+vaccinationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.PetID, v.MedicationName, v.Dosage, v.Unit, v.Notes, unix(at),
	)
	return mapConstraint(err)
}

func (r *vaccinationsRepo) ListVaccinations(ctx context.Context, f domain.RecordFilter) ([]domain.VaccinationRecord, error) {
	var w where
	w.eq("pet_id", f.PetID)
	w.tutorPets("pet_id", f.TutorID)
	if f.VetID != "" {
		w.add("pet_id IN (SELECT id FROM patients WHERE vet_id = ?)", f.VetID)
	}
	tail, args := w.sql("administered_at DESC, id DESC", f.Limit)

	rows, err := r.db.QueryContext(ctx, `SELECT `+vaccinationColumns+` FROM vaccination_records`+tail, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(rows *sql.Rows) (domain.VaccinationRecord, error) {
		var (
			v  domain.VaccinationRecord
			at int64
		)
		err := rows.Scan(&v.ID, &v.PetID, &v.MedicationName, &v.Dosage, &v.Unit, &v.Notes, &at)
		v.AdministeredAt = fromUnix(at)
		return v, err
	})
}
