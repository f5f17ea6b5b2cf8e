package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
)

type patientsRepo struct {
	db dbtx
}

const patientColumns = `id, name, species, breed, age, weight, vet_id, tutor_id, created_at`

func scanPatient(row interface{ Scan(...any) error }) (domain.Patient, error) {
	var (
		p         domain.Patient
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Species, &p.Breed, &p.Age, &p.Weight, &p.VetID, &p.TutorID, &createdAt); err != nil {
		return domain.Patient{}, mapNotFound(err)
	}
	p.CreatedAt = fromUnix(createdAt)
	return p, nil
}

func (r *patientsRepo) CreatePatient(ctx context.Context, p domain.Patient) error {
	created := p.CreatedAt
	if created.IsZero() {
		created = now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO patients (`+patientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Species, p.Breed, p.Age, p.Weight, p.VetID, p.TutorID, unix(created),
	)
	return mapConstraint(err)
}

func (r *patientsRepo) GetPatient(ctx context.Context, id string) (domain.Patient, error) {
	return scanPatient(r.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = ?`, id))
}

func (r *patientsRepo) ListPatients(ctx context.Context, f domain.RecordFilter) ([]domain.Patient, error) {
	var w where
	w.eq("id", f.PetID)
	w.eq("vet_id", f.VetID)
	w.eq("tutor_id", f.TutorID)
	tail, args := w.sql("id DESC", f.Limit)

	rows, err := r.db.QueryContext(ctx, `SELECT `+patientColumns+` FROM patients`+tail, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(rows *sql.Rows) (domain.Patient, error) { return scanPatient(rows) })
}
