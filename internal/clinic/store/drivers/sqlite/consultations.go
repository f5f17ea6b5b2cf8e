package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
)

type consultationsRepo struct {
	db dbtx
}

const consultationColumns = `id, pet_id, vet_id, diagnosis, treatment, is_visible_to_tutor, consultation_date`

func (r *consultationsRepo) CreateConsultation(ctx context.Context, c domain.Consultation) error {
	date := c.ConsultationDate
	if date.IsZero() {
		date = now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO consultations (`+consultationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PetID, c.VetID, c.Diagnosis, c.Treatment, boolInt(c.VisibleToTutor), unix(date),
	)
	return mapConstraint(err)
}

func (r *consultationsRepo) ListConsultations(ctx context.Context, f domain.RecordFilter, visibleOnly bool) ([]domain.Consultation, error) {
	var w where
	w.eq("pet_id", f.PetID)
	w.eq("vet_id", f.VetID)
	w.tutorPets("pet_id", f.TutorID)
	if visibleOnly {
		w.add("is_visible_to_tutor = 1")
	}
	tail, args := w.sql("consultation_date DESC, id DESC", f.Limit)

	rows, err := r.db.QueryContext(ctx, `SELECT `+consultationColumns+` FROM consultations`+tail, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(rows *sql.Rows) (domain.Consultation, error) {
		var (
			c       domain.Consultation
			visible int
			date    int64
		)
		err := rows.Scan(&c.ID, &c.PetID, &c.VetID, &c.Diagnosis, &c.Treatment, &visible, &date)
		c.VisibleToTutor = visible != 0
		c.ConsultationDate = fromUnix(date)
		return c, err
	})
}
