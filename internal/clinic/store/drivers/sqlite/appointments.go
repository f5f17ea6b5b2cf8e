package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
)

type appointmentsRepo struct {
	db dbtx
}

const appointmentColumns = `id, pet_id, vet_id, tutor_id, appointment_date, appointment_time, status, created_at`

func (r *appointmentsRepo) CreateAppointment(ctx context.Context, a domain.Appointment) error {
	created := a.CreatedAt
	if created.IsZero() {
		created = now()
	}
	status := a.Status
	if status == "" {
		status = domain.AppointmentScheduled
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO appointments (`+appointmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PetID, a.VetID, a.TutorID, a.Date, a.Time, string(status), unix(created),
	)
	return mapConstraint(err)
}

func (r *appointmentsRepo) ListAppointments(ctx context.Context, f domain.RecordFilter) ([]domain.Appointment, error) {
	var w where
	w.eq("pet_id", f.PetID)
	w.eq("vet_id", f.VetID)
	w.eq("status", f.Status)
	w.tutorPets("pet_id", f.TutorID)
	tail, args := w.sql("appointment_date DESC, appointment_time DESC", f.Limit)

	rows, err := r.db.QueryContext(ctx, `SELECT `+appointmentColumns+` FROM appointments`+tail, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(rows *sql.Rows) (domain.Appointment, error) {
		var (
			a         domain.Appointment
			createdAt int64
		)
		err := rows.Scan(&a.ID, &a.PetID, &a.VetID, &a.TutorID, &a.Date, &a.Time, &a.Status, &createdAt)
		a.CreatedAt = fromUnix(createdAt)
		return a, err
	})
}
