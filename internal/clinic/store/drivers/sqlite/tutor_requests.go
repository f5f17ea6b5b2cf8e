package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
)

type tutorRequestsRepo struct {
	db dbtx
}

const tutorRequestColumns = `id, vet_id, full_name, email, phone, pet_name, status, created_at`

func scanTutorRequest(row interface{ Scan(...any) error }) (domain.TutorRequest, error) {
	var (
		t         domain.TutorRequest
		createdAt int64
	)
	if err := row.Scan(&t.ID, &t.VetID, &t.FullName, &t.Email, &t.Phone, &t.PetName, &t.Status, &createdAt); err != nil {
		return domain.TutorRequest{}, mapNotFound(err)
	}
	t.CreatedAt = fromUnix(createdAt)
	return t, nil
}

func (r *tutorRequestsRepo) CreateTutorRequest(ctx context.Context, t domain.TutorRequest) error {
	created := t.CreatedAt
	if created.IsZero() {
		created = now()
	}
	status := t.Status
	if status == "" {
		status = domain.TutorRequestPending
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tutor_requests (`+tutorRequestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.VetID, t.FullName, t.Email, t.Phone, t.PetName, string(status), unix(created),
	)
	return mapConstraint(err)
}

func (r *tutorRequestsRepo) GetTutorRequest(ctx context.Context, id string) (domain.TutorRequest, error) {
	return scanTutorRequest(r.db.QueryRowContext(ctx, `SELECT `+tutorRequestColumns+` FROM tutor_requests WHERE id = ?`, id))
}

func (r *tutorRequestsRepo) ListTutorRequests(ctx context.Context, f domain.RecordFilter) ([]domain.TutorRequest, error) {
	var w where
	w.eq("vet_id", f.VetID)
	w.eq("status", f.Status)
	tail, args := w.sql("id DESC", f.Limit)

	rows, err := r.db.QueryContext(ctx, `SELECT `+tutorRequestColumns+` FROM tutor_requests`+tail, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(rows *sql.Rows) (domain.TutorRequest, error) { return scanTutorRequest(rows) })
}

func (r *tutorRequestsRepo) UpdateTutorRequestStatus(ctx context.Context, id string, status domain.TutorRequestStatus) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE tutor_requests SET status = ? WHERE id = ?`, string(status), id))
}
