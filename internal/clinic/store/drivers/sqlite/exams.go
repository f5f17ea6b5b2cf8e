package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
)

type examsRepo struct {
	db dbtx
}

const examColumns = `id, pet_id, vet_id, title, exam_date, status, file_type, created_at`

func (r *examsRepo) CreateExam(ctx context.Context, e domain.Exam) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exams (`+examColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PetID, e.VetID, e.Title, e.ExamDate, string(e.Status), e.FileType, unix(created),
	)
	return mapConstraint(err)
}

func (r *examsRepo) ListExams(ctx context.Context, f domain.RecordFilter) ([]domain.Exam, error) {
	var w where
	w.eq("pet_id", f.PetID)
	w.eq("vet_id", f.VetID)
	w.eq("status", f.Status)
	w.tutorPets("pet_id", f.TutorID)
	tail, args := w.sql("exam_date DESC, id DESC", f.Limit)

	rows, err := r.db.QueryContext(ctx, `SELECT `+examColumns+` FROM exams`+tail, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(rows *sql.Rows) (domain.Exam, error) {
		var (
			e         domain.Exam
			createdAt int64
		)
		err := rows.Scan(&e.ID, &e.PetID, &e.VetID, &e.Title, &e.ExamDate, &e.Status, &e.FileType, &createdAt)
		e.CreatedAt = fromUnix(createdAt)
		return e, err
	})
}
