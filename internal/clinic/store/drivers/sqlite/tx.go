package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the DB stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users                   { return &usersRepo{db: t.tx} }
func (t *txStore) Profiles() store.Profiles             { return &profilesRepo{db: t.tx} }
func (t *txStore) Veterinarians() store.Veterinarians   { return &veterinariansRepo{db: t.tx} }
func (t *txStore) Patients() store.Patients             { return &patientsRepo{db: t.tx} }
func (t *txStore) Appointments() store.Appointments     { return &appointmentsRepo{db: t.tx} }
func (t *txStore) Consultations() store.Consultations   { return &consultationsRepo{db: t.tx} }
func (t *txStore) Exams() store.Exams                   { return &examsRepo{db: t.tx} }
func (t *txStore) Vaccinations() store.Vaccinations     { return &vaccinationsRepo{db: t.tx} }
func (t *txStore) TutorRequests() store.TutorRequests   { return &tutorRequestsRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens   { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) MFASessions() store.MFASessions       { return &mfaSessionsRepo{db: t.tx} }
func (t *txStore) PasswordResets() store.PasswordResets { return &passwordResetsRepo{db: t.tx} }
