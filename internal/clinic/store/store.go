package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes one sub-repository per
// table so callers cannot start a transaction from inside a transaction by
// accident.
type Store interface {
	Users() Users
	Profiles() Profiles
	Veterinarians() Veterinarians
	Patients() Patients
	Appointments() Appointments
	Consultations() Consultations
	Exams() Exams
	Vaccinations() Vaccinations
	TutorRequests() TutorRequests
	RefreshTokens() RefreshTokens
	MFASessions() MFASessions
	PasswordResets() PasswordResets

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// IsEmpty reports whether no user exists yet (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)

	UpdateMFASecret(ctx context.Context, userID, secret string) error
	EnableMFA(ctx context.Context, userID string) error

	// DisableMFA clears both the enabled flag and the secret.
	DisableMFA(ctx context.Context, userID string) error
}

type Profiles interface {
	GetProfile(ctx context.Context, id string) (domain.Profile, error)

	// ListProfiles returns profiles of the given role, or all when empty.
	ListProfiles(ctx context.Context, r role.Role, limit int) ([]domain.Profile, error)

	CreateProfile(ctx context.Context, p domain.Profile) error
	UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) error
}

type Veterinarians interface {
	// GetVeterinarian returns the vet joined with its profile.
	GetVeterinarian(ctx context.Context, id string) (domain.Veterinarian, error)

	// ListVeterinarians returns vets joined with profiles, newest first,
	// optionally filtered by status.
	ListVeterinarians(ctx context.Context, status domain.VetStatus, limit int) ([]domain.Veterinarian, error)

	CreateVeterinarian(ctx context.Context, v domain.Veterinarian) error
	UpdateVeterinarian(ctx context.Context, id string, u domain.VeterinarianUpdate) error
	UpdateVeterinarianStatus(ctx context.Context, id string, status domain.VetStatus) error

	// CountByStatus feeds the admin dashboard.
	CountByStatus(ctx context.Context) (map[domain.VetStatus]int, error)
}

type Patients interface {
	CreatePatient(ctx context.Context, p domain.Patient) error
	GetPatient(ctx context.Context, id string) (domain.Patient, error)
	ListPatients(ctx context.Context, f domain.RecordFilter) ([]domain.Patient, error)
}

type Appointments interface {
	CreateAppointment(ctx context.Context, a domain.Appointment) error
	ListAppointments(ctx context.Context, f domain.RecordFilter) ([]domain.Appointment, error)
}

type Consultations interface {
	CreateConsultation(ctx context.Context, c domain.Consultation) error

	// ListConsultations hides rows not visible to tutors when visibleOnly.
	ListConsultations(ctx context.Context, f domain.RecordFilter, visibleOnly bool) ([]domain.Consultation, error)
}

type Exams interface {
	CreateExam(ctx context.Context, e domain.Exam) error

	// ListExams orders by exam_date descending.
	ListExams(ctx context.Context, f domain.RecordFilter) ([]domain.Exam, error)
}

type Vaccinations interface {
	CreateVaccination(ctx context.Context, v domain.VaccinationRecord) error
	ListVaccinations(ctx context.Context, f domain.RecordFilter) ([]domain.VaccinationRecord, error)
}

type TutorRequests interface {
	CreateTutorRequest(ctx context.Context, r domain.TutorRequest) error
	GetTutorRequest(ctx context.Context, id string) (domain.TutorRequest, error)
	ListTutorRequests(ctx context.Context, f domain.RecordFilter) ([]domain.TutorRequest, error)
	UpdateTutorRequestStatus(ctx context.Context, id string, status domain.TutorRequestStatus) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeSession revokes every token of a sign-in session.
	RevokeSession(ctx context.Context, sessionID string) error

	// RevokeAllForUser is used after a password recovery.
	RevokeAllForUser(ctx context.Context, userID string) error

	// RevokeOtherSessions keeps only the given session alive.
	RevokeOtherSessions(ctx context.Context, userID, keepSessionID string) error

	// DeleteExpired removes tokens that expired before the given time. Revoked
	// rows are kept until then so reuse can still be detected.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type MFASessions interface {
	CreateMFASession(ctx context.Context, s domain.MFASession) error
	GetMFASession(ctx context.Context, id string) (domain.MFASession, error)

	// IncrementAttempts bumps the failure counter and returns the new row.
	IncrementAttempts(ctx context.Context, id string) (domain.MFASession, error)
	DeleteMFASession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type PasswordResets interface {
	CreatePasswordReset(ctx context.Context, r domain.PasswordReset) error
	GetPasswordResetByHash(ctx context.Context, hash string) (domain.PasswordReset, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
