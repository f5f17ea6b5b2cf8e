package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestProfilePolicies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.admin(t)
	vet, temp := env.vet(t, admin, "vet@example.com")
	ana := env.signUp(t, "ana@example.com")
	bob := env.signUp(t, "bob@example.com")

	t.Run("temp password only visible to admins", func(t *testing.T) {
		p, err := env.profiles.Get(ctx, admin, vet.UserID)
		require.NoError(t, err)
		require.Equal(t, temp, p.TempPassword)

		p, err = env.profiles.Get(ctx, vet, vet.UserID)
		require.NoError(t, err)
		require.Empty(t, p.TempPassword)
		require.True(t, p.MustChangePassword)
	})

	t.Run("tutors only read themselves", func(t *testing.T) {
		_, err := env.profiles.Get(ctx, ana, ana.UserID)
		require.NoError(t, err)
		_, err = env.profiles.Get(ctx, ana, bob.UserID)
		require.ErrorIs(t, err, ErrPermissionDenied)
		_, err = env.profiles.Get(ctx, ana, vet.UserID)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("vets read tutors", func(t *testing.T) {
		_, err := env.profiles.Get(ctx, vet, ana.UserID)
		require.NoError(t, err)
		_, err = env.profiles.Get(ctx, vet, admin.UserID)
		require.ErrorIs(t, err, ErrPermissionDenied)

		list, err := env.profiles.List(ctx, vet, "", 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, p := range list {
			require.Equal(t, role.Tutor, p.Role)
		}

		_, err = env.profiles.List(ctx, vet, role.Admin, 0)
		require.ErrorIs(t, err, ErrPermissionDenied)
		_, err = env.profiles.List(ctx, ana, "", 0)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("update own contact data", func(t *testing.T) {
		p, err := env.profiles.Update(ctx, ana, ana.UserID, domain.ProfileUpdate{Phone: ptr("11988887777")})
		require.NoError(t, err)
		require.Equal(t, "11988887777", p.Phone)

		_, err = env.profiles.Update(ctx, ana, bob.UserID, domain.ProfileUpdate{Phone: ptr("1")})
		require.ErrorIs(t, err, ErrPermissionDenied)

		_, err = env.profiles.Update(ctx, vet, vet.UserID, domain.ProfileUpdate{MustChangePassword: ptr(false)})
		require.ErrorIs(t, err, ErrPermissionDenied)

		_, err = env.profiles.Update(ctx, ana, ana.UserID, domain.ProfileUpdate{})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("users cannot self-promote", func(t *testing.T) {
		_, err := env.profiles.Create(ctx, ana, domain.Profile{Role: role.Admin, FullName: "Ana"})
		require.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestProfileCreateForUserWithoutProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	now := time.Now().UTC()
	require.NoError(t, env.store.Users().CreateUser(ctx, domain.User{
		ID: "01J000000000000000000000US", Email: "orphan@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	}))
	orphan := Actor{UserID: "01J000000000000000000000US"}

	p, err := env.profiles.Create(ctx, orphan, domain.Profile{FullName: " Orphan ", MustChangePassword: true})
	require.NoError(t, err)
	require.Equal(t, role.Tutor, p.Role)
	require.Equal(t, "orphan@example.com", p.Email)
	require.Equal(t, "Orphan", p.FullName)
	require.False(t, p.MustChangePassword)

	_, err = env.profiles.Create(ctx, orphan, domain.Profile{FullName: "Again"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestVeterinarianPolicies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.admin(t)
	ana := env.signUp(t, "ana@example.com")

	_, _, err := env.vets.Create(ctx, ana, domain.NewVeterinarian{Email: "x@example.com", FullName: "X", CRMV: "1", UF: "SP"})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, _, err = env.vets.Create(ctx, admin, domain.NewVeterinarian{Email: "x@example.com", FullName: "X", CRMV: "1", UF: "S"})
	require.ErrorIs(t, err, ErrValidation)

	vet, temp := env.vet(t, admin, "vet@example.com")
	require.Len(t, temp, 11)

	_, _, err = env.vets.Create(ctx, admin, domain.NewVeterinarian{Email: "VET@example.com", FullName: "Dup", CRMV: "2", UF: "RJ"})
	require.ErrorIs(t, err, ErrEmailTaken)

	v, err := env.vets.Get(ctx, ana, vet.UserID)
	require.NoError(t, err)
	require.Equal(t, "SP", v.UF)
	require.Equal(t, domain.VetActive, v.Status)
	require.NotNil(t, v.Profile)
	require.Empty(t, v.Profile.TempPassword)

	t.Run("inactive vets are hidden from tutors", func(t *testing.T) {
		_, err := env.vets.SetStatus(ctx, vet, vet.UserID, domain.VetInactive)
		require.ErrorIs(t, err, ErrPermissionDenied)

		v, err := env.vets.SetStatus(ctx, admin, vet.UserID, domain.VetInactive)
		require.NoError(t, err)
		require.Equal(t, domain.VetInactive, v.Status)

		_, err = env.vets.Get(ctx, ana, vet.UserID)
		require.ErrorIs(t, err, ErrPermissionDenied)
		_, err = env.vets.Get(ctx, vet, vet.UserID)
		require.NoError(t, err)

		list, err := env.vets.List(ctx, ana, "", 0)
		require.NoError(t, err)
		require.Empty(t, list)

		_, err = env.vets.List(ctx, ana, domain.VetInactive, 0)
		require.ErrorIs(t, err, ErrPermissionDenied)

		list, err = env.vets.List(ctx, admin, domain.VetInactive, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)

		counts, err := env.vets.Counts(ctx, admin)
		require.NoError(t, err)
		require.Equal(t, 1, counts[domain.VetInactive])
		require.Equal(t, 0, counts[domain.VetActive])
		require.Equal(t, 0, counts[domain.VetPending])

		_, err = env.vets.Counts(ctx, vet)
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("vets edit themselves", func(t *testing.T) {
		v, err := env.vets.Update(ctx, vet, vet.UserID, domain.VeterinarianEdit{
			Profile: domain.ProfileUpdate{Phone: ptr("1133334444")},
			Vet:     domain.VeterinarianUpdate{ClinicName: ptr("Clinica Billy"), UF: ptr("rj")},
		})
		require.NoError(t, err)
		require.Equal(t, "Clinica Billy", v.ClinicName)
		require.Equal(t, "RJ", v.UF)
		require.Equal(t, "1133334444", v.Profile.Phone)

		other, _ := env.vet(t, admin, "other@example.com")
		_, err = env.vets.Update(ctx, other, vet.UserID, domain.VeterinarianEdit{
			Vet: domain.VeterinarianUpdate{ClinicName: ptr("Hijack")},
		})
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("admin triggers password reset", func(t *testing.T) {
		require.ErrorIs(t, env.vets.ResetPassword(ctx, ana, vet.UserID), ErrPermissionDenied)
		require.NoError(t, env.vets.ResetPassword(ctx, admin, vet.UserID))
		require.NotEmpty(t, env.notifier.token("vet@example.com"))
	})
}

func TestRecordPolicies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.admin(t)
	vet, _ := env.vet(t, admin, "vet@example.com")
	otherVet, _ := env.vet(t, admin, "other@example.com")
	ana := env.signUp(t, "ana@example.com")
	bob := env.signUp(t, "bob@example.com")

	rex, err := env.records.CreatePatient(ctx, ana, domain.Patient{Name: "Rex", Species: "Cão"})
	require.NoError(t, err)
	require.Equal(t, ana.UserID, rex.TutorID)

	_, err = env.records.CreatePatient(ctx, ana, domain.Patient{Name: "Nameless"})
	require.ErrorIs(t, err, ErrValidation)

	mia, err := env.records.CreatePatient(ctx, vet, domain.Patient{Name: "Mia", Species: "Gato", TutorID: bob.UserID})
	require.NoError(t, err)
	require.Equal(t, vet.UserID, mia.VetID)

	t.Run("tutors see their own pets", func(t *testing.T) {
		pets, err := env.records.ListPatients(ctx, ana, domain.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, pets, 1)
		require.Equal(t, rex.ID, pets[0].ID)

		pets, err = env.records.ListPatients(ctx, ana, domain.RecordFilter{TutorID: bob.UserID})
		require.NoError(t, err)
		require.Len(t, pets, 1, "scope overrides a forged filter")
		require.Equal(t, rex.ID, pets[0].ID)

		pets, err = env.records.ListPatients(ctx, admin, domain.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, pets, 2)
	})

	t.Run("appointments", func(t *testing.T) {
		ap, err := env.records.CreateAppointment(ctx, ana, domain.Appointment{
			PetID: rex.ID, VetID: vet.UserID, Date: "2026-11-02", Time: "10:30",
		})
		require.NoError(t, err)
		require.Equal(t, domain.AppointmentScheduled, ap.Status)
		require.Equal(t, ana.UserID, ap.TutorID)

		_, err = env.records.CreateAppointment(ctx, bob, domain.Appointment{
			PetID: rex.ID, VetID: vet.UserID, Date: "2026-11-02", Time: "10:30",
		})
		require.ErrorIs(t, err, ErrPermissionDenied)

		_, err = env.records.CreateAppointment(ctx, ana, domain.Appointment{PetID: rex.ID, Date: "2026-11-02", Time: "10:30"})
		require.ErrorIs(t, err, ErrValidation, "rex has no vet yet")
	})

	t.Run("consultation visibility", func(t *testing.T) {
		_, err := env.records.CreateConsultation(ctx, ana, domain.Consultation{PetID: mia.ID, Diagnosis: "x"})
		require.ErrorIs(t, err, ErrPermissionDenied)
		_, err = env.records.CreateConsultation(ctx, otherVet, domain.Consultation{PetID: mia.ID, Diagnosis: "x"})
		require.ErrorIs(t, err, ErrPermissionDenied)

		_, err = env.records.CreateConsultation(ctx, vet, domain.Consultation{PetID: mia.ID, Diagnosis: "Otite", VisibleToTutor: true})
		require.NoError(t, err)
		_, err = env.records.CreateConsultation(ctx, vet, domain.Consultation{PetID: mia.ID, Diagnosis: "Interno"})
		require.NoError(t, err)

		list, err := env.records.ListConsultations(ctx, bob, domain.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "Otite", list[0].Diagnosis)

		list, err = env.records.ListConsultations(ctx, vet, domain.RecordFilter{PetID: mia.ID})
		require.NoError(t, err)
		require.Len(t, list, 2)

		list, err = env.records.ListConsultations(ctx, otherVet, domain.RecordFilter{})
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("exams default to a concluded pdf", func(t *testing.T) {
		e, err := env.records.CreateExam(ctx, vet, domain.Exam{PetID: mia.ID, Title: "Hemograma", ExamDate: "2026-10-01"})
		require.NoError(t, err)
		require.Equal(t, domain.ExamDone, e.Status)
		require.Equal(t, "PDF", e.FileType)

		list, err := env.records.ListExams(ctx, vet, domain.RecordFilter{PetID: mia.ID})
		require.NoError(t, err)
		require.Len(t, list, 1)

		_, err = env.records.ListExams(ctx, otherVet, domain.RecordFilter{PetID: mia.ID})
		require.ErrorIs(t, err, ErrPermissionDenied)

		list, err = env.records.ListExams(ctx, bob, domain.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)

		list, err = env.records.ListExams(ctx, ana, domain.RecordFilter{})
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("vaccinations", func(t *testing.T) {
		_, err := env.records.CreateVaccination(ctx, vet, domain.VaccinationRecord{PetID: mia.ID})
		require.ErrorIs(t, err, ErrValidation)

		v, err := env.records.CreateVaccination(ctx, vet, domain.VaccinationRecord{PetID: mia.ID, MedicationName: "V10", Dosage: "1", Unit: "ml"})
		require.NoError(t, err)
		require.False(t, v.AdministeredAt.IsZero())

		list, err := env.records.ListVaccinations(ctx, bob, domain.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("tutor requests", func(t *testing.T) {
		_, err := env.records.CreateTutorRequest(ctx, vet, domain.TutorRequest{VetID: vet.UserID, FullName: "x", Email: "x@example.com"})
		require.ErrorIs(t, err, ErrPermissionDenied)

		r, err := env.records.CreateTutorRequest(ctx, ana, domain.TutorRequest{
			VetID: vet.UserID, FullName: "Ana", Email: "ANA@example.com", PetName: "Rex",
		})
		require.NoError(t, err)
		require.Equal(t, domain.TutorRequestPending, r.Status)
		require.Equal(t, "ana@example.com", r.Email)

		_, err = env.records.ListTutorRequests(ctx, ana, domain.RecordFilter{})
		require.ErrorIs(t, err, ErrPermissionDenied)

		list, err := env.records.ListTutorRequests(ctx, otherVet, domain.RecordFilter{})
		require.NoError(t, err)
		require.Empty(t, list)

		_, err = env.records.SetTutorRequestStatus(ctx, otherVet, r.ID, domain.TutorRequestApproved)
		require.ErrorIs(t, err, ErrPermissionDenied)
		_, err = env.records.SetTutorRequestStatus(ctx, vet, r.ID, "MAYBE")
		require.ErrorIs(t, err, ErrValidation)

		r, err = env.records.SetTutorRequestStatus(ctx, vet, r.ID, domain.TutorRequestApproved)
		require.NoError(t, err)
		require.Equal(t, domain.TutorRequestApproved, r.Status)
	})
}

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ana := env.signUp(t, "ana@example.com")

	past := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, env.store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        "01J0000000000000000000EXPD",
		UserID:    ana.UserID,
		TokenHash: "expired-hash",
		SessionID: "old-session",
		ExpiresAt: past,
		CreatedAt: past.Add(-time.Hour),
	}))

	hk := NewHousekeepingService(env.store, slog.New(slog.DiscardHandler), 0)
	hk.Cleanup(ctx)

	_, err := env.store.RefreshTokens().GetRefreshTokenByHash(ctx, "expired-hash")
	require.ErrorIs(t, err, store.ErrNotFound)

	hk.Start()
	hk.Stop()
}
