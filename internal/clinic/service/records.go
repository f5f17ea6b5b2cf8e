package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/store"
	"github.com/aussiebroadwan/billybuddy/pkg/idx"
)

// RecordsService applies the clinical record row policies: tutors see their
// own pets (and only consultations marked visible), veterinarians their own
// patients, admins everything.
type RecordsService struct {
	Store store.Store
}

// scope narrows a filter to the rows the actor may read.
func scope(a Actor, f domain.RecordFilter) domain.RecordFilter {
	switch {
	case a.IsTutor():
		f.TutorID = a.UserID
	case a.IsVet():
		f.VetID = a.UserID
	}
	return f
}

// pet loads a patient and checks the actor may write records for it.
func (s *RecordsService) pet(ctx context.Context, a Actor, petID, action string) (domain.Patient, error) {
	if strings.TrimSpace(petID) == "" {
		return domain.Patient{}, invalid("pet_id", "is required")
	}
	p, err := s.Store.Patients().GetPatient(ctx, petID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Patient{}, invalid("pet_id", "does not reference a patient")
		}
		return domain.Patient{}, err
	}

	switch {
	case a.IsAdmin():
	case a.IsVet() && p.VetID == a.UserID:
	case a.IsTutor() && p.TutorID == a.UserID:
	default:
		return domain.Patient{}, deny(ctx, a, action, slog.String("pet_id", petID))
	}
	return p, nil
}

func (s *RecordsService) requireRole(ctx context.Context, a Actor, action string, vetAllowed, tutorAllowed bool) error {
	if a.IsAdmin() || (vetAllowed && a.IsVet()) || (tutorAllowed && a.IsTutor()) {
		return nil
	}
	return deny(ctx, a, action)
}

// CreatePatient registers a pet. A vet becomes its veterinarian; a tutor its
// owner.
func (s *RecordsService) CreatePatient(ctx context.Context, a Actor, p domain.Patient) (domain.Patient, error) {
	if err := s.requireRole(ctx, a, "patient.create", true, true); err != nil {
		return domain.Patient{}, err
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Species = strings.TrimSpace(p.Species)
	if p.Name == "" {
		return domain.Patient{}, invalid("name", "is required")
	}
	if p.Species == "" {
		return domain.Patient{}, invalid("species", "is required")
	}

	switch {
	case a.IsVet():
		p.VetID = a.UserID
	case a.IsTutor():
		p.TutorID = a.UserID
	}

	p.ID = idx.New().String()
	p.CreatedAt = time.Now().UTC()
	if err := s.Store.Patients().CreatePatient(ctx, p); err != nil {
		return domain.Patient{}, err
	}
	return p, nil
}

func (s *RecordsService) ListPatients(ctx context.Context, a Actor, f domain.RecordFilter) ([]domain.Patient, error) {
	if err := s.requireRole(ctx, a, "patient.list", true, true); err != nil {
		return nil, err
	}
	return s.Store.Patients().ListPatients(ctx, scope(a, f))
}

// CreateAppointment schedules a visit. New appointments start AGENDADO.
func (s *RecordsService) CreateAppointment(ctx context.Context, a Actor, ap domain.Appointment) (domain.Appointment, error) {
	pet, err := s.pet(ctx, a, ap.PetID, "appointment.create")
	if err != nil {
		return domain.Appointment{}, err
	}

	if strings.TrimSpace(ap.Date) == "" {
		return domain.Appointment{}, invalid("appointment_date", "is required")
	}
	if strings.TrimSpace(ap.Time) == "" {
		return domain.Appointment{}, invalid("appointment_time", "is required")
	}
	if a.IsVet() {
		ap.VetID = a.UserID
	}
	if ap.VetID == "" {
		ap.VetID = pet.VetID
	}
	if ap.VetID == "" {
		return domain.Appointment{}, invalid("vet_id", "is required")
	}

	ap.ID = idx.New().String()
	ap.TutorID = pet.TutorID
	ap.Status = domain.AppointmentScheduled
	ap.CreatedAt = time.Now().UTC()
	if err := s.Store.Appointments().CreateAppointment(ctx, ap); err != nil {
		return domain.Appointment{}, err
	}
	return ap, nil
}

func (s *RecordsService) ListAppointments(ctx context.Context, a Actor, f domain.RecordFilter) ([]domain.Appointment, error) {
	if err := s.requireRole(ctx, a, "appointment.list", true, true); err != nil {
		return nil, err
	}
	return s.Store.Appointments().ListAppointments(ctx, scope(a, f))
}

// CreateConsultation records a consultation. Vets and admins only.
func (s *RecordsService) CreateConsultation(ctx context.Context, a Actor, c domain.Consultation) (domain.Consultation, error) {
	if err := s.requireRole(ctx, a, "consultation.create", true, false); err != nil {
		return domain.Consultation{}, err
	}
	pet, err := s.pet(ctx, a, c.PetID, "consultation.create")
	if err != nil {
		return domain.Consultation{}, err
	}
	if strings.TrimSpace(c.Diagnosis) == "" {
		return domain.Consultation{}, invalid("diagnosis", "is required")
	}

	c.ID = idx.New().String()
	if a.IsVet() {
		c.VetID = a.UserID
	} else if c.VetID == "" {
		c.VetID = pet.VetID
	}
	if c.ConsultationDate.IsZero() {
		c.ConsultationDate = time.Now().UTC()
	}
	if err := s.Store.Consultations().CreateConsultation(ctx, c); err != nil {
		return domain.Consultation{}, err
	}
	return c, nil
}

// ListConsultations hides consultations not released to tutors.
func (s *RecordsService) ListConsultations(ctx context.Context, a Actor, f domain.RecordFilter) ([]domain.Consultation, error) {
	if err := s.requireRole(ctx, a, "consultation.list", true, true); err != nil {
		return nil, err
	}
	return s.Store.Consultations().ListConsultations(ctx, scope(a, f), a.IsTutor())
}

// CreateExam stores an exam result. Results default to CONCLUÍDO with a PDF
// attachment.
func (s *RecordsService) CreateExam(ctx context.Context, a Actor, e domain.Exam) (domain.Exam, error) {
	if err := s.requireRole(ctx, a, "exam.create", true, false); err != nil {
		return domain.Exam{}, err
	}
	if _, err := s.pet(ctx, a, e.PetID, "exam.create"); err != nil {
		return domain.Exam{}, err
	}
	if strings.TrimSpace(e.Title) == "" {
		return domain.Exam{}, invalid("title", "is required")
	}
	if strings.TrimSpace(e.ExamDate) == "" {
		return domain.Exam{}, invalid("exam_date", "is required")
	}

	e.ID = idx.New().String()
	if a.IsVet() {
		e.VetID = a.UserID
	}
	if e.Status == "" {
		e.Status = domain.ExamDone
	}
	if e.FileType == "" {
		e.FileType = "PDF"
	}
	e.CreatedAt = time.Now().UTC()
	if err := s.Store.Exams().CreateExam(ctx, e); err != nil {
		return domain.Exam{}, err
	}
	return e, nil
}

func (s *RecordsService) ListExams(ctx context.Context, a Actor, f domain.RecordFilter) ([]domain.Exam, error) {
	if err := s.requireRole(ctx, a, "exam.list", true, true); err != nil {
		return nil, err
	}
	if a.IsVet() {
		// Exams belong to the vet through the patient, not the exam row.
		f.TutorID = ""
		if f.PetID != "" {
			if _, err := s.pet(ctx, a, f.PetID, "exam.list"); err != nil {
				return nil, err
			}
			return s.Store.Exams().ListExams(ctx, f)
		}
	}
	return s.Store.Exams().ListExams(ctx, scope(a, f))
}

// CreateVaccination records a dose. The medication name is required.
func (s *RecordsService) CreateVaccination(ctx context.Context, a Actor, v domain.VaccinationRecord) (domain.VaccinationRecord, error) {
	if err := s.requireRole(ctx, a, "vaccination.create", true, false); err != nil {
		return domain.VaccinationRecord{}, err
	}
	if _, err := s.pet(ctx, a, v.PetID, "vaccination.create"); err != nil {
		return domain.VaccinationRecord{}, err
	}
	v.MedicationName = strings.TrimSpace(v.MedicationName)
	if v.MedicationName == "" {
		return domain.VaccinationRecord{}, invalid("medication_name", "is required")
	}

	v.ID = idx.New().String()
	if v.AdministeredAt.IsZero() {
		v.AdministeredAt = time.Now().UTC()
	}
	if err := s.Store.Vaccinations().CreateVaccination(ctx, v); err != nil {
		return domain.VaccinationRecord{}, err
	}
	return v, nil
}

func (s *RecordsService) ListVaccinations(ctx context.Context, a Actor, f domain.RecordFilter) ([]domain.VaccinationRecord, error) {
	if err := s.requireRole(ctx, a, "vaccination.list", true, true); err != nil {
		return nil, err
	}
	return s.Store.Vaccinations().ListVaccinations(ctx, scope(a, f))
}

// CreateTutorRequest asks a vet to take a tutor on. Tutors and admins only.
func (s *RecordsService) CreateTutorRequest(ctx context.Context, a Actor, r domain.TutorRequest) (domain.TutorRequest, error) {
	if err := s.requireRole(ctx, a, "tutor_request.create", false, true); err != nil {
		return domain.TutorRequest{}, err
	}
	if strings.TrimSpace(r.VetID) == "" {
		return domain.TutorRequest{}, invalid("vet_id", "is required")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return domain.TutorRequest{}, invalid("full_name", "is required")
	}
	email, err := normaliseEmail(r.Email)
	if err != nil {
		return domain.TutorRequest{}, err
	}

	r.ID = idx.New().String()
	r.Email = email
	r.Status = domain.TutorRequestPending
	r.CreatedAt = time.Now().UTC()
	if err := s.Store.TutorRequests().CreateTutorRequest(ctx, r); err != nil {
		return domain.TutorRequest{}, err
	}
	return r, nil
}

// ListTutorRequests returns requests addressed to the vet. Tutors cannot
// list requests.
func (s *RecordsService) ListTutorRequests(ctx context.Context, a Actor, f domain.RecordFilter) ([]domain.TutorRequest, error) {
	if err := s.requireRole(ctx, a, "tutor_request.list", true, false); err != nil {
		return nil, err
	}
	return s.Store.TutorRequests().ListTutorRequests(ctx, scope(a, f))
}

// SetTutorRequestStatus approves or rejects a request addressed to the vet.
func (s *RecordsService) SetTutorRequestStatus(ctx context.Context, a Actor, id string, status domain.TutorRequestStatus) (domain.TutorRequest, error) {
	if !status.Valid() {
		return domain.TutorRequest{}, invalid("status", "must be PENDING, APPROVED or REJECTED")
	}
	r, err := s.Store.TutorRequests().GetTutorRequest(ctx, id)
	if err != nil {
		return domain.TutorRequest{}, err
	}
	if !a.IsAdmin() && !(a.IsVet() && r.VetID == a.UserID) {
		return domain.TutorRequest{}, deny(ctx, a, "tutor_request.status", slog.String("request_id", id))
	}

	if err := s.Store.TutorRequests().UpdateTutorRequestStatus(ctx, id, status); err != nil {
		return domain.TutorRequest{}, err
	}
	r.Status = status
	return r, nil
}
