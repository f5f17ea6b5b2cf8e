package clinicsdk

import (
	"context"
	"net/http"
	"net/url"
)

func (s *Session) ListPatients(ctx context.Context, opts ListOptions) ([]Patient, error) {
	var out []Patient
	if err := s.get(ctx, "/v1/patients"+opts.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreatePatient(ctx context.Context, p Patient) (*Patient, error) {
	var out Patient
	if err := s.do(ctx, http.MethodPost, "/v1/patients", p, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListAppointments(ctx context.Context, opts ListOptions) ([]Appointment, error) {
	var out []Appointment
	if err := s.get(ctx, "/v1/appointments"+opts.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	var out Appointment
	if err := s.do(ctx, http.MethodPost, "/v1/appointments", a, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListConsultations only returns consultations visible to tutors when the
// session belongs to a tutor.
func (s *Session) ListConsultations(ctx context.Context, opts ListOptions) ([]Consultation, error) {
	var out []Consultation
	if err := s.get(ctx, "/v1/consultations"+opts.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateConsultation(ctx context.Context, c Consultation) (*Consultation, error) {
	var out Consultation
	if err := s.do(ctx, http.MethodPost, "/v1/consultations", c, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListExams orders exams by exam date, newest first.
func (s *Session) ListExams(ctx context.Context, opts ListOptions) ([]Exam, error) {
	var out []Exam
	if err := s.get(ctx, "/v1/exams"+opts.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateExam(ctx context.Context, e Exam) (*Exam, error) {
	var out Exam
	if err := s.do(ctx, http.MethodPost, "/v1/exams", e, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListVaccinations(ctx context.Context, opts ListOptions) ([]Vaccination, error) {
	var out []Vaccination
	if err := s.get(ctx, "/v1/vaccinations"+opts.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateVaccination(ctx context.Context, v Vaccination) (*Vaccination, error) {
	var out Vaccination
	if err := s.do(ctx, http.MethodPost, "/v1/vaccinations", v, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListTutorRequests(ctx context.Context, opts ListOptions) ([]TutorRequest, error) {
	var out []TutorRequest
	if err := s.get(ctx, "/v1/tutor-requests"+opts.query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateTutorRequest(ctx context.Context, r TutorRequest) (*TutorRequest, error) {
	var out TutorRequest
	if err := s.do(ctx, http.MethodPost, "/v1/tutor-requests", r, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SetTutorRequestStatus(ctx context.Context, id, status string) (*TutorRequest, error) {
	var out TutorRequest
	path := "/v1/tutor-requests/" + url.PathEscape(id) + "/status"
	if err := s.do(ctx, http.MethodPut, path, StatusRequest{Status: status}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
