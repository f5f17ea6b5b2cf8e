package views_test

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
)

// fakeAPI records calls and serves canned rows.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	profiles      map[string]*clinicsdk.Profile
	vets          []clinicsdk.Veterinarian
	patients      []clinicsdk.Patient
	appointments  []clinicsdk.Appointment
	consultations []clinicsdk.Consultation
	exams         []clinicsdk.Exam
	vaccinations  []clinicsdk.Vaccination
	requests      []clinicsdk.TutorRequest
	lastOpts      clinicsdk.ListOptions
	password      string
	err           error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{profiles: make(map[string]*clinicsdk.Profile)}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) GetProfile(_ context.Context, id string) (*clinicsdk.Profile, error) {
	if err := f.record("GetProfile"); err != nil {
		return nil, err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, clinicsdk.ErrNotFound
	}
	return p, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, id string, u clinicsdk.ProfileUpdate) (*clinicsdk.Profile, error) {
	if err := f.record("UpdateProfile"); err != nil {
		return nil, err
	}
	p := f.profiles[id]
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	return p, nil
}

func (f *fakeAPI) UpdatePassword(_ context.Context, password string) error {
	f.password = password
	return f.record("UpdatePassword")
}

func (f *fakeAPI) ListVeterinarians(_ context.Context, opts clinicsdk.ListOptions) ([]clinicsdk.Veterinarian, error) {
	if err := f.record("ListVeterinarians"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastOpts = opts
	f.mu.Unlock()
	var out []clinicsdk.Veterinarian
	for _, v := range f.vets {
		if opts.Status == "" || v.Status == opts.Status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetVeterinarian(_ context.Context, id string) (*clinicsdk.Veterinarian, error) {
	if err := f.record("GetVeterinarian"); err != nil {
		return nil, err
	}
	for i := range f.vets {
		if f.vets[i].ID == id {
			v := f.vets[i]
			return &v, nil
		}
	}
	return nil, clinicsdk.ErrNotFound
}

func (f *fakeAPI) CreateVeterinarian(_ context.Context, req clinicsdk.CreateVeterinarianRequest) (*clinicsdk.CreateVeterinarianResponse, error) {
	if err := f.record("CreateVeterinarian"); err != nil {
		return nil, err
	}
	v := clinicsdk.Veterinarian{ID: "vet-new", CRMV: req.CRMV, UF: req.UF, Status: clinicsdk.VetStatusActive}
	f.vets = append(f.vets, v)
	return &clinicsdk.CreateVeterinarianResponse{Veterinarian: v, TempPassword: "Tmp-1234567"}, nil
}

func (f *fakeAPI) UpdateVeterinarian(_ context.Context, id string, req clinicsdk.UpdateVeterinarianRequest) (*clinicsdk.Veterinarian, error) {
	if err := f.record("UpdateVeterinarian"); err != nil {
		return nil, err
	}
	for i := range f.vets {
		if f.vets[i].ID == id {
			if req.UF != nil {
				f.vets[i].UF = *req.UF
			}
			v := f.vets[i]
			return &v, nil
		}
	}
	return nil, clinicsdk.ErrNotFound
}

func (f *fakeAPI) SetVeterinarianStatus(_ context.Context, id, status string) (*clinicsdk.Veterinarian, error) {
	if err := f.record("SetVeterinarianStatus"); err != nil {
		return nil, err
	}
	for i := range f.vets {
		if f.vets[i].ID == id {
			f.vets[i].Status = status
			v := f.vets[i]
			return &v, nil
		}
	}
	return nil, clinicsdk.ErrNotFound
}

func (f *fakeAPI) ResetVeterinarianPassword(context.Context, string) error {
	return f.record("ResetVeterinarianPassword")
}

func (f *fakeAPI) VeterinarianCounts(context.Context) (*clinicsdk.VeterinarianCounts, error) {
	if err := f.record("VeterinarianCounts"); err != nil {
		return nil, err
	}
	var c clinicsdk.VeterinarianCounts
	for _, v := range f.vets {
		switch v.Status {
		case clinicsdk.VetStatusActive:
			c.Active++
		case clinicsdk.VetStatusInactive:
			c.Inactive++
		case clinicsdk.VetStatusPending:
			c.Pending++
		}
	}
	return &c, nil
}

func (f *fakeAPI) ListPatients(context.Context, clinicsdk.ListOptions) ([]clinicsdk.Patient, error) {
	return f.patients, f.record("ListPatients")
}

func (f *fakeAPI) CreatePatient(_ context.Context, p clinicsdk.Patient) (*clinicsdk.Patient, error) {
	if err := f.record("CreatePatient"); err != nil {
		return nil, err
	}
	p.ID = "pet-new"
	return &p, nil
}

func (f *fakeAPI) ListAppointments(context.Context, clinicsdk.ListOptions) ([]clinicsdk.Appointment, error) {
	return f.appointments, f.record("ListAppointments")
}

func (f *fakeAPI) CreateAppointment(_ context.Context, a clinicsdk.Appointment) (*clinicsdk.Appointment, error) {
	if err := f.record("CreateAppointment"); err != nil {
		return nil, err
	}
	a.ID = "appt-new"
	a.Status = clinicsdk.AppointmentScheduled
	return &a, nil
}

func (f *fakeAPI) ListConsultations(context.Context, clinicsdk.ListOptions) ([]clinicsdk.Consultation, error) {
	return f.consultations, f.record("ListConsultations")
}

func (f *fakeAPI) CreateConsultation(_ context.Context, c clinicsdk.Consultation) (*clinicsdk.Consultation, error) {
	if err := f.record("CreateConsultation"); err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *fakeAPI) ListExams(context.Context, clinicsdk.ListOptions) ([]clinicsdk.Exam, error) {
	out := append([]clinicsdk.Exam(nil), f.exams...)
	return out, f.record("ListExams")
}

func (f *fakeAPI) CreateExam(_ context.Context, e clinicsdk.Exam) (*clinicsdk.Exam, error) {
	if err := f.record("CreateExam"); err != nil {
		return nil, err
	}
	return &e, nil
}

func (f *fakeAPI) ListVaccinations(context.Context, clinicsdk.ListOptions) ([]clinicsdk.Vaccination, error) {
	return f.vaccinations, f.record("ListVaccinations")
}

func (f *fakeAPI) CreateVaccination(_ context.Context, v clinicsdk.Vaccination) (*clinicsdk.Vaccination, error) {
	if err := f.record("CreateVaccination"); err != nil {
		return nil, err
	}
	return &v, nil
}

func (f *fakeAPI) ListTutorRequests(context.Context, clinicsdk.ListOptions) ([]clinicsdk.TutorRequest, error) {
	return f.requests, f.record("ListTutorRequests")
}

func (f *fakeAPI) CreateTutorRequest(_ context.Context, r clinicsdk.TutorRequest) (*clinicsdk.TutorRequest, error) {
	if err := f.record("CreateTutorRequest"); err != nil {
		return nil, err
	}
	r.ID = "req-new"
	r.Status = clinicsdk.TutorRequestPending
	return &r, nil
}

func (f *fakeAPI) SetTutorRequestStatus(_ context.Context, id, status string) (*clinicsdk.TutorRequest, error) {
	if err := f.record("SetTutorRequestStatus"); err != nil {
		return nil, err
	}
	return &clinicsdk.TutorRequest{ID: id, Status: status}, nil
}
