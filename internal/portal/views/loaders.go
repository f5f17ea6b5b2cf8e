package views

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
)

// dashboardLimit caps the rows fetched for a dashboard list.
const dashboardLimit = 50

type TutorDashboardData struct {
	Profile       *clinicsdk.Profile       `json:"profile"`
	Veterinarians []clinicsdk.Veterinarian `json:"veterinarians"`
	Appointments  []clinicsdk.Appointment  `json:"appointments"`
	Consultations []clinicsdk.Consultation `json:"consultations"`
}

type VetDashboardData struct {
	Profile       *clinicsdk.Profile       `json:"profile"`
	Veterinarian  *clinicsdk.Veterinarian  `json:"veterinarian"`
	Patients      []clinicsdk.Patient      `json:"patients"`
	TutorRequests []clinicsdk.TutorRequest `json:"tutor_requests"`
}

type AdminData struct {
	Counts clinicsdk.VeterinarianCounts `json:"counts"`
}

type VetEditData struct {
	Veterinarian *clinicsdk.Veterinarian `json:"veterinarian"`
}

// VetRow is one line of the validation list.
type VetRow struct {
	Veterinarian clinicsdk.Veterinarian `json:"veterinarian"`
	// WhatsAppLink sends the temporary password to the vet; empty when the
	// vet has no phone or no pending temporary password.
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
}

type VetValidationData struct {
	Filter string   `json:"filter"`
	Rows   []VetRow `json:"rows"`
}

type VetProfileData struct {
	Veterinarian *clinicsdk.Veterinarian `json:"veterinarian"`
	ContactLink  string                  `json:"contact_link,omitempty"`
}

type PatientsData struct {
	Patients []clinicsdk.Patient `json:"patients"`
}

type ConsultationsData struct {
	Consultations []clinicsdk.Consultation `json:"consultations"`
}

type VaccinationsData struct {
	Vaccinations []clinicsdk.Vaccination `json:"vaccinations"`
}

type ExamsData struct {
	PetID string           `json:"pet_id,omitempty"`
	Exams []clinicsdk.Exam `json:"exams"`
}

type ProfileData struct {
	Profile *clinicsdk.Profile `json:"profile"`
}

// Validation list filters.
const (
	FilterAll     = "ALL"
	FilterPending = "PENDING"
)

func registerLoaders(r *Registry) {
	r.load(nav.TutorDashboard, loadTutorDashboard)
	r.load(nav.VetDashboard, loadVetDashboard)
	r.load(nav.Admin, loadAdmin)
	r.load(nav.EditVet, loadEditVet)
	r.load(nav.EditVetSelf, loadEditVetSelf)
	r.load(nav.VetValidation, loadVetValidation)
	r.load(nav.VetProfileView, loadVetProfile)
	r.load(nav.Scheduling, loadPatients)
	r.load(nav.DoseRegistration, loadPatients)
	r.load(nav.ConsultationDetails, loadConsultations)
	r.load(nav.Vaccination, loadVaccinations)
	r.load(nav.Exams, loadExams)
	r.load(nav.TutorProfile, loadOwnProfile)
	r.load(nav.VetSettings, loadOwnProfile)
}

func loadTutorDashboard(ctx context.Context, env Env) (any, error) {
	id, err := env.self()
	if err != nil {
		return nil, err
	}

	var data TutorDashboardData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Profile, err = env.API.GetProfile(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Veterinarians, err = env.API.ListVeterinarians(ctx, clinicsdk.ListOptions{Status: clinicsdk.VetStatusActive})
		return err
	})
	g.Go(func() (err error) {
		data.Appointments, err = env.API.ListAppointments(ctx, clinicsdk.ListOptions{Limit: dashboardLimit})
		return err
	})
	g.Go(func() (err error) {
		data.Consultations, err = env.API.ListConsultations(ctx, clinicsdk.ListOptions{Limit: dashboardLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func loadVetDashboard(ctx context.Context, env Env) (any, error) {
	id, err := env.self()
	if err != nil {
		return nil, err
	}

	var data VetDashboardData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Profile, err = env.API.GetProfile(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Veterinarian, err = env.API.GetVeterinarian(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Patients, err = env.API.ListPatients(ctx, clinicsdk.ListOptions{Limit: dashboardLimit})
		return err
	})
	g.Go(func() (err error) {
		data.TutorRequests, err = env.API.ListTutorRequests(ctx, clinicsdk.ListOptions{Status: clinicsdk.TutorRequestPending})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func loadAdmin(ctx context.Context, env Env) (any, error) {
	if _, err := env.self(); err != nil {
		return nil, err
	}
	counts, err := env.API.VeterinarianCounts(ctx)
	if err != nil {
		return nil, err
	}
	return AdminData{Counts: *counts}, nil
}

func loadEditVet(ctx context.Context, env Env) (any, error) {
	if _, err := env.self(); err != nil {
		return nil, err
	}
	if err := required("vet_id", env.SelectedVetID); err != nil {
		return nil, err
	}
	v, err := env.API.GetVeterinarian(ctx, env.SelectedVetID)
	if err != nil {
		return nil, err
	}
	return VetEditData{Veterinarian: v}, nil
}

func loadEditVetSelf(ctx context.Context, env Env) (any, error) {
	id, err := env.self()
	if err != nil {
		return nil, err
	}
	v, err := env.API.GetVeterinarian(ctx, id)
	if err != nil {
		return nil, err
	}
	return VetEditData{Veterinarian: v}, nil
}

func loadVetValidation(ctx context.Context, env Env) (any, error) {
	if _, err := env.self(); err != nil {
		return nil, err
	}

	filter := strings.ToUpper(env.Params.Get("filter"))
	opts := clinicsdk.ListOptions{}
	switch filter {
	case "", FilterAll:
		filter = FilterAll
	case FilterPending:
		opts.Status = clinicsdk.VetStatusPending
	default:
		return nil, &nav.ValidationError{Field: "filter", Message: fmt.Sprintf("must be %s or %s", FilterAll, FilterPending)}
	}

	vets, err := env.API.ListVeterinarians(ctx, opts)
	if err != nil {
		return nil, err
	}

	rows := make([]VetRow, 0, len(vets))
	for _, v := range vets {
		row := VetRow{Veterinarian: v}
		if p := v.Profile; p != nil && p.TempPassword != "" {
			row.WhatsAppLink = WelcomeLink(p.Phone, p.FullName, p.TempPassword, env.BaseURL)
		}
		rows = append(rows, row)
	}
	return VetValidationData{Filter: filter, Rows: rows}, nil
}

func loadVetProfile(ctx context.Context, env Env) (any, error) {
	if _, err := env.self(); err != nil {
		return nil, err
	}
	if err := required("vet_id", env.SelectedVetID); err != nil {
		return nil, err
	}
	v, err := env.API.GetVeterinarian(ctx, env.SelectedVetID)
	if err != nil {
		return nil, err
	}

	data := VetProfileData{Veterinarian: v}
	if v.Profile != nil {
		data.ContactLink = ContactLink(v.Profile.Phone, v.Profile.FullName)
	}
	return data, nil
}

func loadPatients(ctx context.Context, env Env) (any, error) {
	if _, err := env.self(); err != nil {
		return nil, err
	}
	patients, err := env.API.ListPatients(ctx, clinicsdk.ListOptions{})
	if err != nil {
		return nil, err
	}
	return PatientsData{Patients: patients}, nil
}

func loadConsultations(ctx context.Context, env Env) (any, error) {
	if _, err := env.self(); err != nil {
		return nil, err
	}
	list, err := env.API.ListConsultations(ctx, clinicsdk.ListOptions{PetID: env.Params.Get("pet_id")})
	if err != nil {
		return nil, err
	}
	return ConsultationsData{Consultations: list}, nil
}

func loadVaccinations(ctx context.Context, env Env) (any, error) {
	if _, err := env.self(); err != nil {
		return nil, err
	}
	list, err := env.API.ListVaccinations(ctx, clinicsdk.ListOptions{PetID: env.Params.Get("pet_id")})
	if err != nil {
		return nil, err
	}
	return VaccinationsData{Vaccinations: list}, nil
}

// loadExams lists exams newest exam date first.
func loadExams(ctx context.Context, env Env) (any, error) {
	if _, err := env.self(); err != nil {
		return nil, err
	}
	petID := env.Params.Get("pet_id")
	list, err := env.API.ListExams(ctx, clinicsdk.ListOptions{PetID: petID})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b clinicsdk.Exam) int {
		return cmp.Compare(b.ExamDate, a.ExamDate)
	})
	return ExamsData{PetID: petID, Exams: list}, nil
}

func loadOwnProfile(ctx context.Context, env Env) (any, error) {
	id, err := env.self()
	if err != nil {
		return nil, err
	}
	p, err := env.API.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return ProfileData{Profile: p}, nil
}
