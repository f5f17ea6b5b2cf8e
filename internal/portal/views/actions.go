package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// CreatedVet is returned by the create-vet action. The temporary password
// is only ever shown here and in the validation list.
type CreatedVet struct {
	Veterinarian clinicsdk.Veterinarian `json:"veterinarian"`
	TempPassword string                 `json:"temp_password"`
	WhatsAppLink string                 `json:"whatsapp_link,omitempty"`
}

func registerActions(r *Registry) {
	r.action("select-vet", nav.TutorDashboard, selectVet)
	r.action("request-vet", nav.VetProfileView, requestVet)

	r.action("approve-request", nav.VetDashboard, setRequestStatus(clinicsdk.TutorRequestApproved))
	r.action("reject-request", nav.VetDashboard, setRequestStatus(clinicsdk.TutorRequestRejected))

	r.action("create-vet", nav.Registration, createVet)
	r.action("save-vet", nav.EditVet, saveVet)
	r.action("save-vet-self", nav.EditVetSelf, saveVetSelf)

	r.action("toggle-vet-status", nav.VetValidation, toggleVetStatus)
	r.action("reset-vet-password", nav.VetValidation, resetVetPassword)
	r.action("edit-vet", nav.VetValidation, editVet)

	r.action("schedule", nav.Scheduling, schedule)
	r.action("record-consultation", nav.ConsultationDetails, recordConsultation)
	r.action("record-dose", nav.DoseRegistration, recordDose)
	r.action("add-exam", nav.Exams, addExam)
	r.action("register-patient", nav.PatientRegistration, registerPatient)
	r.action("update-profile", nav.TutorProfile, updateProfile)

	r.action("force-password-change", nav.ForcePasswordChange, forcePasswordChange)
	r.action("change-password", nav.ChangePassword, changePassword)
}

func selectVet(_ context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	id := form.Get("vet_id")
	if err := required("vet_id", id); err != nil {
		return Result{}, err
	}
	return Result{Next: nav.VetProfileView, Aux: []string{id}}, nil
}

// requestVet asks the selected veterinarian to take the tutor on.
func requestVet(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	if err := required("vet_id", env.SelectedVetID); err != nil {
		return Result{}, err
	}
	petName := form.Get("pet_name")
	if err := required("pet_name", petName); err != nil {
		return Result{}, err
	}

	req, err := env.API.CreateTutorRequest(ctx, clinicsdk.TutorRequest{
		VetID:    env.SelectedVetID,
		FullName: env.Profile.FullName,
		Email:    env.Profile.Email,
		Phone:    env.Profile.Phone,
		PetName:  petName,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: "request sent", Data: req}, nil
}

func setRequestStatus(status string) ActionFunc {
	return func(ctx context.Context, env Env, form Form) (Result, error) {
		if _, err := env.self(); err != nil {
			return Result{}, err
		}
		id := form.Get("request_id")
		if err := required("request_id", id); err != nil {
			return Result{}, err
		}
		req, err := env.API.SetTutorRequestStatus(ctx, id, status)
		if err != nil {
			return Result{}, err
		}
		return Result{Next: nav.VetDashboard, Data: req}, nil
	}
}

func createVet(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	req := clinicsdk.CreateVeterinarianRequest{
		Email:              form.Get("email"),
		FullName:           form.Get("full_name"),
		CPF:                form.Get("cpf"),
		Phone:              form.Get("phone"),
		CRMV:               form.Get("crmv"),
		UF:                 strings.ToUpper(form.Get("uf")),
		ClinicName:         form.Get("clinic_name"),
		ContractValidUntil: form.Get("contract_valid_until"),
	}
	for _, f := range []struct{ name, value string }{
		{"email", req.Email},
		{"full_name", req.FullName},
		{"crmv", req.CRMV},
		{"uf", req.UF},
	} {
		if err := required(f.name, f.value); err != nil {
			return Result{}, err
		}
	}

	resp, err := env.API.CreateVeterinarian(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Next:   nav.VetValidation,
		Notice: "veterinarian registered",
		Data: CreatedVet{
			Veterinarian: resp.Veterinarian,
			TempPassword: resp.TempPassword,
			WhatsAppLink: WelcomeLink(req.Phone, req.FullName, resp.TempPassword, env.BaseURL),
		},
	}, nil
}

// vetEdit keeps only the fields present in form.
func vetEdit(form Form) clinicsdk.UpdateVeterinarianRequest {
	field := func(key string) *string {
		if _, ok := form[key]; !ok {
			return nil
		}
		v := form.Get(key)
		return &v
	}
	edit := clinicsdk.UpdateVeterinarianRequest{
		FullName:           field("full_name"),
		CPF:                field("cpf"),
		Phone:              field("phone"),
		CRMV:               field("crmv"),
		UF:                 field("uf"),
		ClinicName:         field("clinic_name"),
		ContractValidUntil: field("contract_valid_until"),
	}
	if edit.UF != nil {
		uf := strings.ToUpper(*edit.UF)
		edit.UF = &uf
	}
	return edit
}

func saveVet(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	if err := required("vet_id", env.SelectedVetID); err != nil {
		return Result{}, err
	}
	v, err := env.API.UpdateVeterinarian(ctx, env.SelectedVetID, vetEdit(form))
	if err != nil {
		return Result{}, err
	}
	return Result{Next: nav.VetValidation, Notice: "changes saved", Data: v}, nil
}

func saveVetSelf(ctx context.Context, env Env, form Form) (Result, error) {
	id, err := env.self()
	if err != nil {
		return Result{}, err
	}
	v, err := env.API.UpdateVeterinarian(ctx, id, vetEdit(form))
	if err != nil {
		return Result{}, err
	}
	return Result{Next: nav.VetDashboard, Notice: "changes saved", Data: v, ProfileChanged: true}, nil
}

// toggleVetStatus flips ATIVO and INATIVO; pending vets are activated.
func toggleVetStatus(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	id := form.Get("vet_id")
	if err := required("vet_id", id); err != nil {
		return Result{}, err
	}

	current, err := env.API.GetVeterinarian(ctx, id)
	if err != nil {
		return Result{}, err
	}
	next := clinicsdk.VetStatusActive
	if current.Status == clinicsdk.VetStatusActive {
		next = clinicsdk.VetStatusInactive
	}

	v, err := env.API.SetVeterinarianStatus(ctx, id, next)
	if err != nil {
		return Result{}, err
	}
	return Result{Next: nav.VetValidation, Notice: fmt.Sprintf("status changed to %s", v.Status), Data: v}, nil
}

func resetVetPassword(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	id := form.Get("vet_id")
	if err := required("vet_id", id); err != nil {
		return Result{}, err
	}
	if err := env.API.ResetVeterinarianPassword(ctx, id); err != nil {
		return Result{}, err
	}
	return Result{Next: nav.VetValidation, Notice: "a new temporary password was generated"}, nil
}

func editVet(_ context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	id := form.Get("vet_id")
	if err := required("vet_id", id); err != nil {
		return Result{}, err
	}
	return Result{Next: nav.EditVet, Aux: []string{id}}, nil
}

func schedule(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	ap := clinicsdk.Appointment{
		PetID: form.Get("pet_id"),
		VetID: form.Get("vet_id"),
		Date:  form.Get("appointment_date"),
		Time:  form.Get("appointment_time"),
	}
	if ap.VetID == "" {
		ap.VetID = env.SelectedVetID
	}
	for _, f := range []struct{ name, value string }{
		{"pet_id", ap.PetID},
		{"appointment_date", ap.Date},
		{"appointment_time", ap.Time},
	} {
		if err := required(f.name, f.value); err != nil {
			return Result{}, err
		}
	}

	created, err := env.API.CreateAppointment(ctx, ap)
	if err != nil {
		return Result{}, err
	}
	return Result{Next: nav.TutorDashboard, Notice: "appointment scheduled", Data: created}, nil
}

func recordConsultation(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	c := clinicsdk.Consultation{
		PetID:     form.Get("pet_id"),
		Diagnosis: form.Get("diagnosis"),
		Treatment: form.Get("treatment"),
	}
	if err := required("pet_id", c.PetID); err != nil {
		return Result{}, err
	}
	if err := required("diagnosis", c.Diagnosis); err != nil {
		return Result{}, err
	}
	if raw := form.Get("is_visible_to_tutor"); raw != "" {
		visible, err := strconv.ParseBool(raw)
		if err != nil {
			return Result{}, &nav.ValidationError{Field: "is_visible_to_tutor", Message: "must be true or false"}
		}
		c.VisibleToTutor = visible
	}

	created, err := env.API.CreateConsultation(ctx, c)
	if err != nil {
		return Result{}, err
	}
	return Result{Next: nav.VetDashboard, Notice: "consultation recorded", Data: created}, nil
}

func recordDose(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	v := clinicsdk.Vaccination{
		PetID:          form.Get("pet_id"),
		MedicationName: form.Get("medication_name"),
		Dosage:         form.Get("dosage"),
		Unit:           form.Get("unit"),
		Notes:          form.Get("notes"),
	}
	if err := required("pet_id", v.PetID); err != nil {
		return Result{}, err
	}
	if err := required("medication_name", v.MedicationName); err != nil {
		return Result{}, err
	}

	created, err := env.API.CreateVaccination(ctx, v)
	if err != nil {
		return Result{}, err
	}
	return Result{Next: nav.Vaccination, Notice: "dose recorded", Data: created}, nil
}

func addExam(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	e := clinicsdk.Exam{
		PetID:    form.Get("pet_id"),
		Title:    form.Get("title"),
		ExamDate: form.Get("exam_date"),
		Status:   clinicsdk.ExamDone,
		FileType: "PDF",
	}
	for _, f := range []struct{ name, value string }{
		{"pet_id", e.PetID},
		{"title", e.Title},
		{"exam_date", e.ExamDate},
	} {
		if err := required(f.name, f.value); err != nil {
			return Result{}, err
		}
	}

	created, err := env.API.CreateExam(ctx, e)
	if err != nil {
		return Result{}, err
	}
	return Result{Next: nav.Exams, Notice: "exam added", Data: created}, nil
}

func registerPatient(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	p := clinicsdk.Patient{
		Name:    form.Get("name"),
		Species: form.Get("species"),
		Breed:   form.Get("breed"),
		Age:     form.Get("age"),
		Weight:  form.Get("weight"),
	}
	if err := required("name", p.Name); err != nil {
		return Result{}, err
	}
	if err := required("species", p.Species); err != nil {
		return Result{}, err
	}

	created, err := env.API.CreatePatient(ctx, p)
	if err != nil {
		return Result{}, err
	}
	return Result{Next: nav.VetDashboard, Notice: "patient registered", Data: created}, nil
}

func updateProfile(ctx context.Context, env Env, form Form) (Result, error) {
	id, err := env.self()
	if err != nil {
		return Result{}, err
	}
	var u clinicsdk.ProfileUpdate
	if _, ok := form["full_name"]; ok {
		name := form.Get("full_name")
		if err := required("full_name", name); err != nil {
			return Result{}, err
		}
		u.FullName = &name
	}
	if _, ok := form["phone"]; ok {
		phone := form.Get("phone")
		u.Phone = &phone
	}
	if u.FullName == nil && u.Phone == nil {
		return Result{}, &nav.ValidationError{Field: "profile", Message: "no fields to update"}
	}

	p, err := env.API.UpdateProfile(ctx, id, u)
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: "profile updated", Data: p, ProfileChanged: true}, nil
}

func newPassword(form Form) (string, error) {
	password, confirm := form["password"], form["confirm_password"]
	switch {
	case password == "":
		return "", &nav.ValidationError{Field: "password", Message: "is required"}
	case len(password) < nav.MinPasswordLength:
		return "", &nav.ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", nav.MinPasswordLength)}
	case password != confirm:
		return "", &nav.ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}
	return password, nil
}

// forcePasswordChange completes a first login. The backend clears the
// must-change flag together with the password.
func forcePasswordChange(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	password, err := newPassword(form)
	if err != nil {
		return Result{}, err
	}
	if err := env.API.UpdatePassword(ctx, password); err != nil {
		return Result{}, err
	}
	return Result{Next: nav.HomeFor(env.Profile.Role), Notice: "password changed", ProfileChanged: true}, nil
}

func changePassword(ctx context.Context, env Env, form Form) (Result, error) {
	if _, err := env.self(); err != nil {
		return Result{}, err
	}
	password, err := newPassword(form)
	if err != nil {
		return Result{}, err
	}
	if err := env.API.UpdatePassword(ctx, password); err != nil {
		return Result{}, err
	}
	return Result{Next: backFromPasswordChange(env.Profile.Role), Notice: "password changed", ProfileChanged: true}, nil
}

// backFromPasswordChange is where the change-password screen returns to.
func backFromPasswordChange(r role.Role) nav.ViewID {
	switch r {
	case role.Veterinarian:
		return nav.VetSettings
	case role.Admin:
		return nav.Admin
	default:
		return nav.TutorProfile
	}
}
