package views_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/billybuddy/internal/portal/nav"
	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
	"github.com/aussiebroadwan/billybuddy/internal/portal/views"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

func envFor(api *fakeAPI, r role.Role) views.Env {
	return views.Env{
		API:     api,
		Profile: &session.Profile{ID: "me", Role: r, FullName: "Ana Lima", Email: "ana@x.com", Phone: "11999990000"},
		Params:  views.Form{},
		BaseURL: "https://portal.example.com",
		Logger:  slogx.Discard(),
	}
}

func TestTutorDashboardLoadsConcurrently(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.profiles["me"] = &clinicsdk.Profile{ID: "me", FullName: "Ana Lima", Role: role.Tutor}
	api.vets = []clinicsdk.Veterinarian{
		{ID: "v1", Status: clinicsdk.VetStatusActive},
		{ID: "v2", Status: clinicsdk.VetStatusInactive},
	}
	api.appointments = []clinicsdk.Appointment{{ID: "a1"}}

	data, err := views.Default().Load(context.Background(), nav.TutorDashboard, envFor(api, role.Tutor))
	require.NoError(t, err)

	dash, ok := data.(views.TutorDashboardData)
	require.True(t, ok)
	assert.Equal(t, "Ana Lima", dash.Profile.FullName)
	require.Len(t, dash.Veterinarians, 1)
	assert.Equal(t, "v1", dash.Veterinarians[0].ID)
	assert.Len(t, dash.Appointments, 1)
	assert.ElementsMatch(t,
		[]string{"GetProfile", "ListVeterinarians", "ListAppointments", "ListConsultations"},
		api.called())
}

func TestLoaderErrorsPropagate(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.err = clinicsdk.ErrPermissionDenied

	_, err := views.Default().Load(context.Background(), nav.VetDashboard, envFor(api, role.Veterinarian))
	assert.ErrorIs(t, err, clinicsdk.ErrPermissionDenied)
}

func TestLoadersNeedSession(t *testing.T) {
	t.Parallel()
	_, err := views.Default().Load(context.Background(), nav.Admin, views.Env{})
	assert.ErrorIs(t, err, views.ErrNoSession)

	data, err := views.Default().Load(context.Background(), nav.Login, views.Env{})
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestVetValidationFilter(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.vets = []clinicsdk.Veterinarian{
		{ID: "v1", Status: clinicsdk.VetStatusPending, Profile: &clinicsdk.Profile{FullName: "Bia", Phone: "(19) 99742-3970", TempPassword: "Tmp-1"}},
		{ID: "v2", Status: clinicsdk.VetStatusActive, Profile: &clinicsdk.Profile{FullName: "Caio", Phone: "11988887777"}},
	}
	reg := views.Default()

	env := envFor(api, role.Admin)
	data, err := reg.Load(context.Background(), nav.VetValidation, env)
	require.NoError(t, err)
	all := data.(views.VetValidationData)
	assert.Equal(t, views.FilterAll, all.Filter)
	require.Len(t, all.Rows, 2)
	assert.True(t, strings.HasPrefix(all.Rows[0].WhatsAppLink, "https://wa.me/5519997423970?text="))
	assert.Empty(t, all.Rows[1].WhatsAppLink, "no temporary password to send")

	env.Params = views.Form{"filter": "pending"}
	data, err = reg.Load(context.Background(), nav.VetValidation, env)
	require.NoError(t, err)
	pending := data.(views.VetValidationData)
	assert.Equal(t, views.FilterPending, pending.Filter)
	require.Len(t, pending.Rows, 1)
	assert.Equal(t, "v1", pending.Rows[0].Veterinarian.ID)

	env.Params = views.Form{"filter": "deleted"}
	_, err = reg.Load(context.Background(), nav.VetValidation, env)
	var verr *nav.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestExamsNewestFirst(t *testing.T) {
	t.Parallel()
	api := newFakeAPI()
	api.exams = []clinicsdk.Exam{
		{ID: "e1", ExamDate: "2024-01-10"},
		{ID: "e2", ExamDate: "2024-03-01"},
		{ID: "e3", ExamDate: "2023-12-31"},
	}

	data, err := views.Default().Load(context.Background(), nav.Exams, envFor(api, role.Tutor))
	require.NoError(t, err)
	exams := data.(views.ExamsData).Exams
	require.Len(t, exams, 3)
	assert.Equal(t, []string{"e2", "e1", "e3"}, []string{exams[0].ID, exams[1].ID, exams[2].ID})
}

func TestActionsAreBoundToTheirView(t *testing.T) {
	t.Parallel()
	reg := views.Default()
	api := newFakeAPI()

	_, err := reg.Do(context.Background(), nav.Admin, "record-dose", envFor(api, role.Veterinarian), views.Form{})
	assert.ErrorIs(t, err, views.ErrActionUnavailable)

	_, err = reg.Do(context.Background(), nav.Admin, "launch-rocket", envFor(api, role.Admin), nil)
	assert.ErrorIs(t, err, views.ErrUnknownAction)

	assert.Equal(t, []string{"edit-vet", "reset-vet-password", "toggle-vet-status"}, reg.Actions(nav.VetValidation))
}

func TestActionValidationHappensBeforeCalls(t *testing.T) {
	t.Parallel()
	reg := views.Default()

	tests := []struct {
		view   nav.ViewID
		action string
		form   views.Form
		field  string
	}{
		{nav.DoseRegistration, "record-dose", views.Form{"pet_id": "p1"}, "medication_name"},
		{nav.PatientRegistration, "register-patient", views.Form{"name": "Rex"}, "species"},
		{nav.Exams, "add-exam", views.Form{"pet_id": "p1", "exam_date": "2024-01-01"}, "title"},
		{nav.Scheduling, "schedule", views.Form{"pet_id": "p1", "appointment_date": "2024-01-01"}, "appointment_time"},
		{nav.ChangePassword, "change-password", views.Form{"password": "abc", "confirm_password": "abc"}, "password"},
		{nav.ChangePassword, "change-password", views.Form{"password": "abcdef", "confirm_password": "abcdeg"}, "confirm_password"},
		{nav.Registration, "create-vet", views.Form{"email": "v@x.com", "full_name": "Vet"}, "crmv"},
	}

	for _, tt := range tests {
		t.Run(tt.action+"/"+tt.field, func(t *testing.T) {
			api := newFakeAPI()
			_, err := reg.Do(context.Background(), tt.view, tt.action, envFor(api, role.Veterinarian), tt.form)

			var verr *nav.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, api.called())
		})
	}
}

func TestActionTransitions(t *testing.T) {
	t.Parallel()
	reg := views.Default()
	ctx := context.Background()

	t.Run("select vet", func(t *testing.T) {
		res, err := reg.Do(ctx, nav.TutorDashboard, "select-vet", envFor(newFakeAPI(), role.Tutor), views.Form{"vet_id": "v9"})
		require.NoError(t, err)
		assert.Equal(t, nav.VetProfileView, res.Next)
		assert.Equal(t, []string{"v9"}, res.Aux)
	})

	t.Run("schedule", func(t *testing.T) {
		env := envFor(newFakeAPI(), role.Tutor)
		env.SelectedVetID = "v1"
		res, err := reg.Do(ctx, nav.Scheduling, "schedule", env, views.Form{
			"pet_id": "p1", "appointment_date": "2024-05-01", "appointment_time": "10:00",
		})
		require.NoError(t, err)
		assert.Equal(t, nav.TutorDashboard, res.Next)
		appt := res.Data.(*clinicsdk.Appointment)
		assert.Equal(t, clinicsdk.AppointmentScheduled, appt.Status)
		assert.Equal(t, "v1", appt.VetID)
	})

	t.Run("record dose", func(t *testing.T) {
		res, err := reg.Do(ctx, nav.DoseRegistration, "record-dose", envFor(newFakeAPI(), role.Veterinarian), views.Form{
			"pet_id": "p1", "medication_name": " Rabies ",
		})
		require.NoError(t, err)
		assert.Equal(t, nav.Vaccination, res.Next)
		assert.Equal(t, "Rabies", res.Data.(*clinicsdk.Vaccination).MedicationName)
	})

	t.Run("add exam defaults", func(t *testing.T) {
		res, err := reg.Do(ctx, nav.Exams, "add-exam", envFor(newFakeAPI(), role.Veterinarian), views.Form{
			"pet_id": "p1", "title": "Hemograma", "exam_date": "2024-05-01",
		})
		require.NoError(t, err)
		exam := res.Data.(*clinicsdk.Exam)
		assert.Equal(t, clinicsdk.ExamDone, exam.Status)
		assert.Equal(t, "PDF", exam.FileType)
	})

	t.Run("register patient", func(t *testing.T) {
		res, err := reg.Do(ctx, nav.PatientRegistration, "register-patient", envFor(newFakeAPI(), role.Veterinarian), views.Form{
			"name": "Rex", "species": "dog",
		})
		require.NoError(t, err)
		assert.Equal(t, nav.VetDashboard, res.Next)
	})

	t.Run("consultation visibility", func(t *testing.T) {
		res, err := reg.Do(ctx, nav.ConsultationDetails, "record-consultation", envFor(newFakeAPI(), role.Veterinarian), views.Form{
			"pet_id": "p1", "diagnosis": "otitis", "is_visible_to_tutor": "true",
		})
		require.NoError(t, err)
		assert.True(t, res.Data.(*clinicsdk.Consultation).VisibleToTutor)
		assert.Equal(t, nav.VetDashboard, res.Next)
	})

	t.Run("password change returns by role", func(t *testing.T) {
		for r, want := range map[role.Role]nav.ViewID{
			role.Tutor:        nav.TutorProfile,
			role.Veterinarian: nav.VetSettings,
			role.Admin:        nav.Admin,
		} {
			api := newFakeAPI()
			res, err := reg.Do(ctx, nav.ChangePassword, "change-password", envFor(api, r), views.Form{
				"password": "newpass", "confirm_password": "newpass",
			})
			require.NoError(t, err)
			assert.Equal(t, want, res.Next, r)
			assert.True(t, res.ProfileChanged)
			assert.Equal(t, "newpass", api.password)
		}
	})

	t.Run("forced change goes home", func(t *testing.T) {
		res, err := reg.Do(ctx, nav.ForcePasswordChange, "force-password-change", envFor(newFakeAPI(), role.Veterinarian), views.Form{
			"password": "newpass", "confirm_password": "newpass",
		})
		require.NoError(t, err)
		assert.Equal(t, nav.VetDashboard, res.Next)
	})
}

func TestVetAdministration(t *testing.T) {
	t.Parallel()
	reg := views.Default()
	ctx := context.Background()
	api := newFakeAPI()
	api.vets = []clinicsdk.Veterinarian{{ID: "v1", Status: clinicsdk.VetStatusActive}}
	env := envFor(api, role.Admin)

	res, err := reg.Do(ctx, nav.VetValidation, "toggle-vet-status", env, views.Form{"vet_id": "v1"})
	require.NoError(t, err)
	assert.Equal(t, clinicsdk.VetStatusInactive, res.Data.(*clinicsdk.Veterinarian).Status)

	res, err = reg.Do(ctx, nav.VetValidation, "toggle-vet-status", env, views.Form{"vet_id": "v1"})
	require.NoError(t, err)
	assert.Equal(t, clinicsdk.VetStatusActive, res.Data.(*clinicsdk.Veterinarian).Status)

	res, err = reg.Do(ctx, nav.VetValidation, "edit-vet", env, views.Form{"vet_id": "v1"})
	require.NoError(t, err)
	assert.Equal(t, nav.EditVet, res.Next)
	assert.Equal(t, []string{"v1"}, res.Aux)

	env.SelectedVetID = "v1"
	res, err = reg.Do(ctx, nav.EditVet, "save-vet", env, views.Form{"uf": "rj"})
	require.NoError(t, err)
	assert.Equal(t, nav.VetValidation, res.Next)
	assert.Equal(t, "RJ", res.Data.(*clinicsdk.Veterinarian).UF)

	res, err = reg.Do(ctx, nav.Registration, "create-vet", env, views.Form{
		"email": "new@x.com", "full_name": "Nova", "crmv": "1", "uf": "sp", "phone": "11 91234-5678",
	})
	require.NoError(t, err)
	assert.Equal(t, nav.VetValidation, res.Next)
	created := res.Data.(views.CreatedVet)
	assert.Equal(t, "Tmp-1234567", created.TempPassword)
	assert.Contains(t, created.WhatsAppLink, "https://wa.me/5511912345678?text=")

	api.err = errors.New("boom")
	_, err = reg.Do(ctx, nav.VetValidation, "reset-vet-password", env, views.Form{"vet_id": "v1"})
	assert.EqualError(t, err, "boom")
}

func TestWelcomeLink(t *testing.T) {
	t.Parallel()

	link := views.WelcomeLink("(11) 99999-0000", "Bia", "Tmp-42", "https://portal.example.com")
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/5511999990000", u.Path)

	text := u.Query().Get("text")
	assert.Contains(t, text, "Dr. Bia")
	assert.Contains(t, text, "Senha Provisória: Tmp-42")
	assert.Contains(t, text, "https://portal.example.com")
	assert.NotContains(t, link, "+", "spaces are percent encoded")

	assert.Empty(t, views.WelcomeLink("", "Bia", "Tmp-42", ""))
	assert.Contains(t, views.ContactLink("11 98888-7777", "Caio"), "https://wa.me/5511988887777?text=")
}
