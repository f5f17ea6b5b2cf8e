package http

import (
	"strings"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

func tokenResponse(p *domain.TokenPair) clinicsdk.TokenResponse {
	return clinicsdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(p.ExpiresIn.Seconds()),
		UserID:       p.UserID,
		Role:         p.Role,
	}
}

func toSDKUser(u domain.User) clinicsdk.User {
	return clinicsdk.User{
		ID:         u.ID,
		Email:      u.Email,
		MFAEnabled: u.HasMFA(),
		CreatedAt:  u.CreatedAt,
	}
}

func toSDKProfile(p domain.Profile) clinicsdk.Profile {
	return clinicsdk.Profile{
		ID:                 p.ID,
		Role:               p.Role,
		FullName:           p.FullName,
		Email:              p.Email,
		CPF:                p.CPF,
		Phone:              p.Phone,
		BirthDate:          p.BirthDate,
		MustChangePassword: p.MustChangePassword,
		TempPassword:       p.TempPassword,
		CreatedAt:          p.CreatedAt,
	}
}

func fromSDKProfile(p clinicsdk.Profile) domain.Profile {
	return domain.Profile{
		ID:                 strings.TrimSpace(p.ID),
		Role:               p.Role,
		FullName:           p.FullName,
		Email:              strings.TrimSpace(p.Email),
		CPF:                strings.TrimSpace(p.CPF),
		Phone:              strings.TrimSpace(p.Phone),
		BirthDate:          strings.TrimSpace(p.BirthDate),
		MustChangePassword: p.MustChangePassword,
		TempPassword:       p.TempPassword,
	}
}

func fromSDKProfileUpdate(u clinicsdk.ProfileUpdate) domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FullName:           u.FullName,
		CPF:                u.CPF,
		Phone:              u.Phone,
		MustChangePassword: u.MustChangePassword,
		TempPassword:       u.TempPassword,
	}
}

func toSDKVeterinarian(v domain.Veterinarian) clinicsdk.Veterinarian {
	out := clinicsdk.Veterinarian{
		ID:                 v.ID,
		CRMV:               v.CRMV,
		UF:                 v.UF,
		ClinicName:         v.ClinicName,
		Status:             string(v.Status),
		ContractValidUntil: v.ContractValidUntil,
		CreatedAt:          v.CreatedAt,
	}
	if v.Profile != nil {
		p := toSDKProfile(*v.Profile)
		out.Profile = &p
	}
	return out
}

func toSDKPatient(p domain.Patient) clinicsdk.Patient {
	return clinicsdk.Patient{
		ID: p.ID, Name: p.Name, Species: p.Species, Breed: p.Breed, Age: p.Age, Weight: p.Weight,
		VetID: p.VetID, TutorID: p.TutorID, CreatedAt: p.CreatedAt,
	}
}

func fromSDKPatient(p clinicsdk.Patient) domain.Patient {
	return domain.Patient{
		Name: p.Name, Species: p.Species, Breed: p.Breed, Age: p.Age, Weight: p.Weight,
		VetID: p.VetID, TutorID: p.TutorID,
	}
}

func toSDKAppointment(a domain.Appointment) clinicsdk.Appointment {
	return clinicsdk.Appointment{
		ID: a.ID, PetID: a.PetID, VetID: a.VetID, TutorID: a.TutorID,
		Date: a.Date, Time: a.Time, Status: string(a.Status), CreatedAt: a.CreatedAt,
	}
}

func toSDKConsultation(c domain.Consultation) clinicsdk.Consultation {
	return clinicsdk.Consultation{
		ID: c.ID, PetID: c.PetID, VetID: c.VetID, Diagnosis: c.Diagnosis, Treatment: c.Treatment,
		VisibleToTutor: c.VisibleToTutor, ConsultationDate: c.ConsultationDate,
	}
}

func toSDKExam(e domain.Exam) clinicsdk.Exam {
	return clinicsdk.Exam{
		ID: e.ID, PetID: e.PetID, VetID: e.VetID, Title: e.Title, ExamDate: e.ExamDate,
		Status: string(e.Status), FileType: e.FileType, CreatedAt: e.CreatedAt,
	}
}

func toSDKVaccination(v domain.VaccinationRecord) clinicsdk.Vaccination {
	return clinicsdk.Vaccination{
		ID: v.ID, PetID: v.PetID, MedicationName: v.MedicationName, Dosage: v.Dosage,
		Unit: v.Unit, Notes: v.Notes, AdministeredAt: v.AdministeredAt,
	}
}

func toSDKTutorRequest(t domain.TutorRequest) clinicsdk.TutorRequest {
	return clinicsdk.TutorRequest{
		ID: t.ID, VetID: t.VetID, FullName: t.FullName, Email: t.Email, Phone: t.Phone,
		PetName: t.PetName, Status: string(t.Status), CreatedAt: t.CreatedAt,
	}
}

// mapSlice converts every element of in with fn, never returning nil so
// empty lists encode as [].
func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func parseRole(raw string) (role.Role, bool) {
	if raw == "" {
		return "", true
	}
	r, err := role.Parse(raw)
	return r, err == nil
}
