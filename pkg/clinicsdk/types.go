package clinicsdk

import (
	"net/url"
	"strconv"
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

// TokenResponse is returned by sign-up and every grant of /v1/auth/token.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	UserID       string    `json:"user_id"`
	Role         role.Role `json:"role"`
}

// SignUpMetadata is stored on the tutor profile created by a sign-up.
type SignUpMetadata struct {
	FullName  string `json:"full_name"`
	CPF       string `json:"cpf"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
}

type SignUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     SignUpMetadata `json:"data"`
}

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	MFAEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

type UpdateUserRequest struct {
	Password string `json:"password"`
}

type RecoverRequest struct {
	Email string `json:"email"`
}

type RecoverConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type MFAEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type MFACodeRequest struct {
	Code string `json:"code"`
}

type BootstrapRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type BootstrapResponse struct {
	UserID string `json:"user_id"`
}

type Profile struct {
	ID                 string    `json:"id"`
	Role               role.Role `json:"role"`
	FullName           string    `json:"full_name"`
	Email              string    `json:"email"`
	CPF                string    `json:"cpf"`
	Phone              string    `json:"phone"`
	BirthDate          string    `json:"birth_date,omitempty"`
	MustChangePassword bool      `json:"must_change_password"`
	TempPassword       string    `json:"temp_password,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FullName           *string `json:"full_name,omitempty"`
	CPF                *string `json:"cpf,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	MustChangePassword *bool   `json:"must_change_password,omitempty"`
	TempPassword       *string `json:"temp_password,omitempty"`
}

// Veterinarian statuses.
const (
	VetStatusActive   = "ATIVO"
	VetStatusInactive = "INATIVO"
	VetStatusPending  = "PENDENTE"
)

type Veterinarian struct {
	ID                 string    `json:"id"`
	CRMV               string    `json:"crmv"`
	UF                 string    `json:"uf"`
	ClinicName         string    `json:"clinic_name"`
	Status             string    `json:"status"`
	ContractValidUntil string    `json:"contract_valid_until,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	Profile            *Profile  `json:"profile,omitempty"`
}

type CreateVeterinarianRequest struct {
	Email              string `json:"email"`
	FullName           string `json:"full_name"`
	CPF                string `json:"cpf"`
	Phone              string `json:"phone"`
	CRMV               string `json:"crmv"`
	UF                 string `json:"uf"`
	ClinicName         string `json:"clinic_name"`
	ContractValidUntil string `json:"contract_valid_until,omitempty"`
}

// CreateVeterinarianResponse carries the generated temporary password, which
// is shown once to the administrator.
type CreateVeterinarianResponse struct {
	Veterinarian Veterinarian `json:"veterinarian"`
	TempPassword string       `json:"temp_password"`
}

// UpdateVeterinarianRequest edits profile and registration fields together.
type UpdateVeterinarianRequest struct {
	FullName           *string `json:"full_name,omitempty"`
	CPF                *string `json:"cpf,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	CRMV               *string `json:"crmv,omitempty"`
	UF                 *string `json:"uf,omitempty"`
	ClinicName         *string `json:"clinic_name,omitempty"`
	ContractValidUntil *string `json:"contract_valid_until,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type VeterinarianCounts struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Pending  int `json:"pending"`
}

type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Breed     string    `json:"breed,omitempty"`
	Age       string    `json:"age,omitempty"`
	Weight    string    `json:"weight,omitempty"`
	VetID     string    `json:"vet_id,omitempty"`
	TutorID   string    `json:"tutor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Appointment statuses.
const (
	AppointmentScheduled = "AGENDADO"
	AppointmentDone      = "CONCLUIDO"
	AppointmentCancelled = "CANCELADO"
)

type Appointment struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	VetID     string    `json:"vet_id"`
	TutorID   string    `json:"tutor_id,omitempty"`
	Date      string    `json:"appointment_date"`
	Time      string    `json:"appointment_time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Consultation struct {
	ID               string    `json:"id"`
	PetID            string    `json:"pet_id"`
	VetID            string    `json:"vet_id"`
	Diagnosis        string    `json:"diagnosis"`
	Treatment        string    `json:"treatment"`
	VisibleToTutor   bool      `json:"is_visible_to_tutor"`
	ConsultationDate time.Time `json:"consultation_date"`
}

// Exam statuses.
const (
	ExamDone    = "CONCLUÍDO"
	ExamPending = "PENDENTE"
)

type Exam struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	VetID     string    `json:"vet_id,omitempty"`
	Title     string    `json:"title"`
	ExamDate  string    `json:"exam_date"`
	Status    string    `json:"status"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

type Vaccination struct {
	ID             string    `json:"id"`
	PetID          string    `json:"pet_id"`
	MedicationName string    `json:"medication_name"`
	Dosage         string    `json:"dosage,omitempty"`
	Unit           string    `json:"unit,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	AdministeredAt time.Time `json:"administered_at"`
}

// Tutor request statuses.
const (
	TutorRequestPending  = "PENDING"
	TutorRequestApproved = "APPROVED"
	TutorRequestRejected = "REJECTED"
)

type TutorRequest struct {
	ID        string    `json:"id"`
	VetID     string    `json:"vet_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	PetName   string    `json:"pet_name,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOptions are the equality filters accepted by list endpoints.
type ListOptions struct {
	PetID  string
	VetID  string
	Status string
	Limit  int
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.PetID != "" {
		q.Set("pet_id", o.PetID)
	}
	if o.VetID != "" {
		q.Set("vet_id", o.VetID)
	}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
