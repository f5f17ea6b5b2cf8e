package domain

import "time"

type VetStatus string

const (
	VetActive   VetStatus = "ATIVO"
	VetInactive VetStatus = "INATIVO"
	VetPending  VetStatus = "PENDENTE"
)

func (s VetStatus) Valid() bool {
	switch s {
	case VetActive, VetInactive, VetPending:
		return true
	}
	return false
}

// Toggled returns the status a validation toggle moves to: active vets are
// deactivated, everything else is activated.
func (s VetStatus) Toggled() VetStatus {
	if s == VetActive {
		return VetInactive
	}
	return VetActive
}

// Veterinarian extends a Profile with professional registration data.
type Veterinarian struct {
	ID                 string
	CRMV               string
	UF                 string
	ClinicName         string
	Status             VetStatus
	ContractValidUntil string // YYYY-MM-DD, optional
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Profile is populated by reads that join profiles.
	Profile *Profile
}

// VeterinarianUpdate carries editable vet fields; nil fields are untouched.
type VeterinarianUpdate struct {
	CRMV               *string
	UF                 *string
	ClinicName         *string
	ContractValidUntil *string
}

// NewVeterinarian is the input of an admin-created veterinarian account.
type NewVeterinarian struct {
	Email              string
	FullName           string
	CPF                string
	Phone              string
	CRMV               string
	UF                 string
	ClinicName         string
	ContractValidUntil string
}

// VeterinarianEdit changes profile and registration fields of a vet in one
// operation. Only FullName, CPF and Phone of Profile are applied.
type VeterinarianEdit struct {
	Profile ProfileUpdate
	Vet     VeterinarianUpdate
}
