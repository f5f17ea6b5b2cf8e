package domain

import "time"

type Patient struct {
	ID        string
	Name      string
	Species   string
	Breed     string
	Age       string
	Weight    string
	VetID     string
	TutorID   string
	CreatedAt time.Time
}

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "AGENDADO"
	AppointmentDone      AppointmentStatus = "CONCLUIDO"
	AppointmentCancelled AppointmentStatus = "CANCELADO"
)

type Appointment struct {
	ID        string
	PetID     string
	VetID     string
	TutorID   string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Status    AppointmentStatus
	CreatedAt time.Time
}

type Consultation struct {
	ID               string
	PetID            string
	VetID            string
	Diagnosis        string
	Treatment        string
	VisibleToTutor   bool
	ConsultationDate time.Time
}

type ExamStatus string

const (
	ExamDone    ExamStatus = "CONCLUÍDO"
	ExamPending ExamStatus = "PENDENTE"
)

type Exam struct {
	ID        string
	PetID     string
	VetID     string
	Title     string
	ExamDate  string // YYYY-MM-DD
	Status    ExamStatus
	FileType  string
	CreatedAt time.Time
}

type VaccinationRecord struct {
	ID             string
	PetID          string
	MedicationName string
	Dosage         string
	Unit           string
	Notes          string
	AdministeredAt time.Time
}

type TutorRequestStatus string

const (
	TutorRequestPending  TutorRequestStatus = "PENDING"
	TutorRequestApproved TutorRequestStatus = "APPROVED"
	TutorRequestRejected TutorRequestStatus = "REJECTED"
)

func (s TutorRequestStatus) Valid() bool {
	switch s {
	case TutorRequestPending, TutorRequestApproved, TutorRequestRejected:
		return true
	}
	return false
}

type TutorRequest struct {
	ID        string
	VetID     string
	FullName  string
	Email     string
	Phone     string
	PetName   string
	Status    TutorRequestStatus
	CreatedAt time.Time
}

// RecordFilter holds the equality filters accepted by list queries. Empty
// fields do not filter. TutorID restricts rows to pets owned by that tutor.
type RecordFilter struct {
	PetID   string
	VetID   string
	TutorID string
	Status  string
	Limit   int
}

// DefaultListLimit applies when a filter carries no limit.
const DefaultListLimit = 100
