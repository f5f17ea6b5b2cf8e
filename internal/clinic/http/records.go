package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/internal/clinic/service"
	"github.com/aussiebroadwan/billybuddy/pkg/clinicsdk"
	"github.com/aussiebroadwan/billybuddy/pkg/httpx"
)

// RecordsHandler serves the clinical record tables. Every list endpoint
// accepts the pet_id, vet_id, status and limit query parameters and returns
// rows newest first.
type RecordsHandler struct {
	RecordsService *service.RecordsService
}

func recordFilter(r *http.Request) domain.RecordFilter {
	q := r.URL.Query()
	return domain.RecordFilter{
		PetID:  q.Get("pet_id"),
		VetID:  q.Get("vet_id"),
		Status: strings.ToUpper(q.Get("status")),
		Limit:  httpx.QueryInt(r, "limit", 0),
	}
}

// listHandler adapts a service list call to a JSON array response.
func listHandler[T, U any](
	list func(*http.Request, service.Actor, domain.RecordFilter) ([]T, error),
	conv func(T) U,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := list(r, actor(r), recordFilter(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, mapSlice(rows, conv))
	}
}

// createHandler decodes a request body, hands it to the service and answers
// 201 with the stored row.
func createHandler[Req, T, U any](
	create func(*http.Request, service.Actor, Req) (T, error),
	conv func(T) U,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := httpx.DecodeJSON(r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
		row, err := create(r, actor(r), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, conv(row))
	}
}

// HandleListPatients godoc
//
//	@Summary	List patients
//	@Tags		Records
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		pet_id	query	string	false	"Patient id"
//	@Param		vet_id	query	string	false	"Veterinarian id"
//	@Param		limit	query	int		false	"Maximum rows"
//	@Success	200		{array}	clinicsdk.Patient
//	@Router		/v1/patients [get].
func (h *RecordsHandler) HandleListPatients(w http.ResponseWriter, r *http.Request) {
	listHandler(func(r *http.Request, a service.Actor, f domain.RecordFilter) ([]domain.Patient, error) {
		return h.RecordsService.ListPatients(r.Context(), a, f)
	}, toSDKPatient)(w, r)
}

// HandleCreatePatient godoc
//
//	@Summary		Register patient
//	@Description	Name and species are required. A vet caller becomes the patient's vet; a tutor caller its owner.
//	@Tags			Records
//	@Accept			json
//	@Produce		json
//	@Security		APIKey
//	@Security		BearerAuth
//	@Param			request	body		clinicsdk.Patient	true	"Patient"
//	@Success		201		{object}	clinicsdk.Patient
//	@Failure		400		{object}	clinicsdk.APIError
//	@Router			/v1/patients [post].
func (h *RecordsHandler) HandleCreatePatient(w http.ResponseWriter, r *http.Request) {
	createHandler(func(r *http.Request, a service.Actor, req clinicsdk.Patient) (domain.Patient, error) {
		return h.RecordsService.CreatePatient(r.Context(), a, fromSDKPatient(req))
	}, toSDKPatient)(w, r)
}

// HandleListAppointments godoc
//
//	@Summary	List appointments
//	@Tags		Records
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		pet_id	query	string	false	"Patient id"
//	@Param		vet_id	query	string	false	"Veterinarian id"
//	@Param		status	query	string	false	"AGENDADO, CONCLUIDO or CANCELADO"
//	@Param		limit	query	int		false	"Maximum rows"
//	@Success	200		{array}	clinicsdk.Appointment
//	@Router		/v1/appointments [get].
func (h *RecordsHandler) HandleListAppointments(w http.ResponseWriter, r *http.Request) {
	listHandler(func(r *http.Request, a service.Actor, f domain.RecordFilter) ([]domain.Appointment, error) {
		return h.RecordsService.ListAppointments(r.Context(), a, f)
	}, toSDKAppointment)(w, r)
}

// HandleCreateAppointment godoc
//
//	@Summary		Schedule appointment
//	@Description	New appointments start as AGENDADO.
//	@Tags			Records
//	@Accept			json
//	@Produce		json
//	@Security		APIKey
//	@Security		BearerAuth
//	@Param			request	body		clinicsdk.Appointment	true	"Appointment"
//	@Success		201		{object}	clinicsdk.Appointment
//	@Failure		400		{object}	clinicsdk.APIError
//	@Failure		403		{object}	clinicsdk.APIError
//	@Router			/v1/appointments [post].
func (h *RecordsHandler) HandleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	createHandler(func(r *http.Request, a service.Actor, req clinicsdk.Appointment) (domain.Appointment, error) {
		return h.RecordsService.CreateAppointment(r.Context(), a, domain.Appointment{
			PetID: req.PetID, VetID: req.VetID, Date: req.Date, Time: req.Time,
		})
	}, toSDKAppointment)(w, r)
}

// HandleListConsultations godoc
//
//	@Summary		List consultations
//	@Description	Tutors only receive consultations released to them.
//	@Tags			Records
//	@Produce		json
//	@Security		APIKey
//	@Security		BearerAuth
//	@Param			pet_id	query	string	false	"Patient id"
//	@Param			vet_id	query	string	false	"Veterinarian id"
//	@Param			limit	query	int		false	"Maximum rows"
//	@Success		200		{array}	clinicsdk.Consultation
//	@Router			/v1/consultations [get].
func (h *RecordsHandler) HandleListConsultations(w http.ResponseWriter, r *http.Request) {
	listHandler(func(r *http.Request, a service.Actor, f domain.RecordFilter) ([]domain.Consultation, error) {
		return h.RecordsService.ListConsultations(r.Context(), a, f)
	}, toSDKConsultation)(w, r)
}

// HandleCreateConsultation godoc
//
//	@Summary	Record consultation
//	@Tags		Records
//	@Accept		json
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		request	body		clinicsdk.Consultation	true	"Consultation"
//	@Success	201		{object}	clinicsdk.Consultation
//	@Failure	400		{object}	clinicsdk.APIError
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/consultations [post].
func (h *RecordsHandler) HandleCreateConsultation(w http.ResponseWriter, r *http.Request) {
	createHandler(func(r *http.Request, a service.Actor, req clinicsdk.Consultation) (domain.Consultation, error) {
		return h.RecordsService.CreateConsultation(r.Context(), a, domain.Consultation{
			PetID:            req.PetID,
			VetID:            req.VetID,
			Diagnosis:        req.Diagnosis,
			Treatment:        req.Treatment,
			VisibleToTutor:   req.VisibleToTutor,
			ConsultationDate: req.ConsultationDate,
		})
	}, toSDKConsultation)(w, r)
}

// HandleListExams godoc
//
//	@Summary	List exams
//	@Tags		Records
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		pet_id	query	string	false	"Patient id"
//	@Param		status	query	string	false	"CONCLUÍDO or PENDENTE"
//	@Param		limit	query	int		false	"Maximum rows"
//	@Success	200		{array}	clinicsdk.Exam
//	@Router		/v1/exams [get].
func (h *RecordsHandler) HandleListExams(w http.ResponseWriter, r *http.Request) {
	listHandler(func(r *http.Request, a service.Actor, f domain.RecordFilter) ([]domain.Exam, error) {
		return h.RecordsService.ListExams(r.Context(), a, f)
	}, toSDKExam)(w, r)
}

// HandleCreateExam godoc
//
//	@Summary		Add exam
//	@Description	Status defaults to CONCLUÍDO and file type to PDF.
//	@Tags			Records
//	@Accept			json
//	@Produce		json
//	@Security		APIKey
//	@Security		BearerAuth
//	@Param			request	body		clinicsdk.Exam	true	"Exam"
//	@Success		201		{object}	clinicsdk.Exam
//	@Failure		400		{object}	clinicsdk.APIError
//	@Failure		403		{object}	clinicsdk.APIError
//	@Router			/v1/exams [post].
func (h *RecordsHandler) HandleCreateExam(w http.ResponseWriter, r *http.Request) {
	createHandler(func(r *http.Request, a service.Actor, req clinicsdk.Exam) (domain.Exam, error) {
		return h.RecordsService.CreateExam(r.Context(), a, domain.Exam{
			PetID:    req.PetID,
			VetID:    req.VetID,
			Title:    req.Title,
			ExamDate: req.ExamDate,
			Status:   domain.ExamStatus(req.Status),
			FileType: req.FileType,
		})
	}, toSDKExam)(w, r)
}

// HandleListVaccinations godoc
//
//	@Summary	List vaccination records
//	@Tags		Records
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		pet_id	query	string	false	"Patient id"
//	@Param		limit	query	int		false	"Maximum rows"
//	@Success	200		{array}	clinicsdk.Vaccination
//	@Router		/v1/vaccinations [get].
func (h *RecordsHandler) HandleListVaccinations(w http.ResponseWriter, r *http.Request) {
	listHandler(func(r *http.Request, a service.Actor, f domain.RecordFilter) ([]domain.VaccinationRecord, error) {
		return h.RecordsService.ListVaccinations(r.Context(), a, f)
	}, toSDKVaccination)(w, r)
}

// HandleCreateVaccination godoc
//
//	@Summary	Record vaccine dose
//	@Tags		Records
//	@Accept		json
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		request	body		clinicsdk.Vaccination	true	"Dose"
//	@Success	201		{object}	clinicsdk.Vaccination
//	@Failure	400		{object}	clinicsdk.APIError
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/vaccinations [post].
func (h *RecordsHandler) HandleCreateVaccination(w http.ResponseWriter, r *http.Request) {
	createHandler(func(r *http.Request, a service.Actor, req clinicsdk.Vaccination) (domain.VaccinationRecord, error) {
		return h.RecordsService.CreateVaccination(r.Context(), a, domain.VaccinationRecord{
			PetID:          req.PetID,
			MedicationName: req.MedicationName,
			Dosage:         req.Dosage,
			Unit:           req.Unit,
			Notes:          req.Notes,
			AdministeredAt: req.AdministeredAt,
		})
	}, toSDKVaccination)(w, r)
}

// HandleListTutorRequests godoc
//
//	@Summary	List tutor requests
//	@Tags		Records
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		status	query		string	false	"PENDING, APPROVED or REJECTED"
//	@Param		limit	query		int		false	"Maximum rows"
//	@Success	200		{array}		clinicsdk.TutorRequest
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/tutor-requests [get].
func (h *RecordsHandler) HandleListTutorRequests(w http.ResponseWriter, r *http.Request) {
	listHandler(func(r *http.Request, a service.Actor, f domain.RecordFilter) ([]domain.TutorRequest, error) {
		return h.RecordsService.ListTutorRequests(r.Context(), a, f)
	}, toSDKTutorRequest)(w, r)
}

// HandleCreateTutorRequest godoc
//
//	@Summary	Request a veterinarian
//	@Tags		Records
//	@Accept		json
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		request	body		clinicsdk.TutorRequest	true	"Request"
//	@Success	201		{object}	clinicsdk.TutorRequest
//	@Failure	400		{object}	clinicsdk.APIError
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/tutor-requests [post].
func (h *RecordsHandler) HandleCreateTutorRequest(w http.ResponseWriter, r *http.Request) {
	createHandler(func(r *http.Request, a service.Actor, req clinicsdk.TutorRequest) (domain.TutorRequest, error) {
		return h.RecordsService.CreateTutorRequest(r.Context(), a, domain.TutorRequest{
			VetID:    req.VetID,
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
			PetName:  req.PetName,
		})
	}, toSDKTutorRequest)(w, r)
}

// HandleSetTutorRequestStatus godoc
//
//	@Summary	Approve or reject a tutor request
//	@Tags		Records
//	@Accept		json
//	@Produce	json
//	@Security	APIKey
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Request id"
//	@Param		request	body		clinicsdk.StatusRequest	true	"New status"
//	@Success	200		{object}	clinicsdk.TutorRequest
//	@Failure	400		{object}	clinicsdk.APIError
//	@Failure	403		{object}	clinicsdk.APIError
//	@Router		/v1/tutor-requests/{id}/status [put].
func (h *RecordsHandler) HandleSetTutorRequestStatus(w http.ResponseWriter, r *http.Request) {
	var req clinicsdk.StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	status := domain.TutorRequestStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	tr, err := h.RecordsService.SetTutorRequestStatus(r.Context(), actor(r), r.PathValue("id"), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKTutorRequest(tr))
}
