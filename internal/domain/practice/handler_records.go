package practice

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-practice-api/internal/domain/animals"
	"vet-practice-api/internal/domain/clients"
	"vet-practice-api/internal/domain/patch"
	"vet-practice-api/internal/domain/softdelete"
	"vet-practice-api/internal/domain/treatments"
	"vet-practice-api/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func registerClientRoutes(r chi.Router, svc *Service) {
	r.Route("/clients", func(cr chi.Router) {
		cr.Post("/", createClientHandler(svc))
		cr.Get("/", listClientsHandler(svc))
		cr.Get("/{clientID}", getClientHandler(svc))
		cr.Patch("/{clientID}", updateClientHandler(svc))
		cr.Delete("/{clientID}", deleteClientHandler(svc))
		cr.Post("/{clientID}/restore", restoreClientHandler(svc))
	})
}

func registerAnimalRoutes(r chi.Router, svc *Service) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc))
		ar.Get("/", listAnimalsHandler(svc))
		ar.Get("/{animalID}", getAnimalHandler(svc))
		ar.Patch("/{animalID}", updateAnimalHandler(svc))
		ar.Post("/{animalID}/deceased", markDeceasedHandler(svc))
		ar.Delete("/{animalID}", deleteAnimalHandler(svc))
		ar.Post("/{animalID}/restore", restoreAnimalHandler(svc))
	})
}

func registerTreatmentRoutes(r chi.Router, svc *Service) {
	r.Route("/treatments", func(tr chi.Router) {
		tr.Post("/", createTreatmentHandler(svc))
		tr.Get("/", listTreatmentsHandler(svc))
		tr.Get("/{recordID}", getTreatmentHandler(svc))
		tr.Get("/{recordID}/history", treatmentHistoryHandler(svc))
		tr.Post("/{recordID}/amend", amendTreatmentHandler(svc))
		tr.Delete("/{recordID}", deleteTreatmentHandler(svc))
		tr.Post("/{recordID}/restore", restoreTreatmentHandler(svc))
	})
}

var errInvalidDate = apperr.Invalid("INVALID_DATE", "dates must be YYYY-MM-DD")

// deleteRequest es el body de todo DELETE de la jerarquía.
type deleteRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=500"`
}

// civilDate es una fecha sin hora (YYYY-MM-DD).
type civilDate time.Time

func (d *civilDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return errInvalidDate
	}
	*d = civilDate(t)
	return nil
}

func datePtr(d *civilDate) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

func dateField(f patch.Field[civilDate]) patch.Field[time.Time] {
	if !f.Present || f.Value == nil {
		return patch.Field[time.Time]{Present: f.Present}
	}
	return patch.Set(time.Time(*f.Value))
}

// ---- clients ----

type createClientRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=40"`
	Address   string `json:"address" validate:"max=300"`
	Notes     string `json:"notes"`
}

type updateClientRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
	Address   *string `json:"address" validate:"omitempty,max=300"`
	Notes     *string `json:"notes"`
}

func createClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req createClientRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		c, err := svc.CreateClient(r.Context(), actor, chi.URLParam(r, "orgID"), clients.Input{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
			Notes:     req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toClientResponse(c))
	}
}

func listClientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		includeDeleted, err := queryBool(r, "includeDeleted")
		if err != nil {
			writeError(w, err)
			return
		}
		items, err := svc.ListClients(r.Context(), actor, chi.URLParam(r, "orgID"), clients.ListFilter{
			IncludeDeleted: includeDeleted,
			Search:         strings.TrimSpace(r.URL.Query().Get("q")),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toClientResponse))
	}
}

func getClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		c, err := svc.GetClient(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "clientID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	}
}

func updateClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req updateClientRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		c, err := svc.UpdateClient(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "clientID"), clients.Patch{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Address:   req.Address,
			Notes:     req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	}
}

// deleteClientHandler godoc
// @Summary Borrar cliente (cascada)
// @Description Soft delete del cliente y de todos sus animales y tratamientos vivos, en una sola transacción. Requiere canDeleteClients salvo para el OWNER. Los descendientes reciben el motivo "Cascade delete from client: <reason>".
// @Tags clients
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param orgID path string true "ID de la organización"
// @Param clientID path string true "ID del cliente"
// @Param payload body deleteRequest true "Motivo (mínimo 10 caracteres)"
// @Success 200 {object} deleteResponse
// @Failure 400 {object} errorBody "VALIDATION_FAILED"
// @Failure 403 {object} errorBody "DELETE_PERMISSION_DENIED"
// @Failure 404 {object} errorBody "CLIENT_NOT_FOUND"
// @Failure 409 {object} errorBody "ALREADY_DELETED"
// @Router /orgs/{orgID}/clients/{clientID} [delete]
func deleteClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req deleteRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		res, err := svc.DeleteClient(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "clientID"), req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeleteResponse(softdelete.KindClient, res))
	}
}

func restoreClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		c, err := svc.RestoreClient(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "clientID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Message: "Client restored", DeletedOrRestoredID: c.ID})
	}
}

// ---- animals ----

type createAnimalRequest struct {
	ClientID        string              `json:"clientId" validate:"required"`
	Name            string              `json:"name" validate:"required,max=100"`
	Species         string              `json:"species" validate:"required,max=60"`
	Breed           string              `json:"breed" validate:"max=100"`
	Sex             animals.Sex         `json:"sex" validate:"omitempty,oneof=MALE FEMALE UNKNOWN"`
	Color           string              `json:"color" validate:"max=60"`
	DateOfBirth     *civilDate          `json:"dateOfBirth"`
	Weight          *float64            `json:"weight" validate:"omitempty,gt=0"`
	MicrochipNumber *string             `json:"microchipNumber" validate:"omitempty,max=40"`
	Notes           string              `json:"notes"`
	PatientType     animals.PatientType `json:"patientType" validate:"omitempty,oneof=SINGLE_PET SINGLE_LIVESTOCK BATCH_LIVESTOCK"`
	BatchName       *string             `json:"batchName"`
	BatchSize       *int                `json:"batchSize" validate:"omitempty,gt=0"`
	BatchIdentifier *string             `json:"batchIdentifier"`
}

// updateAnimalRequest: campo ausente no se toca, null limpia.
type updateAnimalRequest struct {
	Name            patch.Field[string]              `json:"name"`
	Species         patch.Field[string]              `json:"species"`
	Breed           patch.Field[string]              `json:"breed"`
	Sex             patch.Field[animals.Sex]         `json:"sex"`
	Color           patch.Field[string]              `json:"color"`
	DateOfBirth     patch.Field[civilDate]           `json:"dateOfBirth"`
	Weight          patch.Field[float64]             `json:"weight"`
	MicrochipNumber patch.Field[string]              `json:"microchipNumber"`
	Notes           patch.Field[string]              `json:"notes"`
	PatientType     patch.Field[animals.PatientType] `json:"patientType"`
	BatchName       patch.Field[string]              `json:"batchName"`
	BatchSize       patch.Field[int]                 `json:"batchSize"`
	BatchIdentifier patch.Field[string]              `json:"batchIdentifier"`
}

type markDeceasedRequest struct {
	DateOfDeath  *civilDate `json:"dateOfDeath" validate:"required"`
	CauseOfDeath string     `json:"causeOfDeath" validate:"max=500"`
}

func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req createAnimalRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		a, err := svc.CreateAnimal(r.Context(), actor, chi.URLParam(r, "orgID"), animals.Input{
			ClientID:        req.ClientID,
			Name:            req.Name,
			Species:         req.Species,
			Breed:           req.Breed,
			Sex:             req.Sex,
			Color:           req.Color,
			DateOfBirth:     datePtr(req.DateOfBirth),
			Weight:          req.Weight,
			MicrochipNumber: req.MicrochipNumber,
			Notes:           req.Notes,
			PatientType:     req.PatientType,
			BatchName:       req.BatchName,
			BatchSize:       req.BatchSize,
			BatchIdentifier: req.BatchIdentifier,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		includeDeleted, err := queryBool(r, "includeDeleted")
		if err != nil {
			writeError(w, err)
			return
		}
		items, err := svc.ListAnimals(r.Context(), actor, chi.URLParam(r, "orgID"), animals.ListFilter{
			ClientID:       strings.TrimSpace(r.URL.Query().Get("clientId")),
			IncludeDeleted: includeDeleted,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toAnimalResponse))
	}
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		a, err := svc.GetAnimal(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req updateAnimalRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		a, err := svc.UpdateAnimal(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "animalID"), animals.Patch{
			Name:            req.Name,
			Species:         req.Species,
			Breed:           req.Breed,
			Sex:             req.Sex,
			Color:           req.Color,
			DateOfBirth:     dateField(req.DateOfBirth),
			Weight:          req.Weight,
			MicrochipNumber: req.MicrochipNumber,
			Notes:           req.Notes,
			PatientType:     req.PatientType,
			BatchName:       req.BatchName,
			BatchSize:       req.BatchSize,
			BatchIdentifier: req.BatchIdentifier,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func markDeceasedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req markDeceasedRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		a, err := svc.MarkDeceased(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "animalID"), time.Time(*req.DateOfDeath), req.CauseOfDeath)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

// deleteAnimalHandler godoc
// @Summary Borrar animal (cascada)
// @Description Soft delete del animal y de todos sus tratamientos vivos. Requiere canDeleteAnimals salvo para el OWNER. Falla con PARENT_DELETED si el cliente ya está borrado.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param orgID path string true "ID de la organización"
// @Param animalID path string true "ID del animal"
// @Param payload body deleteRequest true "Motivo (mínimo 10 caracteres)"
// @Success 200 {object} deleteResponse
// @Failure 403 {object} errorBody "DELETE_PERMISSION_DENIED"
// @Failure 404 {object} errorBody "ANIMAL_NOT_FOUND"
// @Failure 409 {object} errorBody "ALREADY_DELETED"
// @Failure 422 {object} errorBody "PARENT_DELETED"
// @Router /orgs/{orgID}/animals/{animalID} [delete]
func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req deleteRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		res, err := svc.DeleteAnimal(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "animalID"), req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeleteResponse(softdelete.KindAnimal, res))
	}
}

func restoreAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		a, err := svc.RestoreAnimal(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Message: "Animal restored", DeletedOrRestoredID: a.ID})
	}
}

// ---- treatments ----

type createTreatmentRequest struct {
	AnimalID       string                    `json:"animalId" validate:"required"`
	VisitDate      time.Time                 `json:"visitDate" validate:"required"`
	ChiefComplaint string                    `json:"chiefComplaint"`
	History        string                    `json:"history"`
	Diagnosis      string                    `json:"diagnosis"`
	TreatmentGiven string                    `json:"treatmentGiven"`
	Prescriptions  string                    `json:"prescriptions"`
	Notes          string                    `json:"notes"`
	Vitals         vitalsDTO                 `json:"vitals"`
	Amount         *decimal.Decimal          `json:"amount"`
	PaymentStatus  *treatments.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=PENDING PARTIAL PAID WAIVED"`
	AmountPaid     *decimal.Decimal          `json:"amountPaid"`
	PaidAt         *time.Time                `json:"paidAt"`
	IsScheduled    bool                      `json:"isScheduled"`
	ScheduledFor   *time.Time                `json:"scheduledFor"`
	FollowUpDate   *time.Time                `json:"followUpDate"`
}

type vitalsPatch struct {
	TemperatureC    patch.Field[float64] `json:"temperatureC"`
	HeartRate       patch.Field[int]     `json:"heartRate"`
	RespiratoryRate patch.Field[int]     `json:"respiratoryRate"`
	WeightKg        patch.Field[float64] `json:"weightKg"`
}

// amendTreatmentRequest: lo ausente se hereda de la versión anterior.
type amendTreatmentRequest struct {
	ExpectedVersion *int                                  `json:"expectedVersion" validate:"omitempty,gt=0"`
	VisitDate       patch.Field[time.Time]                `json:"visitDate"`
	ChiefComplaint  patch.Field[string]                   `json:"chiefComplaint"`
	History         patch.Field[string]                   `json:"history"`
	Diagnosis       patch.Field[string]                   `json:"diagnosis"`
	TreatmentGiven  patch.Field[string]                   `json:"treatmentGiven"`
	Prescriptions   patch.Field[string]                   `json:"prescriptions"`
	Notes           patch.Field[string]                   `json:"notes"`
	Vitals          vitalsPatch                           `json:"vitals"`
	Amount          patch.Field[decimal.Decimal]          `json:"amount"`
	PaymentStatus   patch.Field[treatments.PaymentStatus] `json:"paymentStatus"`
	AmountPaid      patch.Field[decimal.Decimal]          `json:"amountPaid"`
	PaidAt          patch.Field[time.Time]                `json:"paidAt"`
	IsScheduled     patch.Field[bool]                     `json:"isScheduled"`
	ScheduledFor    patch.Field[time.Time]                `json:"scheduledFor"`
	FollowUpDate    patch.Field[time.Time]                `json:"followUpDate"`
}

func (req amendTreatmentRequest) changes() treatments.Changes {
	return treatments.Changes{
		VisitDate:       req.VisitDate,
		ChiefComplaint:  req.ChiefComplaint,
		History:         req.History,
		Diagnosis:       req.Diagnosis,
		TreatmentGiven:  req.TreatmentGiven,
		Prescriptions:   req.Prescriptions,
		Notes:           req.Notes,
		TemperatureC:    req.Vitals.TemperatureC,
		HeartRate:       req.Vitals.HeartRate,
		RespiratoryRate: req.Vitals.RespiratoryRate,
		WeightKg:        req.Vitals.WeightKg,
		Amount:          req.Amount,
		PaymentStatus:   req.PaymentStatus,
		AmountPaid:      req.AmountPaid,
		PaidAt:          req.PaidAt,
		IsScheduled:     req.IsScheduled,
		ScheduledFor:    req.ScheduledFor,
		FollowUpDate:    req.FollowUpDate,
		ExpectedVersion: req.ExpectedVersion,
	}
}

func createTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req createTreatmentRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		rec, err := svc.CreateTreatment(r.Context(), actor, chi.URLParam(r, "orgID"), treatments.Input{
			AnimalID:       req.AnimalID,
			VisitDate:      req.VisitDate,
			ChiefComplaint: req.ChiefComplaint,
			History:        req.History,
			Diagnosis:      req.Diagnosis,
			TreatmentGiven: req.TreatmentGiven,
			Prescriptions:  req.Prescriptions,
			Notes:          req.Notes,
			Vitals: treatments.Vitals{
				TemperatureC:    req.Vitals.TemperatureC,
				HeartRate:       req.Vitals.HeartRate,
				RespiratoryRate: req.Vitals.RespiratoryRate,
				WeightKg:        req.Vitals.WeightKg,
			},
			Amount:        req.Amount,
			PaymentStatus: req.PaymentStatus,
			AmountPaid:    req.AmountPaid,
			PaidAt:        req.PaidAt,
			IsScheduled:   req.IsScheduled,
			ScheduledFor:  req.ScheduledFor,
			FollowUpDate:  req.FollowUpDate,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTreatmentResponse(rec))
	}
}

// listTreatmentsHandler godoc
// @Summary Listar tratamientos
// @Description Por defecto solo la versión latest de cada cadena y solo registros vivos.
// @Tags treatments
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param orgID path string true "ID de la organización"
// @Param animalId query string false "Filtrar por animal"
// @Param includeDeleted query bool false "Incluir borrados"
// @Param allVersions query bool false "Incluir versiones anteriores"
// @Param scheduled query bool false "Solo agendados (true) o solo no agendados (false)"
// @Success 200 {array} treatmentResponse
// @Router /orgs/{orgID}/treatments [get]
func listTreatmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		includeDeleted, err := queryBool(r, "includeDeleted")
		if err != nil {
			writeError(w, err)
			return
		}
		allVersions, err := queryBool(r, "allVersions")
		if err != nil {
			writeError(w, err)
			return
		}
		scheduled, err := queryOptBool(r, "scheduled")
		if err != nil {
			writeError(w, err)
			return
		}
		items, err := svc.ListTreatments(r.Context(), actor, chi.URLParam(r, "orgID"), treatments.ListFilter{
			AnimalID:       strings.TrimSpace(r.URL.Query().Get("animalId")),
			OnlyLatest:     !allVersions,
			IncludeDeleted: includeDeleted,
			Scheduled:      scheduled,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toTreatmentResponse))
	}
}

func getTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		rec, err := svc.GetTreatment(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTreatmentResponse(rec))
	}
}

func treatmentHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		chain, err := svc.TreatmentHistory(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(chain, toTreatmentResponse))
	}
}

// amendTreatmentHandler godoc
// @Summary Enmendar tratamiento
// @Description Crea la versión siguiente de la cadena. Solo se enmienda la versión latest. Campo ausente = se hereda; null = se limpia. expectedVersion opcional para control optimista.
// @Tags treatments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param orgID path string true "ID de la organización"
// @Param recordID path string true "ID de la versión latest"
// @Param payload body amendTreatmentRequest true "Cambios parciales"
// @Success 201 {object} treatmentResponse
// @Failure 400 {object} errorBody "NO_CHANGES"
// @Failure 409 {object} errorBody "NOT_LATEST_VERSION / VERSION_CONFLICT"
// @Failure 422 {object} errorBody "TREATMENT_DELETED"
// @Router /orgs/{orgID}/treatments/{recordID}/amend [post]
func amendTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req amendTreatmentRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		rec, err := svc.AmendTreatment(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "recordID"), req.changes())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTreatmentResponse(rec))
	}
}

func deleteTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req deleteRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		res, err := svc.DeleteTreatment(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "recordID"), req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeleteResponse(softdelete.KindTreatment, res))
	}
}

func restoreTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		rec, err := svc.RestoreTreatment(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Message: "Treatment restored", DeletedOrRestoredID: rec.ID})
	}
}
