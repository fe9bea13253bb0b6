package practice

import (
	"net/http"

	"vet-practice-api/internal/domain/activity"
	"vet-practice-api/internal/domain/orgs"
	"vet-practice-api/internal/domain/vets"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta la API de la práctica. Todo lo que cuelga de
// /orgs/{orgID} pasa por el orquestador.
func RegisterRoutes(r chi.Router, svc *Service) {
	// Identidad
	r.Get("/me", meHandler(svc))
	r.Get("/me/organizations", myOrganizationsHandler(svc))
	r.Get("/me/invitations", myInvitationsHandler(svc))
	r.Post("/invitations/{invitationID}/accept", acceptInvitationHandler(svc))

	r.Post("/orgs", createOrganizationHandler(svc))
	r.Route("/orgs/{orgID}", func(or chi.Router) {
		or.Get("/", getOrganizationHandler(svc))

		or.Get("/members", listMembersHandler(svc))
		or.Patch("/members/{membershipID}/role", updateMemberRoleHandler(svc))
		or.Patch("/members/{membershipID}/permissions", updateMemberPermissionsHandler(svc))
		or.Delete("/members/{membershipID}", removeMemberHandler(svc))
		or.Post("/leave", leaveOrganizationHandler(svc))

		or.Post("/invitations", inviteMemberHandler(svc))
		or.Get("/invitations", listInvitationsHandler(svc))
		or.Delete("/invitations/{invitationID}", revokeInvitationHandler(svc))

		registerClientRoutes(or, svc)
		registerAnimalRoutes(or, svc)
		registerTreatmentRoutes(or, svc)

		or.Get("/activity", listActivityHandler(svc))
	})

	// Plataforma (master admin)
	r.Route("/admin", func(ar chi.Router) {
		ar.Get("/vets", listVetsHandler(svc))
		ar.Patch("/vets/{vetID}/status", updateVetStatusHandler(svc))
		ar.Get("/audit", listAuditHandler(svc))
	})
}

type createOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type createOrganizationResponse struct {
	Organization organizationResponse `json:"organization"`
	Membership   membershipResponse   `json:"membership"`
}

type updateRoleRequest struct {
	Role orgs.Role `json:"role" validate:"required"`
}

type inviteRequest struct {
	Email string    `json:"email" validate:"required,email"`
	Role  orgs.Role `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}

type updateVetStatusRequest struct {
	Status vets.ApprovalStatus `json:"status" validate:"required,oneof=APPROVED REJECTED SUSPENDED PENDING_APPROVAL"`
}

// meHandler godoc
// @Summary Identidad actual
// @Description Devuelve el veterinario asociado al token. La primera llamada lo registra en estado PENDING_APPROVAL. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags identity
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} vetResponse
// @Failure 401 {object} errorBody
// @Router /me [get]
func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(actor))
	}
}

func myOrganizationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		items, err := svc.ListMyOrganizations(r.Context(), actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toOrganizationResponse))
	}
}

func myInvitationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		items, err := svc.ListMyInvitations(r.Context(), actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toInvitationResponse))
	}
}

// acceptInvitationHandler godoc
// @Summary Aceptar invitación
// @Description Acepta una invitación pendiente dirigida al email del veterinario actual. Crea o reactiva la membresía sin permisos de borrado.
// @Tags organizations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param invitationID path string true "ID de la invitación"
// @Success 200 {object} membershipResponse
// @Failure 403 {object} errorBody "INVITATION_EMAIL_MISMATCH / VET_NOT_APPROVED"
// @Failure 404 {object} errorBody "INVITATION_NOT_FOUND"
// @Failure 422 {object} errorBody "INVITATION_EXPIRED / INVITATION_NOT_PENDING"
// @Router /invitations/{invitationID}/accept [post]
func acceptInvitationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		m, err := svc.AcceptInvitation(r.Context(), actor, chi.URLParam(r, "invitationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMembershipResponse(m))
	}
}

// createOrganizationHandler godoc
// @Summary Crear organización
// @Description Crea la organización con un slug único y deja al creador como OWNER con todos los permisos.
// @Tags organizations
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createOrganizationRequest true "Nombre de la organización"
// @Success 201 {object} createOrganizationResponse
// @Failure 400 {object} errorBody
// @Failure 403 {object} errorBody "VET_NOT_APPROVED"
// @Failure 409 {object} errorBody "SLUG_CONFLICT"
// @Router /orgs [post]
func createOrganizationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req createOrganizationRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		org, m, err := svc.CreateOrganization(r.Context(), actor, req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, createOrganizationResponse{
			Organization: toOrganizationResponse(org),
			Membership:   toMembershipResponse(m),
		})
	}
}

func getOrganizationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		org, err := svc.GetOrganization(r.Context(), actor, chi.URLParam(r, "orgID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrganizationResponse(org))
	}
}

func listMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		items, err := svc.ListMembers(r.Context(), actor, chi.URLParam(r, "orgID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toMembershipResponse))
	}
}

// updateMemberRoleHandler godoc
// @Summary Cambiar rol de un miembro
// @Description OWNER o ADMIN. El rol del OWNER no se cambia y nadie puede ser promovido a OWNER.
// @Tags organizations
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param orgID path string true "ID de la organización"
// @Param membershipID path string true "ID de la membresía"
// @Param payload body updateRoleRequest true "Nuevo rol"
// @Success 200 {object} membershipResponse
// @Failure 403 {object} errorBody "CANNOT_CHANGE_OWNER_ROLE / CANNOT_ASSIGN_OWNER / INSUFFICIENT_ROLE"
// @Router /orgs/{orgID}/members/{membershipID}/role [patch]
func updateMemberRoleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req updateRoleRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		m, err := svc.UpdateMemberRole(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "membershipID"), req.Role)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMembershipResponse(m))
	}
}

func updateMemberPermissionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req orgs.CapabilityPatch
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		m, err := svc.UpdateMemberPermissions(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "membershipID"), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMembershipResponse(m))
	}
}

func removeMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		m, err := svc.RemoveMember(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "membershipID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMembershipResponse(m))
	}
}

func leaveOrganizationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		if err := svc.LeaveOrganization(r.Context(), actor, chi.URLParam(r, "orgID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// inviteMemberHandler godoc
// @Summary Invitar a un veterinario
// @Description OWNER o ADMIN. La invitación vence a los 7 días.
// @Tags organizations
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param orgID path string true "ID de la organización"
// @Param payload body inviteRequest true "Email y rol (ADMIN o MEMBER)"
// @Success 201 {object} invitationResponse
// @Failure 409 {object} errorBody "ALREADY_MEMBER / INVITATION_PENDING"
// @Router /orgs/{orgID}/invitations [post]
func inviteMemberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req inviteRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		inv, err := svc.InviteMember(r.Context(), actor, chi.URLParam(r, "orgID"), req.Email, req.Role)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toInvitationResponse(inv))
	}
}

func listInvitationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		items, err := svc.ListInvitations(r.Context(), actor, chi.URLParam(r, "orgID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toInvitationResponse))
	}
}

func revokeInvitationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		inv, err := svc.RevokeInvitation(r.Context(), actor, chi.URLParam(r, "orgID"), chi.URLParam(r, "invitationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvitationResponse(inv))
	}
}

// activityFilter lee entityType, entityId, vetId, since (RFC3339) y limit.
func activityFilter(r *http.Request) (activity.ListFilter, error) {
	q := r.URL.Query()
	f := activity.ListFilter{
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		VetID:      q.Get("vetId"),
	}
	var err error
	if f.Since, err = queryTime(r, "since"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	return f, nil
}

// listActivityHandler godoc
// @Summary Log de actividad de la organización
// @Description Requiere canViewActivityLog (el OWNER siempre puede). Ordenado del más nuevo al más viejo.
// @Tags activity
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param orgID path string true "ID de la organización"
// @Param entityType query string false "client, animal, treatment, membership, invitation, organization"
// @Param entityId query string false "ID de la entidad"
// @Param vetId query string false "Autor"
// @Param since query string false "RFC3339"
// @Param limit query int false "1-500, por defecto 50"
// @Success 200 {array} activityResponse
// @Failure 403 {object} errorBody "ACTIVITY_LOG_ACCESS_DENIED"
// @Router /orgs/{orgID}/activity [get]
func listActivityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		f, err := activityFilter(r)
		if err != nil {
			writeError(w, err)
			return
		}
		items, err := svc.ListActivity(r.Context(), actor, chi.URLParam(r, "orgID"), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toActivityResponse))
	}
}

func listAuditHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		f, err := activityFilter(r)
		if err != nil {
			writeError(w, err)
			return
		}
		items, err := svc.ListAudit(r.Context(), actor, f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toAuditResponse))
	}
}

func listVetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		items, err := svc.ListVets(r.Context(), actor, vets.ApprovalStatus(r.URL.Query().Get("status")))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mapSlice(items, toVetResponse))
	}
}

// updateVetStatusHandler godoc
// @Summary Cambiar estado de aprobación de un veterinario
// @Description Solo master admin. PENDING_APPROVAL pasa a APPROVED o REJECTED; APPROVED y SUSPENDED se alternan.
// @Tags admin
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param vetID path string true "ID del veterinario"
// @Param payload body updateVetStatusRequest true "Nuevo estado"
// @Success 200 {object} vetResponse
// @Failure 403 {object} errorBody "MASTER_ADMIN_REQUIRED"
// @Failure 422 {object} errorBody "INVALID_STATUS_TRANSITION"
// @Router /admin/vets/{vetID}/status [patch]
func updateVetStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentVet(w, r, svc)
		if !ok {
			return
		}
		var req updateVetStatusRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		v, err := svc.UpdateVetStatus(r.Context(), actor, chi.URLParam(r, "vetID"), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}
