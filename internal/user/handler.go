package user

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/nexthealth/careplatform/internal/auth"
	"github.com/nexthealth/careplatform/internal/transport"
	"github.com/nexthealth/careplatform/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

func actorFromRequest(r *http.Request) (Actor, bool) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{
		UserID:          claims.Subject,
		TenantID:        claims.TenantID,
		IsSystemManager: claims.IsSystemManager,
	}, true
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	targetID := chi.URLParam(r, "userID")
	if appErr := validatePathID(targetID); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	// The body is optional; absence means password-only reset.
	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && err != io.EOF {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.ResetPassword(r.Context(), actor, targetID, dto.ResetTwoFactor)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ResetTwoFactor(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	targetID := chi.URLParam(r, "userID")
	if appErr := validatePathID(targetID); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.ResetTwoFactor(r.Context(), actor, targetID); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "two-factor authentication reset"})
}
