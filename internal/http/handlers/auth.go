package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/school-auth/internal/errors"
	"github.com/pribylovaa/school-auth/internal/http/dto"
	"github.com/pribylovaa/school-auth/internal/http/middleware"
	"github.com/pribylovaa/school-auth/internal/service"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in dto.LoginRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	tok, err := h.svc.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenFromModel(tok))
}

// Logout отзывает предъявленный токен как есть. Токен не проверяется:
// отзыв истёкшего, чужого или битого токена тоже успешен.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	raw := middleware.BearerToken(r)
	if raw == "" {
		apierrors.WriteError(w, r, service.ErrMissingToken)
		return
	}

	if err := h.svc.Revoke(r.Context(), raw); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LogoutResponse{Revoked: true})
}

// Me возвращает личность из токена и профиль пользователя.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		apierrors.WriteError(w, r, service.ErrMissingToken)
		return
	}

	user, err := h.svc.UserByID(r.Context(), id.SubjectID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	u := dto.UserFromModel(user)
	writeJSON(w, http.StatusOK, dto.MeResponse{
		Identity: dto.IdentityFromModel(id),
		User:     &u,
	})
}
