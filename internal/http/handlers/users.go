package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/school-auth/internal/errors"
	"github.com/pribylovaa/school-auth/internal/http/dto"
	"github.com/pribylovaa/school-auth/internal/models"
)

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in dto.CreateUserRequest
	if err := h.decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	role, err := models.ParseRole(in.Role)
	if err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err))
		return
	}

	user, err := h.svc.RegisterUser(r.Context(), in.Username, in.DisplayName, in.Password, role)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Location", "/users/"+user.ID.String())
	writeJSON(w, http.StatusCreated, dto.UserFromModel(user))
}

// ListUsers поддерживает фильтр ?role=student|staff|admin.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	var role models.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed, err := models.ParseRole(raw)
		if err != nil {
			apierrors.WriteError(w, r, fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err))
			return
		}
		role = parsed
	}

	users, err := h.svc.ListUsers(r.Context(), role)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UsersFromModel(users))
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err))
		return
	}

	user, err := h.svc.UserByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromModel(user))
}
