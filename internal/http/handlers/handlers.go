package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/school-auth/internal/errors"
	"github.com/pribylovaa/school-auth/internal/models"
)

// maxBodyBytes — предел размера тела запроса.
const maxBodyBytes = 1 << 20

// AuthService — операции сервиса, нужные хендлерам; реализуется *service.Service.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.Token, error)
	Revoke(ctx context.Context, rawToken string) error
	RegisterUser(ctx context.Context, username, displayName, password string, role models.Role) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, role models.Role) ([]*models.User, error)
}

// Handlers агрегирует зависимости REST-хендлеров.
type Handlers struct {
	svc      AuthService
	validate *validator.Validate
}

func New(svc AuthService) *Handlers {
	return &Handlers{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля,
// затем прогоняем validate-теги DTO.
func (h *Handlers) decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err)
	}

	if err := h.validate.Struct(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err)
	}

	return nil
}
