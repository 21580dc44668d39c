// Входные/выходные модели REST API и конвертеры из доменных моделей.
package dto

import (
	"time"

	"github.com/pribylovaa/school-auth/internal/models"
)

// LoginRequest без validate-тегов: пустые и слишком длинные значения
// отвергает сервис как invalid_credentials, а не транспорт как invalid_argument.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type IdentityResponse struct {
	SubjectID   string `json:"subject_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type TokenResponse struct {
	Token     string           `json:"token"`
	TokenType string           `json:"token_type"`
	ExpiresAt time.Time        `json:"expires_at"`
	ExpiresIn int64            `json:"expires_in"` // секунды
	Identity  IdentityResponse `json:"identity"`
}

type LogoutResponse struct {
	Revoked bool `json:"revoked"`
}

type MeResponse struct {
	Identity IdentityResponse `json:"identity"`
	User     *UserResponse    `json:"user,omitempty"`
}

func IdentityFromModel(id *models.Identity) IdentityResponse {
	if id == nil {
		return IdentityResponse{}
	}

	return IdentityResponse{
		SubjectID:   id.SubjectID.String(),
		DisplayName: id.DisplayName,
		Role:        id.Role.String(),
	}
}

func TokenFromModel(t *models.Token) TokenResponse {
	return TokenResponse{
		Token:     t.Token,
		TokenType: "Bearer",
		ExpiresAt: t.ExpiresAt.UTC(),
		ExpiresIn: int64(t.ExpiresAt.Sub(t.IssuedAt) / time.Second),
		Identity:  IdentityFromModel(&t.Identity),
	}
}
