package dto

import (
	"time"

	"github.com/pribylovaa/school-auth/internal/models"
)

type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	DisplayName string `json:"display_name" validate:"omitempty,max=128"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        string `json:"role" validate:"required,max=16"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

func UserFromModel(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role.String(),
		CreatedAt:   u.CreatedAt.UTC(),
	}
}

func UsersFromModel(users []*models.User) ListUsersResponse {
	out := ListUsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, UserFromModel(u))
	}

	return out
}
