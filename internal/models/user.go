package models

import (
	"time"

	"github.com/google/uuid"
)

// User - учётная запись в системе. Пароль хранится только в виде bcrypt-хэша.
type User struct {
	ID           uuid.UUID
	Username     string
	DisplayName  string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity возвращает идентичность пользователя для выпуска токена.
func (u *User) Identity() Identity {
	return Identity{
		SubjectID:   u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}
