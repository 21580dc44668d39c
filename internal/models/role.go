package models

import (
	"errors"
	"strings"
)

// Role — роль пользователя школьной системы.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// ErrUnknownRole — строка не соответствует ни одной из ролей.
var ErrUnknownRole = errors.New("unknown role")

// Roles возвращает все допустимые роли.
func Roles() []Role {
	return []Role{RoleStudent, RoleStaff, RoleAdmin}
}

// Valid сообщает, является ли роль одной из перечисленных.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole разбирает роль без учёта регистра и пробелов по краям.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRole
	}

	return r, nil
}
