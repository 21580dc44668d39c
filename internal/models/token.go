package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity — аутентифицированная личность, извлечённая из проверенного токена.
// Принадлежит одному запросу и живёт не дольше него.
type Identity struct {
	SubjectID   uuid.UUID
	DisplayName string
	Role        Role
}

// Token — выпущенный bearer-токен и его заявленные поля.
//
// Описание:
//   - Token — подписанный JWT, непрозрачный для клиента;
//   - ExpiresAt всегда равен IssuedAt + TTL из конфигурации (UTC).
type Token struct {
	Token     string
	Identity  Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}
