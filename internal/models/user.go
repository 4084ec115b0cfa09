// Package models содержит доменные сущности user-api.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись пользователя.
// Важно:
//   - Email — ключ идентичности, хранится нормализованным (trim + lower-case);
//   - PasswordHash — bcrypt-хэш, пароль в открытом виде нигде не хранится и наружу не отдаётся;
//   - IsActive — неактивный пользователь не может получить токен.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
