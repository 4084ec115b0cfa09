package models

import (
	"time"

	"github.com/google/uuid"
)

// Token — непрозрачный bearer-токен, привязанный ровно к одному пользователю.
type Token struct {
	Key       string
	UserID    uuid.UUID
	CreatedAt time.Time
}
