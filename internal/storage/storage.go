// Package storage задаёт контракт хранилища пользователей и токенов.
// Реализации: postgres (по умолчанию), mongo и memory (локальный запуск/тесты).
package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/storage.go -package=mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/user-api/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/токен).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/ключ токена).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UpdateUser обновляет имя, хэш пароля и updated_at пользователя.
	UpdateUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UserExists сообщает, занят ли email.
	UserExists(ctx context.Context, email string) (bool, error)
}

// TokenStorage выполняет операции над токенами.
type TokenStorage interface {
	// GetOrCreateToken возвращает уже выданный токен пользователя token.UserID,
	// а если его нет — сохраняет token. Коллизия ключа -> ErrAlreadyExists.
	GetOrCreateToken(ctx context.Context, token *models.Token) (*models.Token, error)
	// UserByToken находит владельца токена по ключу.
	UserByToken(ctx context.Context, key string) (*models.User, error)
}

// Storage задает контракт работы с хранилищем.
type Storage interface {
	UserStorage
	TokenStorage
	Close()
}
