// Package memory — потокобезопасная in-memory реализация storage.Storage
// для локального запуска (storage.driver=memory) и HTTP-тестов.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pribylovaa/user-api/internal/models"
	"github.com/pribylovaa/user-api/internal/storage"
)

type Storage struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]models.User
	byEmail     map[string]uuid.UUID // lower(email) -> id
	tokens      map[string]models.Token
	tokenByUser map[uuid.UUID]string
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		users:       make(map[uuid.UUID]models.User),
		byEmail:     make(map[string]uuid.UUID),
		tokens:      make(map[string]models.Token),
		tokenByUser: make(map[uuid.UUID]string),
	}
}

func emailKey(email string) string { return strings.ToLower(email) }

// SaveUser создает нового пользователя.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.memory.SaveUser"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}
	if _, ok := s.byEmail[emailKey(user.Email)]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	s.users[user.ID] = *user
	s.byEmail[emailKey(user.Email)] = user.ID

	return nil
}

// UpdateUser обновляет имя, хэш пароля и updated_at.
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	const op = "storage.memory.UpdateUser"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	cur.Name = user.Name
	cur.PasswordHash = user.PasswordHash
	cur.UpdatedAt = user.UpdatedAt
	s.users[user.ID] = cur

	return nil
}

// UserByEmail находит пользователя по email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.memory.UserByEmail"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	u := s.users[id]
	return &u, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.memory.UserByID"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return &u, nil
}

// UserExists сообщает, занят ли email.
func (s *Storage) UserExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.memory.UserExists"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byEmail[emailKey(email)]
	return ok, nil
}

// GetOrCreateToken возвращает токен пользователя или сохраняет новый.
func (s *Storage) GetOrCreateToken(ctx context.Context, token *models.Token) (*models.Token, error) {
	const op = "storage.memory.GetOrCreateToken"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := s.tokenByUser[token.UserID]; ok {
		t := s.tokens[key]
		return &t, nil
	}

	if _, ok := s.tokens[token.Key]; ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	s.tokens[token.Key] = *token
	s.tokenByUser[token.UserID] = token.Key

	t := *token
	return &t, nil
}

// UserByToken находит владельца токена.
func (s *Storage) UserByToken(ctx context.Context, key string) (*models.User, error) {
	const op = "storage.memory.UserByToken"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	u, ok := s.users[t.UserID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return &u, nil
}

// Close — no-op.
func (s *Storage) Close() {}

var _ storage.Storage = (*Storage)(nil)
