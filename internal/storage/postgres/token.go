package postgres

import (
	"context"
	"fmt"

	"github.com/pribylovaa/user-api/internal/models"
	"github.com/pribylovaa/user-api/internal/storage"
)

// GetOrCreateToken атомарно возвращает токен пользователя или сохраняет новый.
// ON CONFLICT (user_id) с no-op обновлением нужен, чтобы RETURNING вернул
// существующую строку; конфликт по первичному ключу (key) остаётся ошибкой.
func (s *Storage) GetOrCreateToken(ctx context.Context, token *models.Token) (*models.Token, error) {
	const op = "storage.postgres.GetOrCreateToken"

	query := `
		INSERT INTO auth_tokens(key, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING key, user_id, created_at
	`

	var out models.Token
	err := s.db.QueryRow(ctx, query, token.Key, token.UserID, token.CreatedAt).Scan(
		&out.Key,
		&out.UserID,
		&out.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// UserByToken находит владельца токена.
func (s *Storage) UserByToken(ctx context.Context, key string) (*models.User, error) {
	const op = "storage.postgres.UserByToken"

	query := `
		SELECT u.id, u.email, u.name, u.password_hash, u.is_active, u.created_at, u.updated_at
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.key = $1
	`

	user, err := scanUser(s.db.QueryRow(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
