package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/user-api/internal/config"
	"github.com/pribylovaa/user-api/internal/models"
	"github.com/pribylovaa/user-api/internal/pkg/log"
	"github.com/pribylovaa/user-api/internal/pkg/redact"
	"github.com/pribylovaa/user-api/internal/storage"
)

// tokenKeyBytes — длина ключа непрозрачного токена в байтах (40 hex-символов).
const tokenKeyBytes = 20

// IssueToken проверяет пару email/пароль и выдаёт bearer-токен.
// Пустые поля, неизвестный e-mail, неверный пароль и неактивный пользователь
// дают одну и ту же ошибку ErrInvalidCredentials.
func (s *Service) IssueToken(ctx context.Context, email, password string) (string, error) {
	const op = "service.token.IssueToken"

	lg := log.From(ctx)

	normEmail := normalizeEmail(email)
	if normEmail == "" || password == "" {
		return "", fmt.Errorf("%s: %w", op, invalidCredentials())
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Info("token_denied", slog.String("email", redact.Email(normEmail)))
			return "", fmt.Errorf("%s: %w", op, invalidCredentials())
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive || !checkPassword(user.PasswordHash, password) {
		lg.Info("token_denied", slog.String("email", redact.Email(normEmail)))
		return "", fmt.Errorf("%s: %w", op, invalidCredentials())
	}

	var key string
	if s.cfg.TokenMode == config.TokenModeJWT {
		key, err = s.generateJWT(user.ID, time.Now().UTC())
	} else {
		key, err = s.issueOpaqueToken(ctx, user.ID)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("token_issued", slog.String("user_id", user.ID.String()))

	return key, nil
}

// Authenticate находит владельца bearer-токена.
// Любая неудача (пустой/битый/неизвестный токен, неактивный пользователь)
// возвращается как ErrUnauthenticated; ошибки хранилища пробрасываются как есть.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	const op = "service.token.Authenticate"

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	var (
		user *models.User
		err  error
	)

	if s.cfg.TokenMode == config.TokenModeJWT {
		user, err = s.userByJWT(ctx, token)
	} else {
		user, err = s.userByOpaqueToken(ctx, token)
	}

	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	return user, nil
}

// issueOpaqueToken возвращает существующий токен пользователя или создаёт новый.
func (s *Service) issueOpaqueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	const (
		op          = "service.token.issueOpaqueToken"
		maxAttempts = 5
	)

	lg := log.From(ctx)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		key, err := generateKey()
		if err != nil {
			lg.Error("token_rand_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return "", fmt.Errorf("%s: %w", op, err)
		}

		token, err := s.storage.GetOrCreateToken(ctx, &models.Token{
			Key:       key,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				// Редкая коллизия ключа с чужим токеном — пробуем заново.
				continue
			}

			lg.Error("save_token_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return "", fmt.Errorf("%s: %w", op, err)
		}

		s.cacheToken(ctx, token.Key, userID)

		return token.Key, nil
	}

	lg.Error("token_collision_exceeded", slog.String("op", op))

	return "", fmt.Errorf("%s: %w", op, ErrTokenCollision)
}

// userByOpaqueToken ищет владельца ключа сначала в кэше, затем в хранилище.
func (s *Service) userByOpaqueToken(ctx context.Context, key string) (*models.User, error) {
	const op = "service.token.userByOpaqueToken"

	lg := log.From(ctx)

	if s.tcache != nil {
		uid, ok, err := s.tcache.Get(ctx, key)
		switch {
		case err != nil:
			lg.Warn("token_cache_get_failed",
				slog.String("op", op),
				slog.String("token", redact.Token()),
				slog.String("err", err.Error()),
			)
		case ok:
			user, err := s.storage.UserByID(ctx, uid)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}

			return user, nil
		}
	}

	user, err := s.storage.UserByToken(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cacheToken(ctx, key, user.ID)

	return user, nil
}

// cacheToken кладёт ключ в кэш; ошибка кэша не прерывает запрос.
func (s *Service) cacheToken(ctx context.Context, key string, userID uuid.UUID) {
	if s.tcache == nil {
		return
	}

	if err := s.tcache.Set(ctx, key, userID, s.cacheTTL); err != nil {
		log.From(ctx).Warn("token_cache_set_failed",
			slog.String("user_id", userID.String()),
			slog.String("err", err.Error()),
		)
	}
}

// generateKey генерирует 40 hex-символов из crypto/rand.
func generateKey() (string, error) {
	b := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// generateJWT подписывает HS256-токен с subject = ID пользователя.
// Срок действия не задаётся.
func (s *Service) generateJWT(userID uuid.UUID, now time.Time) (string, error) {
	const op = "service.token.generateJWT"

	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Subject:  userID.String(),
		Issuer:   s.cfg.Issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// userByJWT проверяет подпись и issuer, затем загружает пользователя по subject.
func (s *Service) userByJWT(ctx context.Context, tokenStr string) (*models.User, error) {
	const op = "service.token.userByJWT"

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
