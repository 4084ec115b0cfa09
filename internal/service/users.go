package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pribylovaa/user-api/internal/models"
	"github.com/pribylovaa/user-api/internal/pkg/log"
	"github.com/pribylovaa/user-api/internal/pkg/redact"
	"github.com/pribylovaa/user-api/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser регистрирует нового пользователя.
// Все поля проверяются до обращения к хранилищу; при ошибках возвращается
// *ValidationError со всеми нарушениями сразу.
func (s *Service) CreateUser(ctx context.Context, email, password, name string) (*models.User, error) {
	const op = "service.users.CreateUser"

	lg := log.From(ctx)

	ve := &ValidationError{}

	normEmail, msg, err := validateEmail(email)
	if err != nil {
		ve.add("email", msg, err)
	}

	if msg, err := s.validatePassword(password); err != nil {
		ve.add("password", msg, err)
	}

	normName, msg, err := validateName(name)
	if err != nil {
		ve.add("name", msg, err)
	}

	if err := ve.orNil(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.storage.UserExists(ctx, normEmail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if exists {
		return nil, fmt.Errorf("%s: %w", op, invalidField("email", msgEmailTaken, ErrEmailTaken))
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Name:         normName,
		PasswordHash: hashedPassword,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		// Гонка двух регистраций: уникальный индекс сработал после UserExists.
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, invalidField("email", msgEmailTaken, ErrEmailTaken))
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("user_created",
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(user.Email)),
	)

	return user, nil
}

// UserExists сообщает, зарегистрирован ли пользователь с таким e-mail.
func (s *Service) UserExists(ctx context.Context, email string) (bool, error) {
	const op = "service.users.UserExists"

	exists, err := s.storage.UserExists(ctx, normalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// UserByEmail возвращает пользователя по e-mail (без учёта регистра).
func (s *Service) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "service.users.UserByEmail"

	user, err := s.storage.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateUser меняет имя и/или пароль пользователя; nil-поля не трогаются.
// Пароль проверяется той же политикой, что и при регистрации.
func (s *Service) UpdateUser(ctx context.Context, user *models.User, name, password *string) (*models.User, error) {
	const op = "service.users.UpdateUser"

	ve := &ValidationError{}
	updated := *user

	if name != nil {
		normName, msg, err := validateName(*name)
		if err != nil {
			ve.add("name", msg, err)
		}
		updated.Name = normName
	}

	if password != nil {
		if msg, err := s.validatePassword(*password); err != nil {
			ve.add("password", msg, err)
		}
	}

	if err := ve.orNil(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if password != nil {
		hashedPassword, err := hashPassword(*password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		updated.PasswordHash = hashedPassword
	}

	updated.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateUser(ctx, &updated); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_updated",
		slog.String("user_id", updated.ID.String()),
		slog.Bool("password_changed", password != nil),
	)

	return &updated, nil
}

// hashPassword хэширует пароль с помощью bcrypt (соль входит в хэш).
func hashPassword(password string) (string, error) {
	const op = "service.users.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// validateEmail проверяет формат e-mail и возвращает нормализованный адрес.
// Форма "Name <addr>" не принимается: ожидается голый адрес.
func validateEmail(raw string) (string, string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", msgBlank, ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", msgInvalidEmail, ErrInvalidEmail
	}

	return strings.ToLower(email), "", nil
}

// validatePassword проверяет пароль по политике длины (в рунах).
func (s *Service) validatePassword(pw string) (string, error) {
	if pw == "" {
		return msgBlank, ErrEmptyPassword
	}

	if utf8.RuneCountInString(pw) < s.cfg.MinPasswordLength {
		return fmt.Sprintf("Ensure this field has at least %d characters.", s.cfg.MinPasswordLength), ErrWeakPassword
	}

	return "", nil
}

// validateName обрезает пробелы и проверяет длину имени.
func validateName(raw string) (string, string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", msgBlank, ErrEmptyName
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength), ErrNameTooLong
	}

	return name, "", nil
}
