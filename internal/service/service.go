// service содержит бизнес-логику user-api:
// регистрацию пользователей, проверку учётных данных, выпуск и проверку
// токенов и работу с хранилищем через интерфейсы из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки валидации возвращаются как *ValidationError с картой
//     «поле -> сообщения» и оборачивают одну или несколько ошибок-сентинелов
//     ниже, поэтому errors.Is работает по каждой из них.
//   - Транспорт маппит *ValidationError в HTTP 400, ErrUnauthenticated в 401.
package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/pribylovaa/user-api/internal/cache"
	"github.com/pribylovaa/user-api/internal/config"
	"github.com/pribylovaa/user-api/internal/storage"
)

var (
	// ErrInvalidEmail — e-mail пустой или имеет некорректный формат.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyPassword — пароль пустой.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrWeakPassword — пароль короче auth.min_password_length.
	ErrWeakPassword = errors.New("password is too short")

	// ErrEmptyName — имя пустое.
	ErrEmptyName = errors.New("name is empty")

	// ErrNameTooLong — имя длиннее maxNameLength рун.
	ErrNameTooLong = errors.New("name is too long")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidCredentials — пара email/пароль неверна, пользователь не найден,
	// неактивен или одно из полей пустое. Причина наружу не раскрывается.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated — токен отсутствует, некорректен или не найден.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")

	// ErrTokenCollision — исчерпаны попытки сгенерировать уникальный ключ токена.
	ErrTokenCollision = errors.New("token key collision")
)

// Сообщения об ошибках полей.
const (
	msgBlank              = "This field may not be blank."
	msgInvalidEmail       = "Enter a valid email address."
	msgEmailTaken         = "user with this email already exists."
	msgInvalidCredentials = "Unable to authenticate with provided credentials."
)

// NonFieldErrors — ключ ошибок, не относящихся к конкретному полю.
const NonFieldErrors = "non_field_errors"

// maxNameLength — максимальная длина имени в рунах.
const maxNameLength = 255

// ValidationError — ошибка валидации входных данных с разбивкой по полям.
type ValidationError struct {
	// Fields — сообщения по полям запроса (email, password, name, non_field_errors).
	Fields map[string][]string
	errs   []error
}

// Error собирает сообщение из сентинелов в стабильном порядке.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		parts = append(parts, err.Error())
	}
	sort.Strings(parts)

	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap позволяет errors.Is/As находить любой из сентинелов.
func (e *ValidationError) Unwrap() []error { return e.errs }

// add регистрирует ошибку поля.
func (e *ValidationError) add(field, msg string, err error) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
	e.errs = append(e.errs, err)
}

// orNil возвращает nil, если ни одной ошибки не добавлено.
func (e *ValidationError) orNil() error {
	if len(e.errs) == 0 {
		return nil
	}

	return e
}

func invalidField(field, msg string, err error) *ValidationError {
	ve := &ValidationError{}
	ve.add(field, msg, err)
	return ve
}

func invalidCredentials() *ValidationError {
	return invalidField(NonFieldErrors, msgInvalidCredentials, ErrInvalidCredentials)
}

// Service описывает бизнес-логику user-api.
type Service struct {
	storage  storage.Storage
	cfg      config.AuthConfig
	tcache   cache.TokenCache // может быть nil, если кэш не сконфигурирован
	cacheTTL time.Duration
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: storage,
		cfg:     cfg,
	}
}

// SetTokenCache устанавливает кэш токенов (опционально).
func (s *Service) SetTokenCache(c cache.TokenCache, ttl time.Duration) {
	s.tcache = c
	s.cacheTTL = ttl
}
