package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/pribylovaa/user-api/internal/errors"
	"github.com/pribylovaa/user-api/internal/models"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// UserService — операции сервисного слоя, нужные хендлерам.
type UserService interface {
	CreateUser(ctx context.Context, email, password, name string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User, name, password *string) (*models.User, error)
	IssueToken(ctx context.Context, email, password string) (string, error)
}

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Users UserService
}

func New(users UserService) *Handlers {
	return &Handlers{Users: users}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeJSON читает один JSON-объект из тела. Неизвестные поля игнорируются:
// клиенты шлют на /user/token тот же payload, что и на /user/create.
func decodeJSON(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrMalformedBody, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data", apierrors.ErrMalformedBody)
	}

	return nil
}
