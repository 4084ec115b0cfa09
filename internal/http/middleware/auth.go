package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/user-api/internal/errors"
	"github.com/pribylovaa/user-api/internal/models"
	"github.com/pribylovaa/user-api/internal/service"
)

// Authenticator разрешает bearer-токен во владельца.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type userKey struct{}

// RequireToken пропускает запрос дальше только с валидным токеном
// в заголовке Authorization ("Token <key>" или "Bearer <key>")
// и кладёт пользователя в контекст (см. UserFrom). Иначе — 401.
func RequireToken(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.RequireToken"

			token, ok := tokenFromHeader(r.Header.Get("Authorization"))
			if !ok {
				apierrors.WriteError(w, r, fmt.Errorf("%s: %w", op, service.ErrUnauthenticated))
				return
			}

			user, err := a.Authenticate(r.Context(), token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom достаёт аутентифицированного пользователя из контекста.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// tokenFromHeader разбирает "Token <key>" / "Bearer <key>" (схема без учёта регистра).
func tokenFromHeader(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok {
		return "", false
	}

	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}

	return token, true
}
