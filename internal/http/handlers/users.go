package handlers

import (
	"fmt"
	"net/http"

	apierrors "github.com/pribylovaa/user-api/internal/errors"
	"github.com/pribylovaa/user-api/internal/http/middleware"
	"github.com/pribylovaa/user-api/internal/service"
)

// CreateUser — POST /user/create: 201 {email, name}.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in CreateUserRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.Users.CreateUser(r.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userFromModel(user))
}

// CreateToken — POST /user/token: 200 {token}.
func (h *Handlers) CreateToken(w http.ResponseWriter, r *http.Request) {
	var in CreateTokenRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	token, err := h.Users.IssueToken(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Me — GET /user/me: текущий пользователь (под RequireToken).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, fmt.Errorf("handlers.Me: %w", service.ErrUnauthenticated))
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}

// UpdateMe — PATCH /user/me: частичное обновление имени/пароля.
func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, fmt.Errorf("handlers.UpdateMe: %w", service.ErrUnauthenticated))
		return
	}

	var in UpdateUserRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	updated, err := h.Users.UpdateUser(r.Context(), user, in.Name, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(updated))
}
