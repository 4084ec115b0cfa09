package handlers

import "github.com/pribylovaa/user-api/internal/models"

// CreateUserRequest — тело POST /user/create.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// CreateTokenRequest — тело POST /user/token.
type CreateTokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest — тело PATCH /user/me; отсутствующие поля не меняются.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UserResponse — публичное представление пользователя, без пароля и хэша.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenResponse — ответ POST /user/token.
type TokenResponse struct {
	Token string `json:"token"`
}

func userFromModel(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}
