package dto

import "github.com/whrcat/cpplearn-api/internal/models"

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries mutable profile fields.
type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"omitempty,min=2,max=64"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

// AuthResponse bundles a user with a signed access token.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse builds a response DTO from a model.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
	}
}
