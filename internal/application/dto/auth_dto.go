package dto

import "time"

// SignupRequest entrada para registrar un usuario. Role solo se respeta si lo crea un administrador
// o si es el primer usuario del sistema.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	FullName string `json:"full_name" validate:"omitempty,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token de acceso y datos del usuario.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// UserResponse salida de un usuario (sin hashes).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	HasPIN    bool      `json:"has_recovery_pin"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeRoleRequest body para PUT /api/auth/users/:id/role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin staff"`
}

// SetActiveRequest body para PUT /api/auth/users/:id/active.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetPINRequest body para PUT /api/auth/me/pin.
type SetPINRequest struct {
	PIN string `json:"pin" validate:"required,numeric,min=4,max=8"`
}

// ResetPasswordRequest recuperación de contraseña con el PIN.
type ResetPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	PIN         string `json:"pin" validate:"required,numeric,min=4,max=8"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}
