package entity

import "time"

// User usuario del sistema (farmacéutico o administrador).
type User struct {
	ID              string
	Username        string
	FullName        string
	Email           string
	Role            Role
	PasswordHash    string // bcrypt
	RecoveryPINHash string // bcrypt, vacío si no se configuró
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Actor identidad autenticada que ejecuta una operación (viene del JWT).
type Actor struct {
	UserID   string
	Username string
	Role     Role
}

// Can atajo para verificar capacidades del actor.
func (a Actor) Can(c Capability) bool { return a.Role.Can(c) }
