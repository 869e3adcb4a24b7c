package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/domain/repository"
	"github.com/jhoicas/pharmacy-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
	// BcryptCost costo de bcrypt; cero usa bcrypt.DefaultCost.
	BcryptCost int
}

// AuthUseCase casos de uso de autenticación y administración de usuarios.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	if jwtCfg.BcryptCost == 0 {
		jwtCfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Signup crea un usuario. El primer usuario del sistema es administrador; después el rol pedido
// solo se respeta si creator puede administrar usuarios, si no queda como staff.
func (uc *AuthUseCase) Signup(ctx context.Context, creator *entity.Actor, in dto.SignupRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(in.Password) < 8 {
		return nil, fmt.Errorf("username and a password of at least 8 characters are required: %w", domain.ErrInvalidInput)
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("username %q already exists: %w", username, domain.ErrConflict)
	}

	role := entity.RoleStaff
	count, err := uc.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case count == 0:
		role = entity.RoleAdmin
	case creator != nil && creator.Can(entity.CapManageUsers) && in.Role != "":
		if role, err = entity.ParseRole(in.Role); err != nil {
			return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.jwtCfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.TrimSpace(in.Email),
		Role:         role,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica usuario/password, genera JWT y retorna token + usuario.
// Usuario inexistente y password incorrecto devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !user.Active {
		return nil, fmt.Errorf("account is disabled: %w", domain.ErrForbidden)
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        *toUserResponse(user),
	}, nil
}

// Me devuelve el usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
	user, err := uc.mustGet(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ListUsers lista todos los usuarios.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *toUserResponse(u))
	}
	return out, nil
}

// ChangeRole cambia el rol de otro usuario. Un administrador no puede cambiarse el rol a sí mismo.
func (uc *AuthUseCase) ChangeRole(ctx context.Context, actor entity.Actor, userID, role string) (*dto.UserResponse, error) {
	r, err := entity.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	if userID == actor.UserID {
		return nil, fmt.Errorf("cannot change your own role: %w", domain.ErrInvalidState)
	}
	if _, err := uc.mustGet(ctx, userID); err != nil {
		return nil, err
	}
	if err := uc.userRepo.UpdateRole(ctx, userID, r); err != nil {
		return nil, err
	}
	return uc.Me(ctx, entity.Actor{UserID: userID})
}

// SetActive habilita o deshabilita otro usuario.
func (uc *AuthUseCase) SetActive(ctx context.Context, actor entity.Actor, userID string, active bool) (*dto.UserResponse, error) {
	if userID == actor.UserID && !active {
		return nil, fmt.Errorf("cannot disable your own account: %w", domain.ErrInvalidState)
	}
	if _, err := uc.mustGet(ctx, userID); err != nil {
		return nil, err
	}
	if err := uc.userRepo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	return uc.Me(ctx, entity.Actor{UserID: userID})
}

// SetPIN guarda (hasheado) el PIN de recuperación del usuario autenticado.
func (uc *AuthUseCase) SetPIN(ctx context.Context, actor entity.Actor, pin string) error {
	if !validPIN(pin) {
		return fmt.Errorf("pin must be 4 to 8 digits: %w", domain.ErrInvalidInput)
	}
	if _, err := uc.mustGet(ctx, actor.UserID); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), uc.jwtCfg.BcryptCost)
	if err != nil {
		return err
	}
	return uc.userRepo.UpdateRecoveryPIN(ctx, actor.UserID, string(hash))
}

// ResetPassword reemplaza la contraseña verificando el PIN de recuperación.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) error {
	if len(in.NewPassword) < 8 {
		return fmt.Errorf("password must have at least 8 characters: %w", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return err
	}
	if user == nil || user.RecoveryPINHash == "" {
		return fmt.Errorf("invalid username or pin: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.RecoveryPINHash), []byte(in.PIN)); err != nil {
		return fmt.Errorf("invalid username or pin: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), uc.jwtCfg.BcryptCost)
	if err != nil {
		return err
	}
	return uc.userRepo.UpdatePasswordHash(ctx, user.ID, string(hash))
}

func (uc *AuthUseCase) mustGet(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

func validPIN(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role.String(),
		Active:    u.Active,
		HasPIN:    u.RecoveryPINHash != "",
		CreatedAt: u.CreatedAt,
	}
}
