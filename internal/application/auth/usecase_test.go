package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pharmacy-api/internal/application/auth"
	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/domain"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/internal/infrastructure/memory"
	"github.com/jhoicas/pharmacy-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewStore().Users(), auth.JWTConfig{
		Secret: secret, ExpMinutes: 5, Issuer: "test", BcryptCost: bcrypt.MinCost,
	})
}

func TestSignup_PrimerUsuarioEsAdmin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	first, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "root", Password: "password1", Role: "staff"})
	require.NoError(t, err)
	assert.Equal(t, "admin", first.Role)

	second, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "ann", Password: "password1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "staff", second.Role, "un registro público no puede elegir admin")
}

func TestSignup_AdminPuedeCrearAdmin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	root, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "root", Password: "password1"})
	require.NoError(t, err)

	admin := entity.Actor{UserID: root.ID, Username: root.Username, Role: entity.RoleAdmin}
	u, err := uc.Signup(ctx, &admin, dto.SignupRequest{Username: "boss", Password: "password1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
}

func TestSignup_UsuarioDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "ann", Password: "password1"})
	require.NoError(t, err)

	_, err = uc.Signup(ctx, nil, dto.SignupRequest{Username: "ANN", Password: "password1"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestLogin_TokenConIdentidad(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	u, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "ann", Password: "password1"})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Username: "ann", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", out.TokenType)

	id, err := jwt.Parse(secret, out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "admin", id.Role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "ann", Password: "password1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ann", Password: "wrong-pass"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ghost", Password: "password1"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestSetActive_UsuarioDeshabilitadoNoInicia(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	root, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "root", Password: "password1"})
	require.NoError(t, err)
	ann, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "ann", Password: "password1"})
	require.NoError(t, err)
	admin := entity.Actor{UserID: root.ID, Role: entity.RoleAdmin}

	_, err = uc.SetActive(ctx, admin, root.ID, false)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	out, err := uc.SetActive(ctx, admin, ann.ID, false)
	require.NoError(t, err)
	assert.False(t, out.Active)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ann", Password: "password1"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	root, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "root", Password: "password1"})
	require.NoError(t, err)
	ann, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "ann", Password: "password1"})
	require.NoError(t, err)
	admin := entity.Actor{UserID: root.ID, Role: entity.RoleAdmin}

	out, err := uc.ChangeRole(ctx, admin, ann.ID, "ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "admin", out.Role)

	_, err = uc.ChangeRole(ctx, admin, ann.ID, "owner")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.ChangeRole(ctx, admin, "missing", "staff")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResetPassword_ConPIN(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	u, err := uc.Signup(ctx, nil, dto.SignupRequest{Username: "ann", Password: "password1"})
	require.NoError(t, err)
	actor := entity.Actor{UserID: u.ID, Username: u.Username, Role: entity.RoleAdmin}

	err = uc.ResetPassword(ctx, dto.ResetPasswordRequest{Username: "ann", PIN: "1234", NewPassword: "password2"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "sin PIN configurado")

	assert.True(t, errors.Is(uc.SetPIN(ctx, actor, "12a4"), domain.ErrInvalidInput))
	require.NoError(t, uc.SetPIN(ctx, actor, "1234"))

	err = uc.ResetPassword(ctx, dto.ResetPasswordRequest{Username: "ann", PIN: "9999", NewPassword: "password2"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	require.NoError(t, uc.ResetPassword(ctx, dto.ResetPasswordRequest{Username: "ann", PIN: "1234", NewPassword: "password2"}))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ann", Password: "password2"})
	require.NoError(t, err)

	me, err := uc.Me(ctx, actor)
	require.NoError(t, err)
	assert.True(t, me.HasPIN)
}
