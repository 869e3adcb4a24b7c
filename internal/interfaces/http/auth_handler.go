package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmacy-api/internal/application/auth"
	"github.com/jhoicas/pharmacy-api/internal/application/dto"
	"github.com/jhoicas/pharmacy-api/internal/domain/entity"
	"github.com/jhoicas/pharmacy-api/pkg/logger"
)

// AuthHandler maneja registro, login y administración de usuarios.
type AuthHandler struct {
	uc  *auth.AuthUseCase
	log *logger.Logger
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// Signup godoc
// @Summary      Registrar usuario
// @Description  El primer usuario es administrador. Un administrador autenticado puede elegir el rol.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SignupRequest  true  "username, password, full_name, email, role"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in dto.SignupRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	var creator *entity.Actor
	if actor, ok := GetActor(c); ok {
		creator = &actor
	}
	out, err := h.uc.Signup(c.UserContext(), creator, in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "username y password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// ResetPassword godoc
// @Summary      Recuperar contraseña con PIN
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ResetPasswordRequest  true  "username, pin, new_password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	if err := h.uc.ResetPassword(c.UserContext(), in); err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "password updated"})
}

// Me godoc
// @Summary      Usuario autenticado
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.Me(c.UserContext(), actor)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// SetPIN godoc
// @Summary      Configurar PIN de recuperación
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SetPINRequest  true  "pin de 4 a 8 dígitos"
// @Success      200   {object}  dto.MessageResponse
// @Router       /api/auth/me/pin [put]
func (h *AuthHandler) SetPIN(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.SetPINRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	if err := h.uc.SetPIN(c.UserContext(), actor, in.PIN); err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "recovery pin updated"})
}

// ListUsers godoc
// @Summary      Listar usuarios (admin)
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/auth/users [get]
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	out, err := h.uc.ListUsers(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// ChangeRole godoc
// @Summary      Cambiar rol (admin)
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      dto.ChangeRoleRequest  true  "admin | staff"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/auth/users/{id}/role [put]
func (h *AuthHandler) ChangeRole(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ChangeRoleRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.uc.ChangeRole(c.UserContext(), actor, c.Params("id"), in.Role)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}

// SetActive godoc
// @Summary      Habilitar o deshabilitar usuario (admin)
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "User ID"
// @Param        body  body      dto.SetActiveRequest  true  "active"
// @Success      200   {object}  dto.UserResponse
// @Router       /api/auth/users/{id}/active [put]
func (h *AuthHandler) SetActive(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.SetActiveRequest
	if err := bindAndValidate(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	out, err := h.uc.SetActive(c.UserContext(), actor, c.Params("id"), *in.Active)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(out)
}
