package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fms-support/internal/api/dto"
	"github.com/spec-kit/fms-support/internal/auth"
	"github.com/spec-kit/fms-support/internal/domain"
	"github.com/spec-kit/fms-support/internal/service"
	"github.com/spec-kit/fms-support/pkg/util"
)

// AuthHandler manages registration, login, and password endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.FullName == "" || req.Email == "" || len(req.Password) < 8 {
		return util.NewValidationError("full_name, email, and a password of at least 8 characters required", nil)
	}
	user, token, exp, err := h.service.Register(c.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": accountResponse(user),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	user, token, exp, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": accountResponse(user),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// RequestPasswordReset POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return util.NewValidationError("email required", nil)
	}
	if _, err := h.service.RequestPasswordReset(c.Context(), req.Email); err != nil {
		// Same response whether or not the email exists.
		if util.ToDomainError(err).HTTPStatus != http.StatusNotFound {
			return err
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "reset requested"}})
}

// ConfirmPasswordReset POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || len(req.NewPassword) < 8 {
		return util.NewValidationError("token and a password of at least 8 characters required", nil)
	}
	if err := h.service.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password updated"}})
}

// ChangePassword POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || len(req.NewPassword) < 8 {
		return util.NewValidationError("current password and a new password of at least 8 characters required", nil)
	}
	if err := h.service.ChangePassword(c.Context(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "password updated"}})
}

func accountResponse(user *domain.User) dto.AccountResponse {
	return dto.AccountResponse{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
		Status:   user.Status,
	}
}
