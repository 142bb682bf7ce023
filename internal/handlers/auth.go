package handlers

import (
	"errors"

	"kopa/internal/services/auth"
	"kopa/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.Email == "" || input.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	user, wallet, err := h.authService.Register(c.Context(), auth.RegisterRequest{
		Email:    input.Email,
		Phone:    input.Phone,
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, auth.ErrWeakPassword):
			return response.BadRequest(c, err.Error())
		default:
			return response.ServerError(c, "Registration failed")
		}
	}

	return response.Success(c, "Registered", fiber.Map{
		"user_id":       user.ID,
		"wallet_id":     wallet.ID,
		"wallet_number": wallet.WalletNumber,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	user, token, err := h.authService.Login(c.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return response.ServerError(c, "Login failed")
	}

	return response.Success(c, "Logged in", fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}
