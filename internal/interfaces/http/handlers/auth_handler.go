package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/interfaces/http/middleware"
	"problem-hunt.backend/internal/interfaces/http/response"
)

// authService is the auth usecase surface the handler depends on.
type authService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	IssueChallenge(ctx context.Context, chain, address string) (*entities.AuthChallenge, error)
	AuthenticateWallet(ctx context.Context, input *entities.WalletAuthInput) (*entities.WalletAuthResponse, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService authService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService authService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input entities.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Challenge handles GET /auth/challenge
func (h *AuthHandler) Challenge(c *gin.Context) {
	chain := c.Query("chain")
	address := c.Query("address")
	if chain == "" || address == "" {
		response.Error(c, domainerrors.BadRequest("chain and address query parameters are required"))
		return
	}

	challenge, err := h.authService.IssueChallenge(c.Request.Context(), chain, address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, challenge)
}

// WalletLogin handles POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var input entities.WalletAuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.authService.AuthenticateWallet(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}
