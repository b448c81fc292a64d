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

// walletService is the wallet usecase surface the handler depends on.
type walletService interface {
	LinkWallet(ctx context.Context, userID uuid.UUID, input *entities.LinkWalletInput) (*entities.Wallet, error)
	GetWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	SetPrimaryWallet(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error)
	DisconnectWallet(ctx context.Context, userID, walletID uuid.UUID) error
}

// WalletHandler handles wallet management endpoints
type WalletHandler struct {
	walletService walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService walletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// Link handles POST /wallets
func (h *WalletHandler) Link(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	var input entities.LinkWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	wallet, err := h.walletService.LinkWallet(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, wallet)
}

// List handles GET /wallets
func (h *WalletHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	wallets, err := h.walletService.GetWallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"wallets": wallets})
}

// SetPrimary handles PUT /wallets/:id/primary
func (h *WalletHandler) SetPrimary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid wallet id"))
		return
	}

	wallet, err := h.walletService.SetPrimaryWallet(c.Request.Context(), userID, walletID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, wallet)
}

// Disconnect handles DELETE /wallets/:id
func (h *WalletHandler) Disconnect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid wallet id"))
		return
	}

	if err := h.walletService.DisconnectWallet(c.Request.Context(), userID, walletID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
