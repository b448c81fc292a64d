package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/interfaces/http/middleware"
	"problem-hunt.backend/internal/interfaces/http/response"
	"problem-hunt.backend/pkg/utils"
)

// orderService is the order usecase surface the handler depends on.
type orderService interface {
	CreateOrder(ctx context.Context, payerID uuid.UUID, input *entities.CreateOrderInput) (*entities.Order, error)
	GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*entities.Order, error)
	ListOrders(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*entities.Order, int64, error)
}

// paymentVerifier is the verification usecase surface the handler depends on.
type paymentVerifier interface {
	VerifyPayment(ctx context.Context, callerID, orderID uuid.UUID, txHash string) (*entities.VerifyPaymentResult, error)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService orderService
	verifier     paymentVerifier
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService orderService, verifier paymentVerifier) *OrderHandler {
	return &OrderHandler{orderService: orderService, verifier: verifier}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	var input entities.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, order)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid order id"))
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	params := utils.GetPaginationParams(page, limit)

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), userID, params.Limit, params.CalculateOffset())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": utils.CalculateMeta(total, params.Page, params.Limit),
	})
}

// Verify handles POST /orders/:id/verify
func (h *OrderHandler) Verify(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("not authenticated"))
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid order id"))
		return
	}

	var input entities.VerifyPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.verifier.VerifyPayment(c.Request.Context(), userID, orderID, input.TxHash)
	if err != nil {
		response.Error(c, err)
		return
	}
	// retryable conditions come back as success=false with HTTP 200
	response.Success(c, http.StatusOK, result)
}
