package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"problem-hunt.backend/internal/domain/entities"
	"problem-hunt.backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser injects an authenticated user the way AuthMiddleware would.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// stubAuthService implements authService with function fields.
type stubAuthService struct {
	registerFn     func(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error)
	loginFn        func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	refreshFn      func(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
	getUserFn      func(ctx context.Context, id uuid.UUID) (*entities.User, error)
	challengeFn    func(ctx context.Context, chain, address string) (*entities.AuthChallenge, error)
	walletLoginFn  func(ctx context.Context, input *entities.WalletAuthInput) (*entities.WalletAuthResponse, error)
}

func (s *stubAuthService) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.loginFn(ctx, input)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return s.getUserFn(ctx, id)
}

func (s *stubAuthService) IssueChallenge(ctx context.Context, chain, address string) (*entities.AuthChallenge, error) {
	return s.challengeFn(ctx, chain, address)
}

func (s *stubAuthService) AuthenticateWallet(ctx context.Context, input *entities.WalletAuthInput) (*entities.WalletAuthResponse, error) {
	return s.walletLoginFn(ctx, input)
}

// stubWalletService implements walletService with function fields.
type stubWalletService struct {
	linkFn       func(ctx context.Context, userID uuid.UUID, input *entities.LinkWalletInput) (*entities.Wallet, error)
	listFn       func(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	setPrimaryFn func(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error)
	disconnectFn func(ctx context.Context, userID, walletID uuid.UUID) error
}

func (s *stubWalletService) LinkWallet(ctx context.Context, userID uuid.UUID, input *entities.LinkWalletInput) (*entities.Wallet, error) {
	return s.linkFn(ctx, userID, input)
}

func (s *stubWalletService) GetWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	return s.listFn(ctx, userID)
}

func (s *stubWalletService) SetPrimaryWallet(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error) {
	return s.setPrimaryFn(ctx, userID, walletID)
}

func (s *stubWalletService) DisconnectWallet(ctx context.Context, userID, walletID uuid.UUID) error {
	return s.disconnectFn(ctx, userID, walletID)
}

// stubOrderService implements orderService and paymentVerifier.
type stubOrderService struct {
	createFn func(ctx context.Context, payerID uuid.UUID, input *entities.CreateOrderInput) (*entities.Order, error)
	getFn    func(ctx context.Context, callerID, orderID uuid.UUID) (*entities.Order, error)
	listFn   func(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*entities.Order, int64, error)
	verifyFn func(ctx context.Context, callerID, orderID uuid.UUID, txHash string) (*entities.VerifyPaymentResult, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, payerID uuid.UUID, input *entities.CreateOrderInput) (*entities.Order, error) {
	return s.createFn(ctx, payerID, input)
}

func (s *stubOrderService) GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*entities.Order, error) {
	return s.getFn(ctx, callerID, orderID)
}

func (s *stubOrderService) ListOrders(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*entities.Order, int64, error) {
	return s.listFn(ctx, callerID, limit, offset)
}

func (s *stubOrderService) VerifyPayment(ctx context.Context, callerID, orderID uuid.UUID, txHash string) (*entities.VerifyPaymentResult, error) {
	return s.verifyFn(ctx, callerID, orderID, txHash)
}
