package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/fruitstand-backend/internal/auth"
	"github.com/angelmondragon/fruitstand-backend/internal/cart"
	"github.com/angelmondragon/fruitstand-backend/internal/orders"
	"github.com/angelmondragon/fruitstand-backend/internal/payments"
	"github.com/angelmondragon/fruitstand-backend/internal/products"
	"github.com/angelmondragon/fruitstand-backend/internal/users"
	pkgAuth "github.com/angelmondragon/fruitstand-backend/pkg/auth"
	"github.com/angelmondragon/fruitstand-backend/pkg/config"
	"github.com/angelmondragon/fruitstand-backend/pkg/pagination"
	"github.com/google/uuid"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: uuid.New(), Email: req.Email}, nil
}

type stubProductService struct{}

func (stubProductService) CreateProduct(ctx context.Context, input products.CreateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (stubProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, input products.UpdateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: productID}, nil
}

func (stubProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return nil
}

func (stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: productID}, nil
}

func (stubProductService) ListProducts(ctx context.Context, input products.ListProductsInput) (*products.ProductListResult, error) {
	return &products.ProductListResult{Products: []products.ProductDTO{}}, nil
}

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{Items: []cart.CartItemDTO{}, Subtotal: "0.00"}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cart.CartDTO, error) {
	return &cart.CartDTO{Items: []cart.CartItemDTO{}, Subtotal: "0.00"}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{Items: []cart.CartItemDTO{}, Subtotal: "0.00"}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) CreateOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: uuid.New(), UserID: userID}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) History(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{Orders: []orders.OrderDTO{}}, nil
}

func (stubOrdersService) ListAll(ctx context.Context, params pagination.Params) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{Orders: []orders.OrderDTO{}}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) CreateIntent(ctx context.Context, userID uuid.UUID) (*payments.PaymentIntentDTO, error) {
	return &payments.PaymentIntentDTO{ClientSecret: "pi_secret"}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "fruitstand",
			ExpirationMinutes: 30,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	return NewRouter(RouterParams{
		Config:          testRouterConfig(),
		DBPinger:        stubPinger{},
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		ProductService:  stubProductService{},
		CartService:     stubCartService{},
		CheckoutService: stubCheckoutService{},
		OrdersService:   stubOrdersService{},
		PaymentsService: stubPaymentsService{},
	})
}

func mintRouterToken(t *testing.T, isAdmin bool) string {
	t.Helper()

	token, err := pkgAuth.MintAccessToken(testRouterConfig().JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:  uuid.New(),
		IsAdmin: isAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func doRequest(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRouterPublicSurface(t *testing.T) {
	router := newTestRouter(t)

	if resp := doRequest(router, http.MethodGet, "/health/live", ""); resp.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", resp.Code)
	}
	if resp := doRequest(router, http.MethodGet, "/health/ready", ""); resp.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", resp.Code)
	}
	if resp := doRequest(router, http.MethodGet, "/api/public/ping", ""); resp.Code != http.StatusOK {
		t.Fatalf("public ping: expected 200 got %d", resp.Code)
	}
	if resp := doRequest(router, http.MethodGet, "/api/v1/products/", ""); resp.Code != http.StatusOK {
		t.Fatalf("product list: expected 200 got %d", resp.Code)
	}
}

func TestRouterRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/ping"},
		{http.MethodGet, "/api/v1/cart/"},
		{http.MethodPost, "/api/v1/orders/create"},
		{http.MethodGet, "/api/v1/orders/history"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/products/"},
	}
	for _, route := range protected {
		resp := doRequest(router, route.method, route.path, "")
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", route.method, route.path, resp.Code)
		}
	}
}

func TestRouterAuthenticatedAccess(t *testing.T) {
	router := newTestRouter(t)
	token := mintRouterToken(t, false)

	if resp := doRequest(router, http.MethodGet, "/api/v1/ping", token); resp.Code != http.StatusOK {
		t.Fatalf("private ping: expected 200 got %d", resp.Code)
	}
	if resp := doRequest(router, http.MethodGet, "/api/v1/cart/", token); resp.Code != http.StatusOK {
		t.Fatalf("cart: expected 200 got %d", resp.Code)
	}
	if resp := doRequest(router, http.MethodPost, "/api/v1/orders/create", token); resp.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201 got %d", resp.Code)
	}
	if resp := doRequest(router, http.MethodGet, "/api/v1/auth/me", token); resp.Code != http.StatusOK {
		t.Fatalf("me: expected 200 got %d", resp.Code)
	}
}

func TestRouterAdminGate(t *testing.T) {
	router := newTestRouter(t)
	customer := mintRouterToken(t, false)
	admin := mintRouterToken(t, true)

	if resp := doRequest(router, http.MethodGet, "/api/v1/admin/orders", customer); resp.Code != http.StatusForbidden {
		t.Fatalf("customer on admin route: expected 403 got %d", resp.Code)
	}
	if resp := doRequest(router, http.MethodGet, "/api/v1/admin/orders", admin); resp.Code != http.StatusOK {
		t.Fatalf("admin orders: expected 200 got %d", resp.Code)
	}

	if resp := doRequest(router, http.MethodDelete, "/api/v1/products/"+uuid.NewString(), customer); resp.Code != http.StatusForbidden {
		t.Fatalf("customer product delete: expected 403 got %d", resp.Code)
	}
	if resp := doRequest(router, http.MethodDelete, "/api/v1/products/"+uuid.NewString(), admin); resp.Code != http.StatusOK {
		t.Fatalf("admin product delete: expected 200 got %d", resp.Code)
	}
}
