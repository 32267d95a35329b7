//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/erp/backoffice/internal/application/catalog"
	financeapp "github.com/erp/backoffice/internal/application/finance"
	identityapp "github.com/erp/backoffice/internal/application/identity"
	inventoryapp "github.com/erp/backoffice/internal/application/inventory"
	partnerapp "github.com/erp/backoffice/internal/application/partner"
	reportapp "github.com/erp/backoffice/internal/application/report"
	tradeapp "github.com/erp/backoffice/internal/application/trade"
	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/erp/backoffice/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "correct-horse-battery"
)

// app is the HTTP surface wired the way cmd/server wires it, minus Redis
type app struct {
	db     *TestDB
	engine *gin.Engine
	orders *tradeapp.PurchaseOrderService
	sales  *tradeapp.SalesService
	token  string
}

func newApp(t *testing.T) *app {
	t.Helper()
	tdb := NewTestDB(t)
	log := zap.NewNop()

	cfg := &config.Config{
		App: config.AppConfig{Name: "backoffice", Env: "test"},
		JWT: config.JWTConfig{
			Secret:     "integration-secret-0123456789abcdef",
			Expiration: time.Hour,
			Issuer:     "backoffice-integration",
		},
		HTTP: config.HTTPConfig{
			RequestTimeout: 30 * time.Second,
			MaxBodySize:    1 << 20,
		},
		Idempotency: config.IdempotencyConfig{Backend: "memory", TTL: time.Hour},
	}

	scope := persistence.NewGormTransactionScope(tdb.DB, 300*time.Millisecond)
	bus := event.NewInMemoryEventBus(log)
	runner := uow.NewRunner(scope, lock.NewMemoryLocker(5*time.Second), bus, log)
	policy := identity.DefaultPolicy()
	ledger := inventoryapp.NewLedger(decimal.RequireFromString("0.30"))

	authService := identityapp.NewAuthService(runner, auth.NewJWTService(cfg.JWT), auth.NewInMemoryTokenBlacklist(), log)
	userService := identityapp.NewUserService(runner, policy, log)
	orders := tradeapp.NewPurchaseOrderService(runner, policy, ledger, log)
	sales := tradeapp.NewSalesService(runner, policy, ledger, log)
	idem := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { idem.Close() })

	engine := router.NewEngine(router.Handlers{
		User:          handler.NewUserHandler(authService, userService),
		Category:      handler.NewCategoryHandler(catalogapp.NewCategoryService(runner, policy, log)),
		Product:       handler.NewProductHandler(catalogapp.NewProductService(runner, policy, log)),
		Inventory:     handler.NewInventoryHandler(inventoryapp.NewInventoryService(runner, policy, ledger, 30, log)),
		Supplier:      handler.NewSupplierHandler(partnerapp.NewSupplierService(runner, policy, log)),
		PurchaseOrder: handler.NewPurchaseOrderHandler(orders),
		Sales:         handler.NewSalesOrderHandler(sales),
		Expense:       handler.NewExpenseHandler(financeapp.NewExpenseService(runner, policy, log)),
		Report:        handler.NewReportHandler(reportapp.NewReportService(runner, policy, log)),
		System: handler.NewSystemHandler("backoffice", "integration", map[string]handler.Pinger{
			"database": handler.PingerFunc(persistence.NewDatabaseFromGorm(tdb.DB, 0).Ping),
		}),
	}, router.Deps{
		Config:        cfg,
		Logger:        log,
		Authenticator: authService,
		Idempotency:   idem,
	})

	_, err := userService.BootstrapBoss(context.Background(), "Owner", ownerEmail, ownerPassword)
	require.NoError(t, err)

	a := &app{db: tdb, engine: engine, orders: orders, sales: sales}
	w := a.call(t, http.MethodPost, "/users/login", gin.H{"email": ownerEmail, "password": ownerPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	a.token = testutil.DataAs[map[string]any](t, testutil.DecodeEnvelope(t, w))["token"].(string)
	return a
}

func (a *app) call(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, method, "/api/v1"+path, body)
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// data performs the call, requires status and returns the decoded data
func (a *app) data(t *testing.T, status int, method, path string, body any, headers ...string) map[string]any {
	t.Helper()
	w := a.call(t, method, path, body, headers...)
	require.Equal(t, status, w.Code, w.Body.String())
	return testutil.DataAs[map[string]any](t, testutil.DecodeEnvelope(t, w))
}

type catalogFixture struct {
	productID  string
	supplierID string
}

func (a *app) seedCatalog(t *testing.T, name string) catalogFixture {
	t.Helper()
	category := a.data(t, http.StatusCreated, http.MethodPost, "/products/categories", gin.H{"name": name + " goods"})
	product := a.data(t, http.StatusCreated, http.MethodPost, "/products", gin.H{
		"category_id":     category["id"],
		"name":            name,
		"unit_of_measure": "pcs",
	})
	supplier := a.data(t, http.StatusCreated, http.MethodPost, "/po/suppliers", gin.H{
		"name":          name + " Supplier",
		"payment_terms": "Credit 30 days",
	})
	return catalogFixture{productID: product["id"].(string), supplierID: supplier["id"].(string)}
}

// orderedPO creates a purchase order and walks it to Ordered, returning the
// order id and its single item id
func (a *app) orderedPO(t *testing.T, f catalogFixture, qty, cost string) (string, string) {
	t.Helper()
	po := a.data(t, http.StatusCreated, http.MethodPost, "/po", gin.H{
		"supplier_id": f.supplierID,
		"items":       []gin.H{{"product_id": f.productID, "quantity": qty, "unit_cost": cost}},
	})
	id := po["id"].(string)
	for _, step := range []string{"/submit", "/approve", "/order"} {
		a.data(t, http.StatusOK, http.MethodPut, "/po/"+id+step, nil)
	}
	itemID := po["items"].([]any)[0].(map[string]any)["id"].(string)
	return id, itemID
}
