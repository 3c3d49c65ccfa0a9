package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juakali/walletd/internal/adapter/handler"
	"github.com/juakali/walletd/internal/adapter/middleware"
	"github.com/juakali/walletd/internal/adapter/storage"
	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/ledger"
	"github.com/juakali/walletd/internal/core/user"
)

var jwtSecret = []byte("handler-test-secret")

// newTestAPI wires the full route surface over the in-memory store and
// returns the app plus a bearer token for a freshly registered user.
func newTestAPI(t *testing.T) (*fiber.App, string) {
	t.Helper()

	store := storage.NewMemoryStore()
	log := zap.NewNop()

	ledgerSvc := ledger.NewService(store, log)
	userSvc := user.NewService(store, jwtSecret, time.Hour, log)

	accounts := &handler.AccountHandler{Ledger: ledgerSvc, Log: log}
	transactions := &handler.TransactionHandler{Ledger: ledgerSvc, Log: log}
	users := &handler.UserHandler{Users: userSvc, Log: log}

	app := fiber.New()
	protected := middleware.Protected(jwtSecret)

	api := app.Group("/api/v1")
	api.Post("/users", users.Register)
	api.Post("/users/login", users.Login)
	api.Get("/users/me", protected, users.Me)
	api.Delete("/users/:id", protected, middleware.RequireRole(domain.RoleAdmin), users.Delete)

	acc := api.Group("/accounts", protected)
	acc.Post("/", accounts.CreateAccount)
	acc.Get("/", accounts.ListAccounts)
	acc.Get("/:accountId", accounts.GetAccount)
	acc.Delete("/:accountId", accounts.CloseAccount)
	acc.Post("/:accountId/transactions", transactions.CreateTransaction)

	doJSON(t, app, http.MethodPost, "/api/v1/users", "", map[string]any{
		"email":    "jane@example.com",
		"password": "s3cret-pass",
	}, http.StatusCreated)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/users/login", "", map[string]any{
		"email":    "jane@example.com",
		"password": "s3cret-pass",
	}, http.StatusOK)

	token, _ := resp["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	return app, token
}

// doJSON performs one request and decodes the JSON body, asserting the
// status code on the way.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any, wantStatus int) map[string]any {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "body: %s", raw)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return decoded
}

func TestRoutesRequireAuth(t *testing.T) {
	app, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndGetAccount(t *testing.T) {
	app, token := newTestAPI(t)

	created := doJSON(t, app, http.MethodPost, "/api/v1/accounts/", token, map[string]any{
		"initialBalance": "100.00",
	}, http.StatusCreated)

	data := created["data"].(map[string]any)
	accountID := data["id"].(string)
	assert.Equal(t, "ACTIVE", data["status"])
	assert.Equal(t, "100", data["balance"])

	fetched := doJSON(t, app, http.MethodGet, "/api/v1/accounts/"+accountID, token, nil, http.StatusOK)
	assert.Equal(t, accountID, fetched["data"].(map[string]any)["id"])
}

func TestCreateAccountRejectsNegativeBalance(t *testing.T) {
	app, token := newTestAPI(t)

	doJSON(t, app, http.MethodPost, "/api/v1/accounts/", token, map[string]any{
		"initialBalance": "-5",
	}, http.StatusBadRequest)
}

func TestListAccountsPagination(t *testing.T) {
	app, token := newTestAPI(t)

	for i := 0; i < 3; i++ {
		doJSON(t, app, http.MethodPost, "/api/v1/accounts/", token, map[string]any{}, http.StatusCreated)
	}

	listed := doJSON(t, app, http.MethodGet, "/api/v1/accounts/?page=1&limit=2", token, nil, http.StatusOK)
	meta := listed["meta"].(map[string]any)
	assert.EqualValues(t, 3, meta["totalItems"])
	assert.EqualValues(t, 2, meta["totalPages"])
	assert.EqualValues(t, 1, meta["currentPage"])
	assert.EqualValues(t, 2, meta["perPage"])
	assert.Len(t, listed["data"].([]any), 2)
}

func TestTransactionLifecycleOverHTTP(t *testing.T) {
	app, token := newTestAPI(t)

	created := doJSON(t, app, http.MethodPost, "/api/v1/accounts/", token, map[string]any{
		"initialBalance": "100.00",
	}, http.StatusCreated)
	accountID := created["data"].(map[string]any)["id"].(string)

	txnPath := fmt.Sprintf("/api/v1/accounts/%s/transactions", accountID)

	first := doJSON(t, app, http.MethodPost, txnPath, token, map[string]any{
		"amount":         30,
		"type":           "CREDIT",
		"idempotencyKey": "k1",
	}, http.StatusCreated)
	firstID := first["data"].(map[string]any)["id"].(string)
	assert.Equal(t, "SUCCESS", first["data"].(map[string]any)["status"])

	// Oversized debit is a 409 and moves nothing.
	errResp := doJSON(t, app, http.MethodPost, txnPath, token, map[string]any{
		"amount":         500,
		"type":           "DEBIT",
		"idempotencyKey": "k2",
	}, http.StatusConflict)
	assert.Equal(t, "Insufficient balance", errResp["error"].(map[string]any)["message"])

	// Replaying k1 returns the original transaction.
	replay := doJSON(t, app, http.MethodPost, txnPath, token, map[string]any{
		"amount":         30,
		"type":           "CREDIT",
		"idempotencyKey": "k1",
	}, http.StatusCreated)
	assert.Equal(t, firstID, replay["data"].(map[string]any)["id"])

	fetched := doJSON(t, app, http.MethodGet, "/api/v1/accounts/"+accountID, token, nil, http.StatusOK)
	assert.Equal(t, "130", fetched["data"].(map[string]any)["balance"])
}

func TestTransactionValidation(t *testing.T) {
	app, token := newTestAPI(t)

	created := doJSON(t, app, http.MethodPost, "/api/v1/accounts/", token, map[string]any{}, http.StatusCreated)
	accountID := created["data"].(map[string]any)["id"].(string)
	txnPath := fmt.Sprintf("/api/v1/accounts/%s/transactions", accountID)

	doJSON(t, app, http.MethodPost, txnPath, token, map[string]any{
		"amount": 0, "type": "CREDIT", "idempotencyKey": "k1",
	}, http.StatusBadRequest)

	doJSON(t, app, http.MethodPost, txnPath, token, map[string]any{
		"amount": 10, "type": "TRANSFER", "idempotencyKey": "k1",
	}, http.StatusBadRequest)

	doJSON(t, app, http.MethodPost, txnPath, token, map[string]any{
		"amount": 10, "type": "DEBIT", "idempotencyKey": "",
	}, http.StatusBadRequest)
}

func TestCloseAccountOverHTTP(t *testing.T) {
	app, token := newTestAPI(t)

	created := doJSON(t, app, http.MethodPost, "/api/v1/accounts/", token, map[string]any{}, http.StatusCreated)
	accountID := created["data"].(map[string]any)["id"].(string)

	doJSON(t, app, http.MethodDelete, "/api/v1/accounts/"+accountID, token, nil, http.StatusOK)

	// Second close: the ACTIVE row is gone, indistinguishable from absent.
	doJSON(t, app, http.MethodDelete, "/api/v1/accounts/"+accountID, token, nil, http.StatusNotFound)
}

func TestAdminGuard(t *testing.T) {
	app, token := newTestAPI(t)

	// A plain USER cannot delete users.
	me := doJSON(t, app, http.MethodGet, "/api/v1/users/me", token, nil, http.StatusOK)
	id := me["data"].(map[string]any)["id"].(string)

	doJSON(t, app, http.MethodDelete, "/api/v1/users/"+id, token, nil, http.StatusForbidden)
}
