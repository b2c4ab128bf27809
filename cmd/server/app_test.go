package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/i18n"
	"github.com/diewo77/go-printshop/internal/config"
	"github.com/diewo77/go-printshop/internal/db"
	"github.com/diewo77/go-printshop/internal/metrics"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/policy"
	"github.com/diewo77/go-printshop/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const adminPassword = "admin-secret"

type testApp struct {
	*App
	conn *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Database = config.DatabaseConfig{Driver: "sqlite", Path: "file:" + t.Name() + "?mode=memory&cache=shared"}
	cfg.Auth.AdminEmail = "admin@test.local"
	cfg.Auth.AdminPassword = adminPassword

	log := zap.NewNop()
	conn, err := db.Connect(cfg.Database, log)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))
	require.NoError(t, db.Seed(conn, cfg, log))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	auth.Configure("test-secret", 0)
	m := metrics.New()
	routerCfg := policy.NewRouterConfig(conn, cfg, log, m)
	auth.SetUserVerifier(routerCfg.Users.Exists)
	t.Cleanup(func() { auth.SetUserVerifier(nil) })

	return &testApp{App: NewApp(conn, routerCfg, log, m), conn: conn}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	rec = app.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@test.local", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, rec))

	token := app.login(t, "ADMIN@test.local", adminPassword)
	rec = app.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)
}

func TestRequiresAuthentication(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/clients", "/api/orders", "/api/materials", "/api/dashboard/summary"} {
		rec := app.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := app.do(t, http.MethodGet, "/api/clients", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOperatorPermissions(t *testing.T) {
	app := newTestApp(t)
	admin := app.login(t, "admin@test.local", adminPassword)

	rec := app.do(t, http.MethodPost, "/api/users", admin, services.UserInput{
		Email: "op@test.local", Password: "operator-pass", Role: models.RoleOperator,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	op := app.login(t, "op@test.local", "operator-pass")

	rec = app.do(t, http.MethodPost, "/api/clients", op, map[string]string{"name": "Padaria Central"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/clients/%d", c.ID), op, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/users", op, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/clients/%d", c.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateOrderThroughAPI(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "admin@test.local", adminPassword)

	client := models.Client{Name: "João Souza"}
	require.NoError(t, app.conn.Create(&client).Error)
	paper := models.Material{Name: "Papel Couché", Stock: 20}
	require.NoError(t, app.conn.Create(&paper).Error)
	card := models.Product{
		Name: "Cartão de visita", Price: decimal.RequireFromString("0.25"), Stock: 100,
		Materials: []models.ProductMaterial{{MaterialID: paper.ID, Quantity: 1}},
	}
	require.NoError(t, app.conn.Create(&card).Error)

	body := map[string]any{
		"client_id":  client.ID,
		"order_date": "2024-03-10",
		"items":      []map[string]any{{"product_id": card.ID, "quantity": 12}},
	}
	rec := app.do(t, http.MethodPost, "/api/orders", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var o models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, "João Souza", o.ClientName)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].UnitPrice.Equal(decimal.RequireFromString("0.25")))

	var p models.Product
	require.NoError(t, app.conn.First(&p, card.ID).Error)
	assert.Equal(t, 88, p.Stock)

	// Another 12 would need 12 sheets; only 8 left.
	rec = app.do(t, http.MethodPost, "/api/orders", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient_stock", decodeError(t, rec))

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d/pdf", o.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestValidationLanguage(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "admin@test.local", adminPassword)

	rec := app.do(t, http.MethodPost, "/api/materials?lang=en", token, map[string]any{"name": "", "stock": -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Error   string                       `json:"error"`
		Details map[string]map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Equal(t, "required", resp.Details["name"]["code"])
	assert.Equal(t, i18n.T("en", "required"), resp.Details["name"]["message"])
	assert.Contains(t, resp.Details, "stock")
}
