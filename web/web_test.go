package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/example/storefront/pkg/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type memSessions struct {
	sessions map[string]*repository.Session
}

func (m *memSessions) SaveSession(_ context.Context, session *repository.Session, _ time.Duration) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *memSessions) SessionByToken(_ context.Context, token string) (*repository.Session, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *memSessions) DeleteSession(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	logger := zap.NewNop()
	sessions := &memSessions{sessions: make(map[string]*repository.Session)}

	catalog := service.NewCatalogService(db, nil, "name", logger)
	cart := service.NewCartService(db, logger)
	orders := service.NewOrderService(db, nil, logger)
	reviews := service.NewReviewService(db, nil, logger)
	accounts := service.NewAccountService(db, sessions, nil, nil, time.Hour, logger)

	cfg := &config.Config{}
	srv := NewServer(cfg, logger, catalog, cart, orders, reviews, accounts)
	srv.SetupRoutes()
	return srv, db
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func signupShopper(t *testing.T, srv *Server) string {
	t.Helper()

	w := doJSON(t, srv, http.MethodPost, "/signup", "", service.SignupInput{
		Username:     "shopper",
		Password:     "hunter22",
		Email:        "shopper@example.com",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
		ZipCode:      "12345",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, ok := decode(t, w)["token"].(string)
	require.True(t, ok)
	return token
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCartRequiresAuthentication(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogIsPublic(t *testing.T) {
	srv, db := newTestServer(t)
	require.NoError(t, db.Create(&models.Item{Name: "Mug", Price: decimal.RequireFromString("19.99"), Stock: 3}).Error)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/items", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decode(t, w)["total"])
}

func TestGetUnknownItemIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/api/v1/items/999", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingFlow(t *testing.T) {
	srv, db := newTestServer(t)
	item := &models.Item{Name: "Mug", Price: decimal.RequireFromString("19.99"), Stock: 3}
	require.NoError(t, db.Create(item).Error)

	token := signupShopper(t, srv)
	itemPath := fmt.Sprintf("/api/v1/cart/items/%d", item.ID)

	// Add the same item twice, cart holds one line with quantity 2
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, itemPath, token, nil).Code)
	require.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodPost, itemPath, token, nil).Code)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode(t, w)
	entries := cart["entries"].([]interface{})
	require.Len(t, entries, 1)
	require.Equal(t, "39.98", cart["total"])

	// Checkout produces an order and clears the cart
	w = doJSON(t, srv, http.MethodPost, "/api/v1/checkout", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	receipt := decode(t, w)
	require.Equal(t, "39.98", receipt["total"])
	require.Equal(t, "Processing", receipt["status_label"])

	w = doJSON(t, srv, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode(t, w)["entries"])

	// A second checkout on the now-empty cart fails
	w = doJSON(t, srv, http.MethodPost, "/api/v1/checkout", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Order history shows the order
	w = doJSON(t, srv, http.MethodGet, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decode(t, w)["total"])
}

func TestReviewFlow(t *testing.T) {
	srv, db := newTestServer(t)
	item := &models.Item{Name: "Mug", Price: decimal.RequireFromString("19.99"), Stock: 3}
	require.NoError(t, db.Create(item).Error)

	token := signupShopper(t, srv)
	reviewPath := fmt.Sprintf("/api/v1/items/%d/reviews", item.ID)

	w := doJSON(t, srv, http.MethodPost, reviewPath, token, map[string]interface{}{
		"rating": 4.5, "text": "solid mug",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Out-of-range rating is rejected
	w = doJSON(t, srv, http.MethodPost, reviewPath, token, map[string]interface{}{"rating": 5.5})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Reviews read back without authentication
	w = doJSON(t, srv, http.MethodGet, reviewPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decode(t, w)["total"])
}

func TestRemoveMissingCartLineIs404(t *testing.T) {
	srv, db := newTestServer(t)
	item := &models.Item{Name: "Mug", Price: decimal.RequireFromString("19.99"), Stock: 3}
	require.NoError(t, db.Create(item).Error)

	token := signupShopper(t, srv)
	w := doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/v1/cart/items/%d", item.ID), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signupShopper(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)["profile"].(map[string]interface{})
	addresses := profile["addresses"].([]interface{})
	require.Len(t, addresses, 1)
}

func TestDuplicateSignupConflicts(t *testing.T) {
	srv, _ := newTestServer(t)
	signupShopper(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/signup", "", service.SignupInput{
		Username:     "shopper",
		Password:     "hunter22",
		Email:        "shopper@example.com",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
		ZipCode:      "12345",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}
