package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"urbantales/internal/config"
	"urbantales/internal/models"
	"urbantales/internal/repositories"
	"urbantales/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, health func(ctx context.Context) error) (*Server, *logrus.Logger) {
	t.Helper()
	db, err := repositories.OpenAccountsDB("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(Options{
		Config:      &config.Config{JWTSecret: "test_jwt_secret", TokenTTL: time.Hour, ReturnWindowDays: 4},
		Log:         log,
		Repos:       MemoryRepositories(db),
		HealthCheck: health,
	}), log
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestHealth_Degraded(t *testing.T) {
	s, _ := newTestServer(t, func(context.Context) error { return errors.New("server selection timeout") })

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "urbantales_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, nil)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["kind"])
}

func TestSeedDemoData(t *testing.T) {
	s, log := newTestServer(t, nil)
	ctx := context.Background()

	require.NoError(t, SeedDemoData(ctx, s, log))
	require.NoError(t, SeedDemoData(ctx, s, log), "seeding twice is a no-op")

	_, seller, err := s.Auth.LoginSeller(ctx, DemoSellerEmail, DemoSellerPassword)
	require.NoError(t, err)

	products, err := s.Products.ListSellerProducts(ctx, seller.ID, "")
	require.NoError(t, err)
	assert.Len(t, products, 3)

	decor, err := s.Products.ListByCategory(ctx, "home decor")
	require.NoError(t, err)
	assert.Len(t, decor, 2)
}

func TestInProcessEventsCreateNotifications(t *testing.T) {
	s, log := newTestServer(t, nil)
	ctx := context.Background()
	require.NoError(t, SeedDemoData(ctx, s, log))

	_, seller, err := s.Auth.LoginSeller(ctx, DemoSellerEmail, DemoSellerPassword)
	require.NoError(t, err)
	products, err := s.Products.ListSellerProducts(ctx, seller.ID, "")
	require.NoError(t, err)

	buyer := &models.User{Name: "Asha", Email: "asha@example.com", Password: "password123"}
	require.NoError(t, s.Auth.RegisterBuyer(ctx, buyer))
	_, err = s.Carts.AddItem(ctx, buyer.ID, products[0].ID, 1)
	require.NoError(t, err)
	_, err = s.Orders.PlaceOrder(ctx, buyer.ID, services.Checkout{
		Name: "Asha", Mobile: "9876543210", Address: "Pune", PaymentMethod: "UPI", PaymentStatus: "Successful", TotalAmount: products[0].Price,
	})
	require.NoError(t, err)

	notifications, err := s.Notifications.List(ctx, seller.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "New order", notifications[0].Title)

	stats, err := s.SellerOrders.Stats(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sold, "prepaid orders count once paid")
}
