package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/mpd/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/service"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
)

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, in domain.CreateOrderInput) (*service.OrderResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderResult), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, filter domain.OrderFilter) (*service.OrderPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderPage), args.Error(1)
}

func (m *MockOrderService) Confirm(ctx context.Context, id uuid.UUID, txHash string) (*service.OrderResult, error) {
	args := m.Called(ctx, id, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderResult), args.Error(1)
}

func (m *MockOrderService) Fail(ctx context.Context, id uuid.UUID, reason string) (*service.OrderResult, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderResult), args.Error(1)
}

type MockPayoutService struct {
	mock.Mock
}

func (m *MockPayoutService) Create(ctx context.Context, amount float64, currency string) (*domain.Payout, error) {
	args := m.Called(ctx, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}

func (m *MockPayoutService) Send(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}

func (m *MockPayoutService) List(ctx context.Context, page, pageSize int) (*service.PayoutPage, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PayoutPage), args.Error(1)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) CurrentKey(ctx context.Context) (*domain.APIKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockSettingsService) Rotate(ctx context.Context) (*service.RotatedKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RotatedKey), args.Error(1)
}

type MockEndpointService struct {
	mock.Mock
}

func (m *MockEndpointService) Seed(ctx context.Context, url, signingSecret string) (*domain.WebhookEndpoint, error) {
	args := m.Called(ctx, url, signingSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WebhookEndpoint), args.Error(1)
}

func (m *MockEndpointService) List(ctx context.Context) ([]domain.WebhookEndpoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WebhookEndpoint), args.Error(1)
}

func (m *MockEndpointService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.WebhookEndpoint, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WebhookEndpoint), args.Error(1)
}

func (m *MockEndpointService) RecentDeliveries(ctx context.Context, limit int) ([]domain.DeliveryWithRelations, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeliveryWithRelations), args.Error(1)
}

type MockTester struct {
	mock.Mock
}

func (m *MockTester) SendTest(ctx context.Context, endpointID *uuid.UUID) (*webhook.TestDelivery, error) {
	args := m.Called(ctx, endpointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.TestDelivery), args.Error(1)
}
