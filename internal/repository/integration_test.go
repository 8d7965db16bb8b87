//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/mpd/internal/database"
	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
)

func setupIntegrationTest(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "mpd_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/mpd_test?sslmode=disable", host, port.Port())

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(connStr))
	require.NoError(t, err)

	_, err = database.MigrateUp(database.SQLDB(pool), "mpd_test")
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pool
}

func TestIntegration_DeliveryLedger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := setupIntegrationTest(t)
	ctx := context.Background()

	endpoints := NewWebhookEndpointRepository(pool)
	events := NewEventRepository(pool)
	deliveries := NewDeliveryRepository(pool)

	active := &domain.WebhookEndpoint{URL: "http://a.example/hook", SigningSecret: "sa", IsActive: true}
	inactive := &domain.WebhookEndpoint{URL: "http://b.example/hook", SigningSecret: "sb", IsActive: false}
	require.NoError(t, endpoints.Create(ctx, active))
	require.NoError(t, endpoints.Create(ctx, inactive))

	list, err := endpoints.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	latest, err := endpoints.GetLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, inactive.ID, latest.ID)

	evt := &domain.Event{
		ID:        "evt_integration",
		Type:      domain.EventOrderCreated,
		CreatedAt: time.Now().Unix(),
		Data:      map[string]any{"orderId": "ord_1"},
	}
	require.NoError(t, events.Create(ctx, evt))

	stored, err := events.GetByID(ctx, evt.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"evt_integration","type":"order.created","createdAt":`+fmt.Sprint(evt.CreatedAt)+`,"data":{"orderId":"ord_1"}}`, string(stored.Payload))

	code := 503
	msg := "timeout of 15000ms exceeded"
	require.NoError(t, deliveries.Create(ctx, &domain.DeliveryAttempt{
		Status: domain.DeliveryStatusFailed, ResponseCode: &code, ResponseMs: 40,
		WebhookEndpointID: active.ID, EventID: evt.ID,
	}))
	require.NoError(t, deliveries.Create(ctx, &domain.DeliveryAttempt{
		Status: domain.DeliveryStatusFailed, ErrorMessage: &msg, ResponseMs: 15000,
		WebhookEndpointID: active.ID, EventID: evt.ID,
	}))

	recent, err := deliveries.ListRecent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, d := range recent {
		assert.Equal(t, evt.ID, d.Event.ID)
		assert.Equal(t, active.URL, d.WebhookEndpoint.URL)
	}

	toggled, err := endpoints.SetActive(ctx, inactive.ID, true)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	list, err = endpoints.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, active.ID, list[0].ID, "oldest endpoint first")
}

func TestIntegration_Orders(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := setupIntegrationTest(t)
	ctx := context.Background()
	repo := NewOrderRepository(pool)

	for _, sym := range []string{"ETH", "BTC", "ETH"} {
		require.NoError(t, repo.Create(ctx, &domain.Order{
			Status: domain.OrderStatusPending, FiatAmount: 100, FiatCurrency: "USD",
			CryptoAmount: 0.5, CryptoSymbol: sym, Address: "0xabc" + sym, Network: "sepolia",
		}))
	}

	rows, total, err := repo.List(ctx, domain.OrderFilter{Page: 1, PageSize: 20, Symbol: "ETH"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, domain.OrderFilter{Page: 1, PageSize: 20, Query: "abcBTC"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)

	txHash := "0xfeed01"
	updated, err := repo.UpdateStatus(ctx, rows[0].ID, domain.OrderStatusConfirmed, &txHash)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, 0.5, updated.CryptoAmount)
	require.NotNil(t, updated.TxHash)
	assert.Equal(t, txHash, *updated.TxHash)
}
