package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
)

func pendingOrder(id uuid.UUID) *domain.Order {
	return &domain.Order{
		ID:           id,
		Status:       domain.OrderStatusPending,
		FiatAmount:   100,
		FiatCurrency: "USD",
		CryptoAmount: 0.05,
		CryptoSymbol: "ETH",
		Address:      "0xabc123",
		Network:      "sepolia",
	}
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		input     domain.CreateOrderInput
		setup     func(repo *MockOrderRepository, pub *MockPublisher)
		wantErr   error
		wantEvent bool
	}{
		{
			name: "successful create publishes order.created",
			input: domain.CreateOrderInput{
				FiatAmount: 100, FiatCurrency: "usd", CryptoAmount: 0.05, CryptoSymbol: "eth", Address: "0xabc123",
			},
			setup: func(repo *MockOrderRepository, pub *MockPublisher) {
				repo.On("Create", ctx, mock.MatchedBy(func(o *domain.Order) bool {
					return o.Status == domain.OrderStatusPending && o.FiatCurrency == "USD" &&
						o.CryptoSymbol == "ETH" && o.Network == "sepolia"
				})).Return(nil)
				pub.On("Publish", ctx, domain.EventOrderCreated, mock.MatchedBy(func(data map[string]any) bool {
					return data["status"] == "PENDING" && data["cryptoSymbol"] == "ETH" && data["orderId"] != ""
				})).Return(&webhook.FanoutResult{EventID: "evt_1", Deliveries: []webhook.Delivery{}}, nil)
			},
			wantEvent: true,
		},
		{
			name:    "validation failure skips persistence",
			input:   domain.CreateOrderInput{FiatAmount: -1, CryptoSymbol: "E", Address: "x"},
			setup:   func(repo *MockOrderRepository, pub *MockPublisher) {},
			wantErr: domain.ErrValidationFailed,
		},
		{
			name: "repository error",
			input: domain.CreateOrderInput{
				FiatAmount: 1, CryptoAmount: 1, CryptoSymbol: "BTC", Address: "bc1qxyz",
			},
			setup: func(repo *MockOrderRepository, pub *MockPublisher) {
				repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepository)
			pub := new(MockPublisher)
			tt.setup(repo, pub)

			svc := NewOrderService(repo, pub, testLogger())
			got, err := svc.Create(ctx, tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrValidationFailed) {
					assert.ErrorIs(t, err, domain.ErrValidationFailed)
					repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusPending, got.Order.Status)
			assert.Equal(t, tt.wantEvent, got.Event != nil)
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestOrderService_Create_PublishFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	pub := new(MockPublisher)

	repo.On("Create", ctx, mock.Anything).Return(nil)
	pub.On("Publish", ctx, domain.EventOrderCreated, mock.Anything).Return(nil, errors.New("create event: persist event: timeout"))

	_, err := NewOrderService(repo, pub, testLogger()).Create(ctx, domain.CreateOrderInput{
		FiatAmount: 1, CryptoAmount: 1, CryptoSymbol: "BTC", Address: "bc1qxyz",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist event")
}

func TestOrderService_List_NormalizesFilter(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)

	repo.On("List", ctx, domain.OrderFilter{Page: 1, PageSize: 100, Status: "FAILED", Symbol: "ETH", Query: "0xab"}).
		Return([]domain.Order{*pendingOrder(uuid.New())}, 7, nil)

	page, err := NewOrderService(repo, new(MockPublisher), testLogger()).List(ctx, domain.OrderFilter{
		Page: -3, PageSize: 500, Status: "failed", Symbol: " eth ", Query: " 0xab ",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 7, page.Total)
	assert.Len(t, page.Rows, 1)
	repo.AssertExpectations(t)
}

func TestOrderService_Confirm(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	txHash := "0xfeed01"

	t.Run("confirms and publishes with txHash", func(t *testing.T) {
		repo := new(MockOrderRepository)
		pub := new(MockPublisher)

		confirmed := pendingOrder(id)
		confirmed.Status = domain.OrderStatusConfirmed
		confirmed.TxHash = &txHash

		repo.On("GetByID", ctx, id).Return(pendingOrder(id), nil)
		repo.On("UpdateStatus", ctx, id, domain.OrderStatusConfirmed, mock.MatchedBy(func(h *string) bool {
			return h != nil && *h == txHash
		})).Return(confirmed, nil)
		pub.On("Publish", ctx, domain.EventOrderConfirmed, mock.MatchedBy(func(data map[string]any) bool {
			return data["txHash"] == txHash && data["status"] == "CONFIRMED"
		})).Return(&webhook.FanoutResult{EventID: "evt_2"}, nil)

		got, err := NewOrderService(repo, pub, testLogger()).Confirm(ctx, id, txHash)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusConfirmed, got.Order.Status)
		assert.Equal(t, "evt_2", got.Event.EventID)
		assert.Empty(t, got.Note)
		pub.AssertExpectations(t)
	})

	t.Run("already confirmed is a no-op", func(t *testing.T) {
		repo := new(MockOrderRepository)
		pub := new(MockPublisher)

		confirmed := pendingOrder(id)
		confirmed.Status = domain.OrderStatusConfirmed
		repo.On("GetByID", ctx, id).Return(confirmed, nil)

		got, err := NewOrderService(repo, pub, testLogger()).Confirm(ctx, id, txHash)
		require.NoError(t, err)
		assert.Nil(t, got.Event)
		assert.Equal(t, NoteAlreadyConfirmed, got.Note)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("short txHash rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		_, err := NewOrderService(repo, new(MockPublisher), testLogger()).Confirm(ctx, id, "0x1")
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("missing order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("GetByID", ctx, id).Return(nil, domain.ErrOrderNotFound)

		_, err := NewOrderService(repo, new(MockPublisher), testLogger()).Confirm(ctx, id, txHash)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestOrderService_Fail(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name       string
		reason     string
		wantReason string
	}{
		{name: "default reason", reason: "", wantReason: "simulation"},
		{name: "explicit reason", reason: "insufficient_funds", wantReason: "insufficient_funds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepository)
			pub := new(MockPublisher)

			failed := pendingOrder(id)
			failed.Status = domain.OrderStatusFailed

			repo.On("GetByID", ctx, id).Return(pendingOrder(id), nil)
			repo.On("UpdateStatus", ctx, id, domain.OrderStatusFailed, (*string)(nil)).Return(failed, nil)
			pub.On("Publish", ctx, domain.EventOrderFailed, mock.MatchedBy(func(data map[string]any) bool {
				return data["reason"] == tt.wantReason && data["status"] == "FAILED"
			})).Return(&webhook.FanoutResult{EventID: "evt_3"}, nil)

			got, err := NewOrderService(repo, pub, testLogger()).Fail(ctx, id, tt.reason)
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusFailed, got.Order.Status)
			pub.AssertExpectations(t)
		})
	}

	t.Run("already failed is a no-op", func(t *testing.T) {
		repo := new(MockOrderRepository)
		pub := new(MockPublisher)

		failed := pendingOrder(id)
		failed.Status = domain.OrderStatusFailed
		repo.On("GetByID", ctx, id).Return(failed, nil)

		got, err := NewOrderService(repo, pub, testLogger()).Fail(ctx, id, "")
		require.NoError(t, err)
		assert.Equal(t, NoteAlreadyFailed, got.Note)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}
