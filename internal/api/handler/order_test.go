package handler

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/mpd/internal/domain"
	"github.com/saturnino-fabrica-de-software/mpd/internal/service"
	"github.com/saturnino-fabrica-de-software/mpd/internal/webhook"
)

func orderApp(svc *MockOrderService) *fiber.App {
	h := NewOrderHandler(svc, testLogger())
	app := newTestApp()
	app.Post("/orders", h.Create)
	app.Get("/orders", h.List)
	app.Post("/orders/:id/confirm", h.Confirm)
	app.Post("/orders/:id/fail", h.Fail)
	return app
}

func TestOrderHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(svc *MockOrderService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created with event",
			body: `{"fiatAmount":100,"fiatCurrency":"USD","cryptoAmount":0.05,"cryptoSymbol":"ETH","address":"0xabc123"}`,
			setup: func(svc *MockOrderService) {
				svc.On("Create", mock.Anything, mock.MatchedBy(func(in domain.CreateOrderInput) bool {
					return in.FiatAmount == 100 && in.CryptoSymbol == "ETH" && in.Address == "0xabc123"
				})).Return(&service.OrderResult{
					Order: &domain.Order{ID: uuid.New(), Status: domain.OrderStatusPending},
					Event: &webhook.FanoutResult{EventID: "evt_1", Deliveries: []webhook.Delivery{}},
				}, nil)
			},
			wantStatus: 201,
		},
		{
			name: "validation error",
			body: `{"fiatAmount":0}`,
			setup: func(svc *MockOrderService) {
				svc.On("Create", mock.Anything, mock.Anything).
					Return(nil, (&domain.ValidationError{}).Add("fiatAmount", "must be a positive number"))
			},
			wantStatus: 400,
			wantCode:   "validation_error",
		},
		{
			name:       "malformed json",
			body:       `{"fiatAmount":`,
			setup:      func(svc *MockOrderService) {},
			wantStatus: 400,
			wantCode:   "bad_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			tt.setup(svc)

			status, body := doJSON(t, orderApp(svc), jsonRequest("POST", "/orders", tt.body))

			assert.Equal(t, tt.wantStatus, status)
			if tt.wantCode != "" {
				assert.Equal(t, false, body["ok"])
				assert.Equal(t, tt.wantCode, body["error"])
				return
			}
			assert.Equal(t, true, body["ok"])
			assert.Contains(t, body, "order")
			assert.Equal(t, "evt_1", body["event"].(map[string]any)["eventId"])
			assert.NotContains(t, body, "note")
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("List", mock.Anything, domain.OrderFilter{
		Page: 2, PageSize: 10, Status: "PENDING", Symbol: "eth", Query: "0xab",
	}).Return(&service.OrderPage{Page: 2, PageSize: 10, Total: 11, Rows: []domain.Order{{ID: uuid.New()}}}, nil)

	status, body := doJSON(t, orderApp(svc), jsonRequest("GET", "/orders?page=2&pageSize=10&status=PENDING&symbol=eth&q=0xab", ""))

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(10), body["pageSize"])
	assert.Equal(t, float64(11), body["total"])
	assert.Len(t, body["rows"], 1)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Confirm(t *testing.T) {
	id := uuid.New()

	t.Run("already confirmed carries note", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Confirm", mock.Anything, id, "0xfeed01").Return(&service.OrderResult{
			Order: &domain.Order{ID: id, Status: domain.OrderStatusConfirmed},
			Note:  service.NoteAlreadyConfirmed,
		}, nil)

		status, body := doJSON(t, orderApp(svc), jsonRequest("POST", "/orders/"+id.String()+"/confirm", `{"txHash":"0xfeed01"}`))

		assert.Equal(t, 200, status)
		assert.Equal(t, "already_confirmed", body["note"])
		assert.Nil(t, body["event"])
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Confirm", mock.Anything, id, "0xfeed01").Return(nil, domain.ErrOrderNotFound)

		status, body := doJSON(t, orderApp(svc), jsonRequest("POST", "/orders/"+id.String()+"/confirm", `{"txHash":"0xfeed01"}`))

		assert.Equal(t, 404, status)
		assert.Equal(t, "order_not_found", body["error"])
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		svc := new(MockOrderService)

		status, body := doJSON(t, orderApp(svc), jsonRequest("POST", "/orders/not-a-uuid/confirm", `{"txHash":"0xfeed01"}`))

		assert.Equal(t, 404, status)
		assert.Equal(t, "order_not_found", body["error"])
		svc.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_Fail_EmptyBody(t *testing.T) {
	id := uuid.New()
	svc := new(MockOrderService)
	svc.On("Fail", mock.Anything, id, "").Return(&service.OrderResult{
		Order: &domain.Order{ID: id, Status: domain.OrderStatusFailed},
		Event: &webhook.FanoutResult{EventID: "evt_9", Deliveries: []webhook.Delivery{}},
	}, nil)

	status, body := doJSON(t, orderApp(svc), jsonRequest("POST", "/orders/"+id.String()+"/fail", ""))

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["ok"])
	svc.AssertExpectations(t)
}
