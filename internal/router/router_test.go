package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/auth"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/handler"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/metrics"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/tenant"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct{}

func (fakeOrders) CreateOrder(context.Context, tenant.Context, string, *model.OrderRequest) (*model.OrderResponse, error) {
	return &model.OrderResponse{OK: true}, nil
}

func (fakeOrders) Quote(context.Context, tenant.Context, string, *model.OrderRequest) (*model.QuoteResponse, error) {
	return &model.QuoteResponse{OK: true}, nil
}

type fakeReceipts struct {
	listedFor string
}

func (f *fakeReceipts) UpdateStatus(context.Context, tenant.Context, *auth.Principal, model.StatusUpdate) (*model.StatusResult, error) {
	return &model.StatusResult{OK: true}, nil
}

func (f *fakeReceipts) List(_ context.Context, wallet string, _ int) ([]model.Receipt, error) {
	f.listedFor = wallet
	return []model.Receipt{}, nil
}

func (f *fakeReceipts) Get(_ context.Context, _, id string) (*model.Receipt, error) {
	if id == "r1" {
		return &model.Receipt{ReceiptID: id}, nil
	}
	return nil, model.ErrReceiptNotFound
}

func newTestRouter(t *testing.T) (http.Handler, *fakeReceipts, *prometheus.Registry) {
	t.Helper()
	logger := zerolog.Nop()
	receipts := &fakeReceipts{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, func() int { return 0 })

	h := New(Handlers{
		Orders:   handler.NewOrderHandler(fakeOrders{}, logger),
		Receipts: handler.NewReceiptHandler(receipts, logger),
		Health:   handler.NewHealthHandler(nil),
		Metrics:  metrics.Handler(reg),
	}, Options{
		Authenticator: auth.Chain{auth.NewAPIKeyAuthenticator("secret")},
		Metrics:       m,
	}, logger)
	return h, receipts, reg
}

func TestRouter(t *testing.T) {
	router, _, _ := newTestRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		apiKey         string
		expectedStatus int
	}{
		{name: "health is public", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "metrics is public", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, path: "/orders", expectedStatus: http.StatusNoContent},
		{name: "orders need credentials", method: http.MethodPost, path: "/orders", expectedStatus: http.StatusUnauthorized},
		{name: "wrong api key", method: http.MethodGet, path: "/receipts", apiKey: "nope", expectedStatus: http.StatusUnauthorized},
		{name: "receipt by id", method: http.MethodGet, path: "/receipts/r1", apiKey: "secret", expectedStatus: http.StatusOK},
		{name: "missing receipt", method: http.MethodGet, path: "/receipts/r9", apiKey: "secret", expectedStatus: http.StatusNotFound},
		{name: "status route wins over id", method: http.MethodGet, path: "/receipts/status", apiKey: "secret", expectedStatus: http.StatusMethodNotAllowed},
		{name: "unknown route", method: http.MethodGet, path: "/products", apiKey: "secret", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set(auth.HeaderWallet, "0xmerchant")
			if tt.apiKey != "" {
				req.Header.Set(auth.HeaderAPIKey, tt.apiKey)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_ListUsesCallerWallet(t *testing.T) {
	router, receipts, reg := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/receipts?limit=5", nil)
	req.Header.Set(auth.HeaderAPIKey, "secret")
	req.Header.Set(auth.HeaderWallet, "0xMerchant")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0xmerchant", receipts.listedFor)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "portalpay_http_requests_total" {
			for _, m := range f.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "route" && l.GetValue() == "/receipts" {
						found = true
					}
				}
			}
		}
	}
	assert.True(t, found)
}
