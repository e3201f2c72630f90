package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAMM/hookgate/internal/config"
	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/repository"
	"github.com/GoAMM/hookgate/internal/service"
)

type noopNotifier struct{}

func (noopNotifier) RelayRequested(context.Context, model.RelayRequested) {}
func (noopNotifier) SwapCompleted(context.Context, model.SwapCompleted)  {}

const (
	testSender = "0x00000000000000000000000000000000000000cc"
	testVenue  = "0x1111111111111111111111111111111111111111111111111111111111111111"
)

func newHookRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	require.NoError(t, store.Seed(context.Background(), 50000, nil))
	registry := service.NewRegistry(store)
	svc := service.NewHookService(
		registry,
		service.NewThresholdPolicy(store, registry),
		service.NewDecisionEngine(service.NewFixedCostModel(config.CostConfig{
			StandardCost: 150000,
			RelayedCost:  90000,
			UnitSize:     1_000_000,
		})),
		service.NewPendingTracker(store),
		service.NewAggregator(store, registry, nil),
		noopNotifier{},
	)

	h := NewHookHandler(svc)
	r := gin.New()
	r.POST("/v1/hooks/before-swap", h.BeforeSwap)
	r.POST("/v1/hooks/after-swap", h.AfterSwap)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBeforeSwapEndpoint(t *testing.T) {
	r := newHookRouter(t)

	w := postJSON(t, r, "/v1/hooks/before-swap", model.BeforeSwapRequest{
		Sender:    testSender,
		Venue:     testVenue,
		Magnitude: 5_000_000,
		Direction: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.BeforeSwapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "before_swap", resp.Ack)
	assert.Zero(t, resp.Delta, "the policy never adjusts the swap amount")
	assert.Equal(t, uint32(600), resp.FeeAdjustment)
}

func TestBeforeSwapOptOutPayload(t *testing.T) {
	r := newHookRouter(t)

	// ABI-encoded false: 32 zero bytes
	w := postJSON(t, r, "/v1/hooks/before-swap", model.BeforeSwapRequest{
		Sender:    testSender,
		Venue:     testVenue,
		Magnitude: 5_000_000,
		Payload:   "0x" + common.Bytes2Hex(make([]byte, 32)),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.BeforeSwapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.FeeAdjustment, "opted-out swap earns no incentive fee")
}

func TestBeforeSwapRejectsBadInput(t *testing.T) {
	r := newHookRouter(t)

	cases := []struct {
		name string
		body model.BeforeSwapRequest
	}{
		{"missing sender", model.BeforeSwapRequest{Venue: testVenue}},
		{"bad sender", model.BeforeSwapRequest{Sender: "0x123", Venue: testVenue}},
		{"bad venue", model.BeforeSwapRequest{Sender: testSender, Venue: "0xdead"}},
		{"bad requester", model.BeforeSwapRequest{Sender: testSender, Venue: testVenue, Requester: "nope"}},
		{"bad payload hex", model.BeforeSwapRequest{Sender: testSender, Venue: testVenue, Payload: "0xzz"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/v1/hooks/before-swap", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAfterSwapEndpoint(t *testing.T) {
	r := newHookRouter(t)

	w := postJSON(t, r, "/v1/hooks/after-swap", model.AfterSwapRequest{
		Sender:    testSender,
		Venue:     testVenue,
		Magnitude: 5_000_000,
		Direction: true,
		Delta:     model.BalanceDelta{Amount0: -5_000_000, Amount1: 4_990_000},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.AfterSwapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "after_swap", resp.Ack)
	assert.Zero(t, resp.Delta)
}
