package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestServer отвечает текстом reply и сохраняет последний запрос
func newTestServer(t *testing.T, status int, reply string, got *generateRequest, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			return
		}
		resp := map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": reply}}}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestClient(url string) Assistant {
	return NewGeminiClient(url, "secret", "test-model", 2*time.Second)
}

func TestPredictRefills(t *testing.T) {
	var got generateRequest
	var hits int32
	srv := newTestServer(t, http.StatusOK, `[{"customerId":"c1","reason":"Orders every 2 days"}]`, &got, &hits)
	defer srv.Close()

	predictions, err := newTestClient(srv.URL).PredictRefills(context.Background(), RefillRequest{
		Customers: []RefillCustomer{{ID: "c1", Name: "Green Valley Gym", Deliveries: []string{"2024-01-01", "2024-01-03"}}},
	})
	require.NoError(t, err)
	require.Equal(t, []Prediction{{CustomerID: "c1", Reason: "Orders every 2 days"}}, predictions)

	require.NotNil(t, got.GenerationConfig)
	require.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
	require.Contains(t, got.Contents[0].Parts[0].Text, "2024-01-03")
}

func TestPredictRefillsInvalidReply(t *testing.T) {
	var hits int32

	srv := newTestServer(t, http.StatusOK, `[{"customerId":"c1"}]`, nil, &hits)
	defer srv.Close()
	_, err := newTestClient(srv.URL).PredictRefills(context.Background(), RefillRequest{})
	require.ErrorIs(t, err, ErrInvalidReply)

	srv2 := newTestServer(t, http.StatusOK, `not json`, nil, &hits)
	defer srv2.Close()
	_, err = newTestClient(srv2.URL).PredictRefills(context.Background(), RefillRequest{})
	require.ErrorIs(t, err, ErrInvalidReply)
}

func TestDraftSMS(t *testing.T) {
	var got generateRequest
	var hits int32
	srv := newTestServer(t, http.StatusOK, "Dear Green Valley Gym, 3 jars delivered.", &got, &hits)
	defer srv.Close()

	text, err := newTestClient(srv.URL).DraftSMS(context.Background(), SMSRequest{Notification: DeliveryBill{
		Name:     "Green Valley Gym",
		Quantity: 3,
		Rate:     decimal.NewFromInt(40),
		Total:    decimal.NewFromInt(120),
		Balance:  decimal.NewFromInt(120),
		Date:     "2024-01-01",
	}})
	require.NoError(t, err)
	require.Equal(t, "Dear Green Valley Gym, 3 jars delivered.", text)
	require.NotNil(t, got.SystemInstruction)
	require.Contains(t, got.Contents[0].Parts[0].Text, string(KindDailyDeliveryBill))
	require.Contains(t, got.Contents[0].Parts[0].Text, `"total":`)
}

func TestRejectedBeforeTransmission(t *testing.T) {
	var hits int32
	srv := newTestServer(t, http.StatusOK, "ok", nil, &hits)
	defer srv.Close()
	client := newTestClient(srv.URL)
	ctx := context.Background()

	_, err := client.DraftSMS(ctx, SMSRequest{})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.DraftSMS(ctx, SMSRequest{Notification: BookingConfirmed{Name: "X", Quantity: 0}})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.DraftSMS(ctx, SMSRequest{Notification: UpcomingDeliveryReminder{Name: "X", ScheduledDate: "next week"}})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.Chat(ctx, ChatRequest{Mode: "ADMIN", Messages: []Message{{Role: "user", Text: "hi"}}})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.Chat(ctx, ChatRequest{Mode: ModeMerchant})
	require.ErrorIs(t, err, ErrInvalidRequest)

	require.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestChat(t *testing.T) {
	var got generateRequest
	var hits int32
	srv := newTestServer(t, http.StatusOK, "Collect from c3 first.", &got, &hits)
	defer srv.Close()

	text, err := newTestClient(srv.URL).Chat(context.Background(), ChatRequest{
		Mode:     ModeSupport,
		Messages: []Message{{Role: "user", Text: "Who owes most?"}, {Role: "model", Text: "c3"}, {Role: "user", Text: "Plan?"}},
		Metrics:  Metrics{Customers: 3, Outstanding: decimal.NewFromInt(620), PendingBookings: 1},
	})
	require.NoError(t, err)
	require.Equal(t, "Collect from c3 first.", text)

	// контекст и три сообщения диалога
	require.Len(t, got.Contents, 4)
	require.Contains(t, got.Contents[0].Parts[0].Text, `"outstanding":`)
	require.Equal(t, "model", got.Contents[2].Role)
	require.Equal(t, supportInstruction, got.SystemInstruction.Parts[0].Text)
}

func TestAnalyzeHealth(t *testing.T) {
	var hits int32
	srv := newTestServer(t, http.StatusOK, `{"summary":"Healthy","actionableTip":"Collect dues"}`, nil, &hits)
	defer srv.Close()

	report, err := newTestClient(srv.URL).AnalyzeHealth(context.Background(), HealthRequest{DeliveryCount: 4})
	require.NoError(t, err)
	require.Equal(t, HealthReport{Summary: "Healthy", ActionableTip: "Collect dues"}, report)

	srv2 := newTestServer(t, http.StatusOK, `{"summary":"Healthy"}`, nil, &hits)
	defer srv2.Close()
	_, err = newTestClient(srv2.URL).AnalyzeHealth(context.Background(), HealthRequest{})
	require.ErrorIs(t, err, ErrInvalidReply)
}

func TestTransportFailures(t *testing.T) {
	var hits int32
	ctx := context.Background()

	srv := newTestServer(t, http.StatusServiceUnavailable, "", nil, &hits)
	defer srv.Close()
	_, err := newTestClient(srv.URL).Chat(ctx, ChatRequest{Mode: ModeMerchant, Messages: []Message{{Role: "user", Text: "hi"}}})
	require.ErrorIs(t, err, ErrStatus)

	empty := newTestServer(t, http.StatusOK, "  ", nil, &hits)
	defer empty.Close()
	_, err = newTestClient(empty.URL).DraftSMS(ctx, SMSRequest{Notification: RefillPrompt{Name: "Sunrise Apartments"}})
	require.ErrorIs(t, err, ErrEmptyReply)
}
