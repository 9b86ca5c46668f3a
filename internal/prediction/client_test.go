package prediction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-insights-go/internal/types"
)

func testClient(url string) *Client {
	c := NewClient(url)
	c.RetryWindow = 20 * time.Millisecond
	return c
}

func sampleInput() types.PredictionInput {
	return types.PredictionInput{
		AccountLength:     120,
		VoiceMailPlan:     1,
		TotalDayMinutes:   265.1,
		TotalDayCalls:     110,
		TotalDayCharge:    45.07,
		TotalEveMinutes:   197.4,
		TotalNightMinutes: 244.7,
		TotalIntlMinutes:  10,
		CustomerName:      "John Doe",
	}
}

func TestPredict(t *testing.T) {
	want := types.PredictionResponse{
		PredictionID:     "p-123",
		ChurnProbability: 0.72,
		Prediction:       1,
		Confidence:       0.88,
		RiskLevel:        types.RiskHigh,
		Message:          "high churn risk",
		Timestamp:        "2025-11-12T10:00:00Z",
	}

	t.Run("returns the response body verbatim", func(t *testing.T) {
		var gotBody map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/predict", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			data, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(data, &gotBody))
			json.NewEncoder(w).Encode(want)
		}))
		defer srv.Close()

		got, err := testClient(srv.URL).Predict(context.Background(), sampleInput())
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, "John Doe", gotBody["customer_name"])
		assert.Equal(t, float64(120), gotBody["account_length"])
	})

	t.Run("server error carries the status code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model exploded", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Predict(context.Background(), sampleInput())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>not json</html>")
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Predict(context.Background(), sampleInput())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed")
	})

	t.Run("invalid input never reaches the wire", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		defer srv.Close()

		in := sampleInput()
		in.InternationalPlan = 3
		_, err := testClient(srv.URL).Predict(context.Background(), in)
		assert.Error(t, err)
		assert.Zero(t, calls)
	})

	t.Run("connection refused collapses into APIError", func(t *testing.T) {
		c := testClient("http://127.0.0.1:1")
		_, err := c.Predict(context.Background(), sampleInput())
		require.Error(t, err)
		var apiErr *APIError
		assert.ErrorAs(t, err, &apiErr)
	})
}

func TestPredictRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(types.PredictionResponse{PredictionID: "p-2"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.RetryWindow = 5 * time.Second
	got, err := c.Predict(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "p-2", got.PredictionID)
	assert.Equal(t, 2, attempts)
}

func TestPredictDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad feature vector", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.RetryWindow = 5 * time.Second
	_, err := c.Predict(context.Background(), sampleInput())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "422")
}

func TestBatchPredict(t *testing.T) {
	preds := []types.PredictionResponse{
		{PredictionID: "a", ChurnProbability: 0.8, Confidence: 0.9},
		{PredictionID: "b", ChurnProbability: 0.2, Confidence: 0.7},
		{PredictionID: "c", ChurnProbability: 0.6, Confidence: 0.8},
	}

	t.Run("consistent summary is kept as-is", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/predict/batch", r.URL.Path)
			var body struct {
				Customers []types.PredictionInput `json:"customers"`
			}
			data, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(data, &body))
			assert.Len(t, body.Customers, 2)
			json.NewEncoder(w).Encode(types.BatchPredictionResponse{
				BatchID:     "batch-1",
				Predictions: preds,
				Summary:     types.BatchSummary{TotalCustomers: 3, ChurnCount: 2, ChurnRate: 0.667, AvgConfidence: 0.8},
			})
		}))
		defer srv.Close()

		got, err := testClient(srv.URL).BatchPredict(context.Background(), []types.PredictionInput{sampleInput(), sampleInput()})
		require.NoError(t, err)
		assert.Equal(t, 0.667, got.Summary.ChurnRate)
	})

	t.Run("inconsistent summary is recomputed from predictions", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(types.BatchPredictionResponse{
				BatchID:     "batch-2",
				Predictions: preds,
				Summary:     types.BatchSummary{TotalCustomers: 99, ChurnCount: 99},
			})
		}))
		defer srv.Close()

		got, err := testClient(srv.URL).BatchPredict(context.Background(), []types.PredictionInput{sampleInput()})
		require.NoError(t, err)
		assert.Equal(t, 3, got.Summary.TotalCustomers)
		assert.Equal(t, 2, got.Summary.ChurnCount) // 0.8 and 0.6 cross the threshold
		assert.InDelta(t, 2.0/3.0, got.Summary.ChurnRate, 1e-9)
		assert.InDelta(t, 0.8, got.Summary.AvgConfidence, 1e-9)
	})
}

func TestHistoryClampsPaging(t *testing.T) {
	var gotLimit, gotOffset string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predictions/history", r.URL.Path)
		gotLimit = r.URL.Query().Get("limit")
		gotOffset = r.URL.Query().Get("offset")
		json.NewEncoder(w).Encode(types.PredictionHistory{TotalCount: 0})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).History(context.Background(), -10, -3)
	require.NoError(t, err)
	assert.Equal(t, "50", gotLimit)
	assert.Equal(t, "0", gotOffset)
}

func TestAnalyticsIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analytics/dashboard", r.URL.Path)
		io.WriteString(w, `{"total_predictions":100,"churn_rate":0.2,"avg_confidence":0.9,"predictions_today":7,"high_risk_customers":12,"hourly_distribution":{"9":40,"10":60}}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	first, err := c.Analytics(context.Background())
	require.NoError(t, err)
	second, err := c.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 40, first.HourlyDistribution["9"])
}

func TestRetrain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/model/retrain", r.URL.Path)
		json.NewEncoder(w).Encode(types.RetrainResponse{Message: "retraining started"})
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Retrain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "retraining started", got.Message)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		io.WriteString(w, `{"status":"healthy","model_loaded":true}`)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, got.ModelLoaded)
	assert.Equal(t, "healthy", got.Status)
}
