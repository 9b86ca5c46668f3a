package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"churn-insights-go/internal/logger"
	"churn-insights-go/internal/types"
)

const (
	defaultTimeout     = 12 * time.Second
	defaultRetryWindow = 10 * time.Second
	defaultHistoryPage = 50
)

// Service is the contract the rest of the app depends on, so loaders and
// handlers can be tested against a stub instead of a live endpoint.
type Service interface {
	Health(ctx context.Context) (types.Health, error)
	Predict(ctx context.Context, in types.PredictionInput) (types.PredictionResponse, error)
	BatchPredict(ctx context.Context, inputs []types.PredictionInput) (types.BatchPredictionResponse, error)
	Analytics(ctx context.Context) (types.AnalyticsResponse, error)
	ModelMetrics(ctx context.Context) (types.ModelMetricsResponse, error)
	History(ctx context.Context, limit, offset int) (types.PredictionHistory, error)
	Retrain(ctx context.Context) (types.RetrainResponse, error)
}

var _ Service = (*Client)(nil)

// Client talks to the remote churn-prediction API. The base URL is fixed at
// construction; there is no package-level instance.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	RetryWindow time.Duration

	log *logrus.Entry
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTPClient:  &http.Client{Timeout: defaultTimeout},
		RetryWindow: defaultRetryWindow,
		log:         logger.NewComponent("prediction.client"),
	}
}

func (c *Client) Health(ctx context.Context) (types.Health, error) {
	var out types.Health
	err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out, err
}

// Predict validates the input locally before anything goes on the wire.
func (c *Client) Predict(ctx context.Context, in types.PredictionInput) (types.PredictionResponse, error) {
	var out types.PredictionResponse
	if err := in.Validate(); err != nil {
		return out, fmt.Errorf("invalid prediction input: %w", err)
	}
	err := c.doJSON(ctx, http.MethodPost, "/predict", nil, in, &out)
	return out, err
}

// BatchPredict submits up to a whole workbook of customers at once. The
// server-reported summary is only trusted when it agrees with the prediction
// array; otherwise the summary is recomputed here.
func (c *Client) BatchPredict(ctx context.Context, inputs []types.PredictionInput) (types.BatchPredictionResponse, error) {
	var out types.BatchPredictionResponse
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return out, fmt.Errorf("invalid prediction input at index %d: %w", i, err)
		}
	}
	body := map[string]interface{}{"customers": inputs}
	if err := c.doJSON(ctx, http.MethodPost, "/predict/batch", nil, body, &out); err != nil {
		return out, err
	}
	if out.Summary.TotalCustomers != len(out.Predictions) {
		c.log.WithFields(logrus.Fields{
			"reported": out.Summary.TotalCustomers,
			"actual":   len(out.Predictions),
		}).Warn("batch summary disagrees with prediction array, recomputing")
		out.Summary = summarize(out.Predictions)
	}
	return out, nil
}

func (c *Client) Analytics(ctx context.Context) (types.AnalyticsResponse, error) {
	var out types.AnalyticsResponse
	err := c.doJSON(ctx, http.MethodGet, "/analytics/dashboard", nil, nil, &out)
	return out, err
}

func (c *Client) ModelMetrics(ctx context.Context) (types.ModelMetricsResponse, error) {
	var out types.ModelMetricsResponse
	err := c.doJSON(ctx, http.MethodGet, "/model/metrics", nil, nil, &out)
	return out, err
}

// History pages through past predictions. A non-positive limit falls back to
// the default page size; a negative offset is clamped to zero.
func (c *Client) History(ctx context.Context, limit, offset int) (types.PredictionHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryPage
	}
	if offset < 0 {
		offset = 0
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out types.PredictionHistory
	err := c.doJSON(ctx, http.MethodGet, "/predictions/history", q, nil, &out)
	return out, err
}

// Retrain is fire-and-forget: the server acknowledges and runs the job on
// its own; there is no status polling here.
func (c *Client) Retrain(ctx context.Context) (types.RetrainResponse, error) {
	var out types.RetrainResponse
	err := c.doJSON(ctx, http.MethodPost, "/model/retrain", nil, nil, &out)
	return out, err
}

func summarize(preds []types.PredictionResponse) types.BatchSummary {
	s := types.BatchSummary{TotalCustomers: len(preds)}
	if len(preds) == 0 {
		return s
	}
	var confSum float64
	for _, p := range preds {
		if p.Decision() == 1 {
			s.ChurnCount++
		}
		confSum += p.Confidence
	}
	s.ChurnRate = float64(s.ChurnCount) / float64(len(preds))
	s.AvgConfidence = confSum / float64(len(preds))
	return s
}

// doJSON runs one JSON round trip with bounded exponential backoff.
// 5xx and transport errors are retried inside the window; 4xx and decode
// failures are permanent.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload, target interface{}) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return &APIError{Message: fmt.Sprintf("encode request: %v", err)}
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.RetryWindow
	var lastErr *APIError
	op := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			lastErr = &APIError{Message: err.Error()}
			return backoff.Permanent(lastErr)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = &APIError{Message: err.Error()}
			return lastErr
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: snippet(data)}
			return lastErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: snippet(data)}
			return backoff.Permanent(lastErr)
		}
		if target == nil {
			return nil
		}
		if err := json.Unmarshal(data, target); err != nil {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response body: %v", err)}
			return backoff.Permanent(lastErr)
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			c.log.WithField("endpoint", endpoint).WithError(lastErr).Warn("request failed")
			return lastErr
		}
		return &APIError{Message: err.Error()}
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		s = "empty body"
	}
	return s
}
