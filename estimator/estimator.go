// Package estimator sends feature vectors to the rent prediction model.
package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rental-estimator/models"
)

// DevelopmentPrediction is returned by FixedPredictor when no model is deployed.
const DevelopmentPrediction = 2500.5

// ErrNoPrediction is returned when the model answers without a prediction.
var ErrNoPrediction = errors.New("estimator: model returned no prediction")

// Predictor turns one feature vector into a monthly rent estimate.
type Predictor interface {
	Predict(ctx context.Context, features models.FeatureVector) (float64, error)
}

// HTTPPredictor calls a model server that accepts pandas "split" style
// frames: {"columns": [...], "data": [[...]]}.
type HTTPPredictor struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPPredictor creates a predictor posting to endpoint. A nil client gets
// a default one with the given timeout.
func NewHTTPPredictor(endpoint string, timeout time.Duration, httpClient *http.Client) *HTTPPredictor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPPredictor{endpoint: endpoint, httpClient: httpClient}
}

type predictRequest struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, features models.FeatureVector) (float64, error) {
	body, err := json.Marshal(predictRequest{
		Columns: features.Names(),
		Data:    [][]any{features.Values()},
	})
	if err != nil {
		return 0, fmt.Errorf("estimator: encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("estimator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("estimator: call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("estimator: model returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("estimator: decode response: %w", err)
	}
	if len(out.Predictions) == 0 {
		return 0, ErrNoPrediction
	}
	return out.Predictions[0], nil
}

// FixedPredictor always returns Value. It stands in for the model during
// development.
type FixedPredictor struct {
	Value float64
}

// NewFixedPredictor returns a FixedPredictor answering DevelopmentPrediction.
func NewFixedPredictor() *FixedPredictor {
	return &FixedPredictor{Value: DevelopmentPrediction}
}

func (p *FixedPredictor) Predict(ctx context.Context, _ models.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.Value, nil
}
