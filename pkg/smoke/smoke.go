// Package smoke probes a deployed serving API from the outside,
// the way a client would use it.
package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mlopslab/mlopsctl/pkg/utils/retry"
)

const (
	// DefaultAttempts is how many times the probe is tried before
	// giving up. Fresh rollouts need a moment to start serving.
	DefaultAttempts = 5

	// DefaultInterval is the wait between attempts.
	DefaultInterval = 5 * time.Second
)

var (
	ErrUnhealthy  = errors.New("health check failed")
	ErrPrediction = errors.New("prediction check failed")
)

// IrisSample is the fixed feature vector posted to /predict.
//
// Any syntactically valid sample does; the probe checks that the model
// answers, not what it answers.
func IrisSample() map[string]float64 {
	return map[string]float64{
		"sepal_length": 5.1,
		"sepal_width":  3.5,
		"petal_length": 1.4,
		"petal_width":  0.2,
	}
}

// Client probes one serving API endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

type Option func(*Client) *Client

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) *Client {
		c.http = h
		return c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) *Client {
		c.logger = l
		return c
	}
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  log.New(io.Discard, "", log.LstdFlags),
	}
	for _, opt := range options {
		c = opt(c)
	}
	return c
}

// Health checks GET /health. The endpoint is healthy when it answers
// 200 with {"status": "healthy"}.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnhealthy, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnhealthy, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET /health answered %s", ErrUnhealthy, resp.Status)
	}

	report := struct {
		Status string `json:"status"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return fmt.Errorf("%w: unreadable response: %s", ErrUnhealthy, err)
	}
	if report.Status != "healthy" {
		return fmt.Errorf(`%w: status is %q (want "healthy")`, ErrUnhealthy, report.Status)
	}
	return nil
}

// Predict posts features to /predict and requires a "prediction"
// field in the answer.
func (c *Client) Predict(ctx context.Context, features map[string]float64) (any, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPrediction, err)
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPrediction, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPrediction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: POST /predict answered %s", ErrPrediction, resp.Status)
	}

	payload := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: unreadable response: %s", ErrPrediction, err)
	}
	prediction, ok := payload["prediction"]
	if !ok {
		return nil, fmt.Errorf(`%w: response has no "prediction" field`, ErrPrediction)
	}
	return prediction, nil
}

// Run probes health and prediction, retrying up to attempts times
// with backoff between attempts.
func (c *Client) Run(ctx context.Context, attempts int, backoff retry.Backoff) error {
	if attempts < 1 {
		attempts = 1
	}

	nth := 0
	wait := func(ctx context.Context) error {
		if nth == 0 {
			// no delay before the first attempt
			return retry.NoBackoff(ctx)
		}
		return backoff(ctx)
	}

	_, err := retry.Blocking(ctx, wait, func() (struct{}, error) {
		nth += 1
		if err := c.probe(ctx); err != nil {
			c.logger.Printf("smoke test attempt %d/%d failed: %v", nth, attempts, err)
			if nth < attempts {
				return struct{}{}, fmt.Errorf("%w: %w", retry.ErrRetry, err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	c.logger.Printf("smoke test passed (%s)", c.baseURL)
	return nil
}

func (c *Client) probe(ctx context.Context) error {
	if err := c.Health(ctx); err != nil {
		return err
	}
	prediction, err := c.Predict(ctx, IrisSample())
	if err != nil {
		return err
	}
	c.logger.Printf("prediction: %v", prediction)
	return nil
}
