package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dealroom/pkg/circuitbreaker"
	"dealroom/pkg/metrics"
	"dealroom/pkg/otel"
	"dealroom/pkg/trace"
)

const generatePath = "/v1/generate"

// GenerateRequest is the body sent to the scoring service.
type GenerateRequest struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// GenerateResponse is what the scoring service returns for a project.
type GenerateResponse struct {
	Plan         json.RawMessage `json:"plan"`
	Budget       json.RawMessage `json:"budget"`
	Roadmap      json.RawMessage `json:"roadmap"`
	SuccessScore *float64        `json:"successScore"`
	Explain      json.RawMessage `json:"explain"`
}

// Client calls the external scoring service through a circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewClient(baseURL string, timeout time.Duration, cb *circuitbreaker.CircuitBreaker) *Client {
	if cb == nil {
		cb = circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
			FailureThreshold:    3,
			SuccessThreshold:    2,
			Timeout:             30 * time.Second,
			HalfOpenMaxRequests: 2,
		})
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

func (c *Client) Generate(ctx context.Context, in GenerateRequest) (*GenerateResponse, error) {
	ctx, span := otel.StartSpan(ctx, "ai.generate")
	defer span.End()

	var out *GenerateResponse
	err := c.cb.Execute(func() error {
		start := time.Now()
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if traceID := trace.FromContext(ctx); traceID != "" {
			req.Header.Set(trace.HeaderName, traceID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordAICallLatency(generatePath, "error", time.Since(start))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			metrics.RecordAICallLatency(generatePath, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("ai-service status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		}

		var decoded GenerateResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			metrics.RecordAICallLatency(generatePath, "decode_error", time.Since(start))
			return fmt.Errorf("decoding ai-service response: %w", err)
		}
		metrics.RecordAICallLatency(generatePath, "success", time.Since(start))
		out = &decoded
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}
