package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rtiassist/internal/model"

	"go.uber.org/zap"
)

// ErrBackendUnavailable wraps transport-level failures talking to the backend.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Classifier predicts the department and candidate officers for a complaint
type Classifier interface {
	Predict(ctx context.Context, complaint string) (*model.PredictionResult, error)
}

// LetterDrafter turns a letter request into letter text
type LetterDrafter interface {
	GenerateLetter(ctx context.Context, req model.LetterRequest) (*model.LetterResponse, error)
}

// BackendError is a non-2xx answer from the backend. Detail carries the endpoint's
// structured "detail" message when it sent one.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// ErrorDetail returns the structured backend message carried by err, if any.
func ErrorDetail(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Detail
	}
	return ""
}

// BackendClient wraps the classifier/drafting backend API
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBackendClient creates a client for the backend at baseURL
func NewBackendClient(baseURL string, timeout time.Duration, logger *zap.Logger) *BackendClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackendClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("backend"),
	}
}

// Predict handles POST /predict
func (c *BackendClient) Predict(ctx context.Context, complaint string) (*model.PredictionResult, error) {
	var result model.PredictionResult
	if err := c.doJSON(ctx, http.MethodPost, "/predict", model.PredictRequest{Complaint: complaint}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateLetter handles POST /generate-letter
func (c *BackendClient) GenerateLetter(ctx context.Context, req model.LetterRequest) (*model.LetterResponse, error) {
	var resp model.LetterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/generate-letter", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health fetches the backend banner from GET /
func (c *BackendClient) Health(ctx context.Context) (*model.BackendStatus, error) {
	var status model.BackendStatus
	if err := c.doJSON(ctx, http.MethodGet, "/", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListPIOs fetches sample officers per department from GET /pios
func (c *BackendClient) ListPIOs(ctx context.Context) (*model.PIODirectory, error) {
	var dir model.PIODirectory
	if err := c.doJSON(ctx, http.MethodGet, "/pios", nil, &dir); err != nil {
		return nil, err
	}
	return &dir, nil
}

// doJSON performs exactly one request; there is no retry.
func (c *BackendClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", ErrBackendUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %v", ErrBackendUnavailable, path, err)
	}

	c.logger.Debug("response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		be := &BackendError{StatusCode: resp.StatusCode, Detail: parseDetail(respBody)}
		c.logger.Warn("backend error", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("detail", be.Detail))
		return be
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

// parseDetail extracts a string "detail" field; validation errors arrive as arrays and are ignored.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
