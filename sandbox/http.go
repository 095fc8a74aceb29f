package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/logging"
	"github.com/tidwall/gjson"
)

// HTTPExecutorOptions configure the remote executor.
type HTTPExecutorOptions struct {
	// Timeout bounds a single execution round-trip.
	Timeout time.Duration
	// HTTPClient overrides the default client (tests, custom transports).
	HTTPClient *http.Client
	// Logger for per-call diagnostics.
	Logger logging.Logger
}

// HTTPExecutor ships code to a remote sandbox service over HTTP. The service
// contract is a POST of {"executor_id": ..., "code": ...} answered with a
// JSON body carrying either an "output" or an "error" field.
type HTTPExecutor struct {
	endpoint   string
	executorID string
	client     *http.Client
	logger     logging.Logger
}

// NewHTTPExecutor creates an executor bound to the sandbox endpoint and the
// configured executor identity.
func NewHTTPExecutor(endpoint, executorID string, optFns ...func(o *HTTPExecutorOptions)) *HTTPExecutor {
	opts := HTTPExecutorOptions{
		Timeout: 60 * time.Second,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPExecutor{endpoint: endpoint, executorID: executorID, client: client, logger: opts.Logger}
}

type executeRequest struct {
	ExecutorID string `json:"executor_id"`
	Code       string `json:"code"`
}

// Execute implements Executor. A missing executor identity is a hard
// configuration error; sandbox-reported failures are tagged ExecutionErrors.
func (e *HTTPExecutor) Execute(ctx context.Context, code string) (string, error) {
	if e.executorID == "" {
		return "", &core.ConfigurationError{Message: "sandbox executor identity not configured"}
	}

	body, err := json.Marshal(executeRequest{ExecutorID: e.executorID, Code: code})
	if err != nil {
		return "", fmt.Errorf("failed to encode execution request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build execution request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sandbox request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read sandbox response: %w", err)
	}

	// Failing user code is reported with an "error" body on a 2xx or 422
	// response. Any other status is transport-level (auth, routing, overload)
	// and stays untagged so it never consumes the fix retry.
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if msg := gjson.GetBytes(respBody, "error"); (ok || resp.StatusCode == http.StatusUnprocessableEntity) && msg.Exists() && msg.String() != "" {
		execErr := &core.ExecutionError{Code: code, Output: msg.String()}
		e.logger.Debug("sandbox execution failed duration=%s error=%s", time.Since(start), msg.String())
		return "", execErr
	}

	if !ok {
		return "", fmt.Errorf("sandbox returned status %d: %s", resp.StatusCode, string(respBody))
	}

	output := gjson.GetBytes(respBody, "output").String()
	e.logger.Debug("sandbox execution completed duration=%s output_bytes=%d", time.Since(start), len(output))
	return output, nil
}
