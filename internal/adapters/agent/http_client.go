package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mikey/phishdash/internal/core"
	"go.uber.org/zap"
)

const (
	scanPath   = "/agent/run"
	statusPath = "/"

	// maxBodySize bounds how much of an agent response is read
	maxBodySize = 8 << 20
)

// HTTPClient is an implementation of the AgentClient interface over the
// agent's HTTP API
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient creates a new agent client for baseURL. Timeouts are left to
// the caller's context; a nil httpClient uses http.DefaultClient.
func NewHTTPClient(baseURL string, httpClient *http.Client, logger *zap.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid agent base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("agent base URL must be absolute, got %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL: u,
		client:  httpClient,
		logger:  logger,
	}, nil
}

// RunScan triggers a scan with GET /agent/run and classifies the answer
func (c *HTTPClient) RunScan(ctx context.Context) (*core.ScanResponse, error) {
	body, err := c.get(ctx, scanPath)
	if err != nil {
		return nil, err
	}

	resp, err := core.ParseScanResponse(body)
	if err != nil {
		c.logger.Debug("Undecodable scan response", zap.Int("size", len(body)), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// Status fetches the agent's self-description from its root route
func (c *HTTPClient) Status(ctx context.Context) (*core.AgentStatus, error) {
	body, err := c.get(ctx, statusPath)
	if err != nil {
		return nil, err
	}

	var status core.AgentStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
	}
	return &status, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	target := c.baseURL.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.logger.Debug("Calling agent", zap.String("url", target))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to agent failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("%w: %s", core.ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read agent response: %w", err)
	}
	return body, nil
}
