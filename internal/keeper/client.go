// internal/keeper/client.go
package keeper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

// Client talks to the escrow HTTP API on behalf of the external trigger.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *utils.APIError `json:"error"`
}

// APIError is a non-success response from the escrow API.
type APIError struct {
	Status int
	Code   string
	Reason string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d %s: %s", e.Status, e.Code, e.Reason)
}

func (c *Client) Check(ctx context.Context) (models.CheckResult, error) {
	var result models.CheckResult
	if err := c.do(ctx, http.MethodGet, "/upkeep/check", nil, &result); err != nil {
		return models.CheckResult{}, err
	}
	return result, nil
}

func (c *Client) Perform(ctx context.Context, performData []byte) (models.UpkeepReport, error) {
	payload := struct {
		PerformData []byte `json:"perform_data"`
	}{PerformData: performData}

	var result struct {
		Report models.UpkeepReport `json:"report"`
	}
	if err := c.do(ctx, http.MethodPost, "/upkeep/perform", payload, &result); err != nil {
		return models.UpkeepReport{}, err
	}
	return result.Report, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send %s request: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Reason: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code, apiErr.Reason = env.Error.Code, env.Error.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
