package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/leapstack-labs/bankdash/internal/config"
	"github.com/leapstack-labs/bankdash/pkg/core"
)

// MsgUnexpectedTypes is shown when the type list does not have the expected shape.
const MsgUnexpectedTypes = "Unexpected API response format or missing 'id' property in database objects."

// ErrUnexpectedTypes wraps decoding failures of the type-list payload.
var ErrUnexpectedTypes = errors.New(MsgUnexpectedTypes)

// Client talks to the type-list and save-connection endpoints.
type Client struct {
	HTTP     *http.Client
	TypesURL string
	SaveURL  string
}

// NewClient creates a client for the given endpoints. Empty URLs use the defaults.
func NewClient(httpClient *http.Client, typesURL, saveURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	if typesURL == "" {
		typesURL = config.DefaultDatabaseTypesURL
	}
	if saveURL == "" {
		saveURL = config.DefaultSaveConnectionURL
	}
	return &Client{HTTP: httpClient, TypesURL: typesURL, SaveURL: saveURL}
}

// ListDatabaseTypes fetches the available database types.
func (c *Client) ListDatabaseTypes(ctx context.Context) ([]core.DatabaseType, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TypesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", c.TypesURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(c.TypesURL, resp); err != nil {
		return nil, err
	}

	types, err := core.DecodeDatabaseTypes(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedTypes, err)
	}
	return types, nil
}

// SaveConnection posts a connection request and returns the server's verdict.
func (c *Client) SaveConnection(ctx context.Context, body core.ConnectionRequest) (*core.SaveResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connection: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.SaveURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", c.SaveURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(c.SaveURL, resp); err != nil {
		return nil, err
	}

	var result core.SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &core.DecodeError{Path: "$", Reason: "save response is not a JSON object", Err: err}
	}
	return &result, nil
}

func checkStatus(target string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &core.StatusError{URL: target, Code: resp.StatusCode, Body: string(snippet)}
}
