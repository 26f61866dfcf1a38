// Package ckan implements the action-invocation client for the CKAN backend
// and the error taxonomy the rest of the adapter classifies failures with.
package ckan

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Params is the keyed parameter bag of a single action call.
type Params map[string]any

// Invoker issues a single named action call against the backend. The token is
// forwarded verbatim as a bearer credential; the backend performs its own
// authorization. Failures are returned as *Error values classified per Kind.
type Invoker interface {
	Invoke(ctx context.Context, action, token string, params Params) (json.RawMessage, error)
}

// Client is an HTTP implementation of the Invoker interface, speaking the
// CKAN action API (POST {base}/api/3/action/{name} with a JSON body).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL string
	// SkipTLSVerify disables certificate verification on the outbound
	// connection. Expected to be set only in development environments.
	SkipTLSVerify bool
	HTTPClient    *http.Client
}

// NewClient creates a new Client.
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		var transport http.RoundTripper
		if opts.SkipTLSVerify {
			transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		httpClient: httpClient,
	}
}

// actionEnvelope is the CKAN action API response wrapper.
type actionEnvelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   map[string]any  `json:"error"`
}

// Invoke calls a CKAN action function and returns the raw result payload.
// No retries happen at this layer; retry decisions belong to the workflows
// above it.
func (c *Client) Invoke(ctx context.Context, action, token string, params Params) (json.RawMessage, error) {
	if params == nil {
		params = Params{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action params: %w", err)
	}

	url := c.baseURL + "/api/3/action/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewError(KindServiceUnavailable, action, "error sending request to CKAN: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindServiceUnavailable, action, "error reading CKAN response: %v", err)
	}

	var envelope actionEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, NewError(KindUnexpectedResponse, action,
			"CKAN returned a non-JSON response (status %d): %s", resp.StatusCode, truncate(respBody, 200))
	}

	if !envelope.Success {
		return nil, classify(action, envelope.Error)
	}
	return envelope.Result, nil
}

// classify maps a CKAN-reported error dict onto the adapter's taxonomy using
// the dict's __type discriminator.
func classify(action string, errDict map[string]any) *Error {
	errType, _ := errDict["__type"].(string)
	message := errorMessage(errDict)

	switch errType {
	case "Validation Error":
		return NewError(KindBadRequest, action, "CKAN validation error: %s", message)
	case "Authorization Error":
		return NewError(KindForbidden, action, "not authorized to access CKAN resource: %s", message)
	case "Not Found Error":
		return NewError(KindNotFound, action, "CKAN resource not found: %s", message)
	default:
		return NewError(KindBadRequest, action, "CKAN error: %s", message)
	}
}

// errorMessage flattens a CKAN error dict into one diagnostic string. Field
// errors keep their field names so callers can match on specific messages.
func errorMessage(errDict map[string]any) string {
	if errDict == nil {
		return "no error detail provided"
	}
	detail := make(map[string]any, len(errDict))
	for k, v := range errDict {
		if k == "__type" {
			continue
		}
		detail[k] = v
	}
	if msg, ok := detail["message"].(string); ok && len(detail) == 1 {
		return msg
	}
	encoded, err := json.Marshal(detail)
	if err != nil {
		return fmt.Sprintf("%v", detail)
	}
	return string(encoded)
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
