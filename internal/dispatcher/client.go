package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

// DriverState is the lifecycle state the dispatcher reports for a submission.
type DriverState string

const (
	StateQueued      DriverState = "QUEUED"
	StateSubmitted   DriverState = "SUBMITTED"
	StateRunning     DriverState = "RUNNING"
	StateFinished    DriverState = "FINISHED"
	StateRelaunching DriverState = "RELAUNCHING"
	StateFailed      DriverState = "FAILED"
	StateKilled      DriverState = "KILLED"
	StateError       DriverState = "ERROR"
	StateNotFound    DriverState = "NOT_FOUND"
)

// Config describes the dispatcher client configuration.
type Config struct {
	BaseURL      string
	SparkVersion string
	HTTPClient   *http.Client
}

// Client wraps the Spark dispatcher submissions REST API.
type Client struct {
	baseURL      *url.URL
	sparkVersion string
	http         *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("dispatcher: base url is required")
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	version := strings.TrimSpace(cfg.SparkVersion)
	if version == "" {
		version = "2.4.0"
	}
	return &Client{baseURL: baseURL, sparkVersion: version, http: client}, nil
}

// StatusResponse is the dispatcher's answer to a status query.
type StatusResponse struct {
	Action             string      `json:"action"`
	ServerSparkVersion string      `json:"serverSparkVersion"`
	SubmissionID       string      `json:"submissionId"`
	Success            bool        `json:"success"`
	DriverState        DriverState `json:"driverState"`
	Message            string      `json:"message"`
}

// SubmitRequest describes a driver to launch on the cluster.
type SubmitRequest struct {
	AppResource          string
	MainClass            string
	AppArgs              []string
	SparkProperties      map[string]string
	EnvironmentVariables map[string]string
}

// SubmitResponse is the dispatcher's answer to a create request.
type SubmitResponse struct {
	Action       string `json:"action"`
	SubmissionID string `json:"submissionId"`
	Success      bool   `json:"success"`
	Message      string `json:"message"`
}

// KillResponse is the dispatcher's answer to a kill request.
type KillResponse struct {
	Action       string `json:"action"`
	SubmissionID string `json:"submissionId"`
	Success      bool   `json:"success"`
	Message      string `json:"message"`
}

// Status queries the lifecycle state of a submission.
func (c *Client) Status(ctx context.Context, submissionID string) (StatusResponse, error) {
	var out StatusResponse
	endpoint := c.baseURL.JoinPath("v1", "submissions", "status", submissionID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return StatusResponse{}, err
	}
	if out.DriverState == "" && !out.Success {
		// Older dispatchers omit driverState for unknown submissions.
		out.DriverState = StateNotFound
	}
	return out, nil
}

// Submit asks the dispatcher to launch a new driver.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	if strings.TrimSpace(req.AppResource) == "" {
		return SubmitResponse{}, errors.New("dispatcher: app resource is required")
	}
	payload := map[string]any{
		"action":               "CreateSubmissionRequest",
		"appResource":          req.AppResource,
		"clientSparkVersion":   c.sparkVersion,
		"appArgs":              emptyIfNil(req.AppArgs),
		"sparkProperties":      emptyMapIfNil(req.SparkProperties),
		"environmentVariables": emptyMapIfNil(req.EnvironmentVariables),
	}
	if strings.TrimSpace(req.MainClass) != "" {
		payload["mainClass"] = req.MainClass
	}

	var out SubmitResponse
	endpoint := c.baseURL.JoinPath("v1", "submissions", "create")
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &out); err != nil {
		return SubmitResponse{}, err
	}
	return out, nil
}

// Kill asks the dispatcher to terminate a submission's driver.
func (c *Client) Kill(ctx context.Context, submissionID string) (KillResponse, error) {
	var out KillResponse
	endpoint := c.baseURL.JoinPath("v1", "submissions", "kill", submissionID)
	if err := c.do(ctx, http.MethodPost, endpoint, nil, &out); err != nil {
		return KillResponse{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method string, endpoint *url.URL, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("dispatcher: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("dispatcher: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("dispatcher: %s %s: %w", method, endpoint.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("dispatcher: %s %s returned status %d", method, endpoint.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("dispatcher: decode response: %w", err)
	}
	return nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func emptyMapIfNil(values map[string]string) map[string]string {
	if values == nil {
		return map[string]string{}
	}
	return values
}
