package mesos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

// Config describes the cluster client configuration.
type Config struct {
	// AdStaxURL is the orchestration layer endpoint exposing /v2/info.
	AdStaxURL  string
	HTTPClient *http.Client
}

// Client queries the orchestration layer, the Mesos master, and individual
// agents. Every call is a single synchronous request.
type Client struct {
	adstax *url.URL
	http   *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.AdStaxURL)
	if base == "" {
		return nil, errors.New("mesos: adstax url is required")
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	adstax, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("mesos: parse adstax url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{adstax: adstax, http: client}, nil
}

type infoResponse struct {
	MarathonConfig struct {
		MesosLeaderUIURL string `json:"mesos_leader_ui_url"`
	} `json:"marathon_config"`
}

// LeaderURL discovers the Mesos master leader through the orchestration
// layer's info endpoint.
func (c *Client) LeaderURL(ctx context.Context) (string, error) {
	var info infoResponse
	endpoint := c.adstax.JoinPath("v2", "info")
	if err := c.getJSON(ctx, endpoint.String(), &info); err != nil {
		return "", err
	}
	leader := strings.TrimRight(strings.TrimSpace(info.MarathonConfig.MesosLeaderUIURL), "/")
	if leader == "" {
		return "", fmt.Errorf("mesos: info endpoint %s reported no leader url", endpoint)
	}
	return leader, nil
}

// MasterState fetches the leader's full state document.
func (c *Client) MasterState(ctx context.Context, leaderURL string) (State, error) {
	var state State
	if err := c.getJSON(ctx, strings.TrimRight(leaderURL, "/")+"/state.json", &state); err != nil {
		return State{}, err
	}
	return state, nil
}

// AgentState fetches one agent's state document. agent is host:port.
func (c *Client) AgentState(ctx context.Context, agent string) (State, error) {
	var state State
	if err := c.getJSON(ctx, "http://"+agent+"/state.json", &state); err != nil {
		return State{}, err
	}
	return state, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("mesos: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mesos: get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mesos: get %s returned status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mesos: decode %s: %w", endpoint, err)
	}
	return nil
}
