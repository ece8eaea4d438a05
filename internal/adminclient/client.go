// Package adminclient is a thin HTTP client against chronod's admin API,
// the collaborator chronoctl's subcommands share the way copilot-cli's
// subcommands share a config/workspace store.
package adminclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Job mirrors adminserver's jobResource wire shape.
type Job struct {
	Object   string     `json:"object"`
	Name     string     `json:"name"`
	State    string     `json:"state"`
	NextRun  *time.Time `json:"next_run,omitempty"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	RunCount int        `json:"run_count"`
}

// DescribeResult mirrors adminserver's describeResponse wire shape.
type DescribeResult struct {
	Expression  string      `json:"expression"`
	Description string      `json:"description"`
	NextRuns    []time.Time `json:"next_runs"`
}

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to a running chronod instance.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New returns a Client pointed at baseURL. A non-empty token is sent as
// a bearer Authorization header on every request; chronod rejects a
// mutating request that carries no token.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("adminclient: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("adminclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adminclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("adminclient: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
			return nil, fmt.Errorf("chronod: %s (%s)", envelope.Error.Message, envelope.Error.Code)
		}
		return nil, fmt.Errorf("chronod: unexpected status %d", resp.StatusCode)
	}
	return data, nil
}

// ListJobs returns every job chronod has registered.
func (c *Client) ListJobs() ([]Job, error) {
	data, err := c.do(http.MethodGet, "/v1/jobs", nil)
	if err != nil {
		return nil, err
	}
	var list struct {
		Data []Job `json:"data"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("adminclient: decode job list: %w", err)
	}
	return list.Data, nil
}

// GetJob returns a single job's detail.
func (c *Client) GetJob(name string) (*Job, error) {
	data, err := c.do(http.MethodGet, "/v1/jobs/"+name, nil)
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("adminclient: decode job: %w", err)
	}
	return &job, nil
}

// Pause, Resume, Stop, and Trigger drive a named job's control surface.

func (c *Client) Pause(name string) (*Job, error)  { return c.action(name, "pause") }
func (c *Client) Resume(name string) (*Job, error) { return c.action(name, "resume") }
func (c *Client) Stop(name string) (*Job, error)   { return c.action(name, "stop") }

func (c *Client) action(name, verb string) (*Job, error) {
	data, err := c.do(http.MethodPost, "/v1/jobs/"+name+"/"+verb, nil)
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("adminclient: decode job: %w", err)
	}
	return &job, nil
}

// Trigger fires name immediately and returns the assigned run ID.
func (c *Client) Trigger(name string) (string, error) {
	data, err := c.do(http.MethodPost, "/v1/jobs/"+name+"/trigger", nil)
	if err != nil {
		return "", err
	}
	var result struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("adminclient: decode trigger result: %w", err)
	}
	return result.RunID, nil
}

// Describe dry-run compiles expr and reports its description and next
// occurrences without registering a job.
func (c *Client) Describe(expr string, count int) (*DescribeResult, error) {
	data, err := c.do(http.MethodPost, "/v1/describe", map[string]any{
		"expression": expr,
		"count":      count,
	})
	if err != nil {
		return nil, err
	}
	var result DescribeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("adminclient: decode describe result: %w", err)
	}
	return &result, nil
}
