// Package yougile is a thin client for the YouGile REST API v2.
package yougile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
)

const defaultBaseURL = "https://yougile.com/api-v2"

// taskURLFormat builds the browsable link relayed to the user; the API
// itself only returns the task id.
const taskURLFormat = "https://yougile.com/app/task/%s"

// ErrNotConfigured means the API key or project id is missing. Reported once
// at construction; handlers render it as an administrator problem.
var ErrNotConfigured = errors.New("yougile is not configured")

// Config carries everything the client needs; APIKey and ProjectID are
// mandatory.
type Config struct {
	BaseURL         string
	APIKey          string
	ProjectID       string
	DefaultColumnID string
}

// Task is what the bot relays back to the chat after creation. It is never
// persisted.
type Task struct {
	ID    string
	Title string
	URL   string
}

// Column is a workflow stage within the configured project.
type Column struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ProjectID string `json:"projectId"`
}

// Client wraps the three YouGile calls the bot needs. It is stateless and
// safe for concurrent use; one instance is built at startup and injected
// into handlers.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	projectID       string
	defaultColumnID string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: YOUGILE_API_KEY is empty", ErrNotConfigured)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: YOUGILE_PROJECT_ID is empty", ErrNotConfigured)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:      &http.Client{},
		baseURL:         baseURL,
		apiKey:          cfg.APIKey,
		projectID:       cfg.ProjectID,
		defaultColumnID: cfg.DefaultColumnID,
	}, nil
}

// CreateTask files a new task. The target column is columnID if given, else
// the configured default, else the first column of the project. When no
// column resolves, or the service answers with anything but 200/201, or the
// response body does not parse, the result is (nil, nil): not created, not
// an error. A non-nil error means the request itself failed.
func (c *Client) CreateTask(ctx context.Context, title, description, columnID, executorID string) (*Task, error) {
	finalColumnID := columnID
	if finalColumnID == "" {
		finalColumnID = c.defaultColumnID
	}
	if finalColumnID == "" {
		columns, err := c.ListColumns(ctx)
		if err != nil {
			return nil, err
		}
		if len(columns) > 0 {
			finalColumnID = columns[0].ID
		}
	}
	if finalColumnID == "" {
		log.Printf("create task: no column to file %q into", title)
		return nil, nil
	}

	payload := map[string]interface{}{
		"title":    title,
		"columnId": finalColumnID,
	}
	if description != "" {
		payload["description"] = description
	}
	if executorID != "" {
		payload["assigned"] = []string{executorID}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		log.Printf("create task: status %d: %s", resp.StatusCode, raw)
		return nil, nil
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.ID == "" {
		log.Printf("create task: unparseable response: %v", err)
		return nil, nil
	}

	return &Task{
		ID:    created.ID,
		Title: title,
		URL:   fmt.Sprintf(taskURLFormat, created.ID),
	}, nil
}

// ListColumns returns the columns of the configured project. A non-200
// answer yields an empty list, not an error.
func (c *Client) ListColumns(ctx context.Context) ([]Column, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/columns", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("list columns: status %d", resp.StatusCode)
		return nil, nil
	}

	var page struct {
		Content []Column `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}

	columns := make([]Column, 0, len(page.Content))
	for _, col := range page.Content {
		if col.ProjectID == c.projectID {
			columns = append(columns, col)
		}
	}
	return columns, nil
}

// FindUserByEmail returns the YouGile id of the company member with exactly
// this email, or "" when there is none (including non-200 answers).
func (c *Client) FindUserByEmail(ctx context.Context, email string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("find user: status %d", resp.StatusCode)
		return "", nil
	}

	var page struct {
		Content []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return "", fmt.Errorf("decode users: %w", err)
	}

	for _, user := range page.Content {
		if user.Email == email {
			return user.ID, nil
		}
	}
	return "", nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	// Each call is an independent round trip; no connection reuse contract.
	req.Close = true
}
