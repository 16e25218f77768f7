// Package snow is a thin client for the ServiceNow Table API, used to push
// knowledge-base articles into the kb_knowledge table. It is a plain
// request/response wrapper: retry, classification, and logging follow the
// backend API client; field mapping is deliberately minimal.
package snow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// knowledgeTable is the ServiceNow table articles are pushed into.
const knowledgeTable = "kb_knowledge"

const (
	maxRetries  = 3
	baseBackoff = 2 * time.Second
	userAgent   = "kbcenter-go/0.1"
)

// Sentinel errors for status classification.
var (
	ErrUnauthorized = errors.New("snow: unauthorized")
	ErrNotFound     = errors.New("snow: not found")
	ErrThrottled    = errors.New("snow: throttled")
	ErrServerError  = errors.New("snow: server error")
)

// SnowError wraps a sentinel with the HTTP status and response body.
type SnowError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *SnowError) Error() string {
	return fmt.Sprintf("snow: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *SnowError) Unwrap() error {
	return e.Err
}

func classifyStatus(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}

// Client talks to one ServiceNow instance with basic auth.
type Client struct {
	instanceURL string
	username    string
	password    string
	httpClient  *http.Client
	logger      *slog.Logger

	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewClient creates a ServiceNow client.
// instanceURL is like "https://acme.service-now.com".
func NewClient(instanceURL, username, password string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		instanceURL: instanceURL,
		username:    username,
		password:    password,
		httpClient:  httpClient,
		logger:      logger,
		sleepFunc: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

// knowledgeRecord mirrors the kb_knowledge row fields this client touches.
type knowledgeRecord struct {
	SysID         string `json:"sys_id,omitempty"`
	ShortDesc     string `json:"short_description"`
	Text          string `json:"text"`
	CorrelationID string `json:"correlation_id"`
	Workflow      string `json:"workflow_state,omitempty"`
}

// singleResponse wraps one record ("result" envelope).
type singleResponse struct {
	Result knowledgeRecord `json:"result"`
}

// listResponse wraps a record list.
type listResponse struct {
	Result []knowledgeRecord `json:"result"`
}

// do executes one request with retry for GETs; write methods get a single
// attempt.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var attempt int
	for {
		req, err := http.NewRequestWithContext(ctx, method, c.instanceURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("snow: creating request: %w", err)
		}

		req.SetBasicAuth(c.username, c.password)
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("snow: %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if readErr != nil {
			return nil, fmt.Errorf("snow: reading response: %w", readErr)
		}

		if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
			return respBody, nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		if method == http.MethodGet && retryable && attempt < maxRetries {
			backoff := baseBackoff * time.Duration(1<<attempt)
			c.logger.Warn("snow: retrying",
				slog.String("path", path),
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt+1),
			)

			if err := c.sleepFunc(ctx, backoff); err != nil {
				return nil, fmt.Errorf("snow: request canceled: %w", err)
			}

			attempt++

			continue
		}

		return nil, &SnowError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Err:        classifyStatus(resp.StatusCode),
		}
	}
}

// findByCorrelation looks up an existing kb_knowledge record by the article
// id it was pushed from.
func (c *Client) findByCorrelation(ctx context.Context, correlationID string) (*knowledgeRecord, error) {
	query := url.Values{}
	query.Set("sysparm_query", "correlation_id="+correlationID)
	query.Set("sysparm_limit", "1")

	body, err := c.do(ctx, http.MethodGet, "/api/now/table/"+knowledgeTable+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("snow: decoding lookup response: %w", err)
	}

	if len(lr.Result) == 0 {
		return nil, nil
	}

	return &lr.Result[0], nil
}

// PushArticle upserts one article into kb_knowledge: lookup by correlation
// id, then insert or update. Returns the ServiceNow sys_id.
func (c *Client) PushArticle(ctx context.Context, articleID, title, bodyText string) (string, error) {
	existing, err := c.findByCorrelation(ctx, articleID)
	if err != nil {
		return "", err
	}

	record := knowledgeRecord{
		ShortDesc:     title,
		Text:          bodyText,
		CorrelationID: articleID,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("snow: encoding record: %w", err)
	}

	var (
		method = http.MethodPost
		path   = "/api/now/table/" + knowledgeTable
	)

	if existing != nil {
		method = http.MethodPatch
		path += "/" + existing.SysID
	}

	respBody, err := c.do(ctx, method, path, payload)
	if err != nil {
		return "", err
	}

	var sr singleResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return "", fmt.Errorf("snow: decoding push response: %w", err)
	}

	c.logger.Debug("pushed article",
		slog.String("article_id", articleID),
		slog.String("sys_id", sr.Result.SysID),
		slog.Bool("updated", existing != nil),
	)

	return sr.Result.SysID, nil
}
