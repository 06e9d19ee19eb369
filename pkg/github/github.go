// Package github is a minimal client for the GitHub Contents API: read the
// current version of a file, create or update it with optimistic concurrency,
// and probe repository access.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL targets the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

const maxErrorBody = 2048

// Config contains client construction parameters.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Target identifies the repository and credentials for one call. Credentials
// come from live settings, so they are passed per call rather than fixed at
// construction.
type Target struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
}

func (t Target) branch() string {
	if t.Branch == "" {
		return "main"
	}
	return t.Branch
}

// RemoteFile is the store's current knowledge of a path.
type RemoteFile struct {
	SHA     string `json:"sha"`
	Content string `json:"content"`
	HTMLURL string `json:"html_url"`
}

// PutRequest describes a create-or-update write. SHA must carry the current
// version token when updating and stay empty when creating.
type PutRequest struct {
	Message string
	Content string
	SHA     string
}

// WriteResult reports the outcome of a successful write.
type WriteResult struct {
	HTMLURL string
}

// Repository is the descriptor returned by an access probe.
type Repository struct {
	FullName      string `json:"full_name"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
}

// Client talks to the GitHub Contents API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// New constructs a GitHub client.
func New(cfg Config, logger zerolog.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger.With().Str("component", "github_client").Logger(),
	}
}

// GetFile fetches the current file state at path. A missing file returns
// (nil, nil); absence is not an error.
func (c *Client) GetFile(ctx context.Context, target Target, path string) (*RemoteFile, error) {
	endpoint := fmt.Sprintf("%s?ref=%s", c.contentsURL(target, path), url.QueryEscape(target.branch()))

	resp, err := c.do(ctx, http.MethodGet, endpoint, target.Token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.classify(resp)
	}

	var file RemoteFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, &APIError{Kind: KindOther, StatusCode: resp.StatusCode, Detail: fmt.Sprintf("failed to decode response: %v", err)}
	}

	return &file, nil
}

// PutFile creates or updates the file at path and returns the resulting URL.
func (c *Client) PutFile(ctx context.Context, target Target, path string, req PutRequest) (*WriteResult, error) {
	body := map[string]string{
		"message": req.Message,
		"content": req.Content,
		"branch":  target.branch(),
	}
	if req.SHA != "" {
		body["sha"] = req.SHA
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{Kind: KindOther, Detail: fmt.Sprintf("failed to encode request: %v", err)}
	}

	resp, err := c.do(ctx, http.MethodPut, c.contentsURL(target, path), target.Token, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.classify(resp)
	}

	var result struct {
		Content struct {
			HTMLURL string `json:"html_url"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &APIError{Kind: KindOther, StatusCode: resp.StatusCode, Detail: fmt.Sprintf("failed to decode response: %v", err)}
	}

	c.logger.Info().Str("path", path).Msg("file written to github")

	return &WriteResult{HTMLURL: result.Content.HTMLURL}, nil
}

// TestAccess verifies the credentials can reach the repository. Used by the
// options UI, not by the push path.
func (c *Client) TestAccess(ctx context.Context, target Target) (*Repository, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(target.Owner), url.PathEscape(target.Repo))

	resp, err := c.do(ctx, http.MethodGet, endpoint, target.Token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classify(resp)
	}

	var repo Repository
	if err := json.NewDecoder(resp.Body).Decode(&repo); err != nil {
		return nil, &APIError{Kind: KindOther, StatusCode: resp.StatusCode, Detail: fmt.Sprintf("failed to decode response: %v", err)}
	}

	return &repo, nil
}

func (c *Client) contentsURL(target Target, path string) string {
	segments := strings.Split(path, "/")
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}

	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(target.Owner), url.PathEscape(target.Repo), strings.Join(escaped, "/"))
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &APIError{Kind: KindOther, Detail: fmt.Sprintf("failed to build request: %v", err)}
	}

	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level failures are transient by classification.
		return nil, &APIError{Kind: KindTransient, Detail: err.Error()}
	}

	return resp, nil
}

func (c *Client) classify(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{
		Kind:       kindForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Detail:     strings.TrimSpace(string(detail)),
	}

	c.logger.Warn().Int("status", resp.StatusCode).Str("kind", string(apiErr.Kind)).Msg("github API error")

	return apiErr
}
