// Package github pushes project files to a GitHub repository through the
// contents API, one commit per file.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultCommitMessage is used when the caller does not supply one.
const DefaultCommitMessage = "Update game project via AIGameForge"

// File is one file to write into the repository.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SyncResult reports the outcome of a sync. On failure Error carries the
// message returned by the GitHub API so the caller can show it verbatim.
type SyncResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Client talks to the GitHub REST API. The access token is passed per
// call and never stored on the client.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a GitHub client. baseURL defaults to the public API host.
func New(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// SyncFiles writes each file to the repository in order, stopping at the
// first failure. Files already committed before a failure stay committed.
func (c *Client) SyncFiles(ctx context.Context, token, owner, repo string, files []File, commitMessage string) SyncResult {
	if token == "" || owner == "" || repo == "" {
		return SyncResult{Error: "github token, owner, and repo are required"}
	}
	if commitMessage == "" {
		commitMessage = DefaultCommitMessage
	}

	for _, file := range files {
		if err := c.putFile(ctx, token, owner, repo, file, commitMessage); err != nil {
			c.logger.Warn("github sync aborted", "path", file.Path, "error", err)
			return SyncResult{Error: err.Error()}
		}
		c.logger.Debug("synced file", "path", file.Path)
	}

	return SyncResult{
		Success: true,
		URL:     fmt.Sprintf("https://github.com/%s/%s", owner, repo),
	}
}

// putFile creates or updates one file. The contents API requires the
// current blob sha when overwriting, so each write is a read then a put.
func (c *Client) putFile(ctx context.Context, token, owner, repo string, file File, commitMessage string) error {
	contentsURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo), file.Path)

	sha := c.currentSHA(ctx, token, contentsURL)

	payload := map[string]string{
		"message": commitMessage,
		"content": base64.StdEncoding.EncodeToString([]byte(file.Content)),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", file.Path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, contentsURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", file.Path, err)
	}
	c.setHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("writing %s: %w", file.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to sync %s: %s", file.Path, apiMessage(respBody, resp.StatusCode))
	}
	return nil
}

// currentSHA looks up the existing blob sha for a path. Any failure,
// including a plain 404 for a new file, is treated as no existing file.
func (c *Client) currentSHA(ctx context.Context, token, contentsURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentsURL, nil)
	if err != nil {
		return ""
	}
	c.setHeaders(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var existing struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
		return ""
	}
	return existing.SHA
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

// apiMessage extracts the "message" field from a GitHub error body,
// falling back to the status code.
func apiMessage(body []byte, statusCode int) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return fmt.Sprintf("github api returned %d", statusCode)
}
