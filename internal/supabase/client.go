// Package supabase implements the cloud project store against a Supabase
// project's PostgREST and auth endpoints. Only generic CRUD over the
// game_projects table is used; row-level security on the hosted side is
// what scopes rows to their owner.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aigameforge/forge/internal/domain/project"
	"github.com/aigameforge/forge/internal/domain/session"
	"github.com/aigameforge/forge/internal/repository"
)

const projectsTable = "game_projects"

// Client talks to one Supabase project. The anon key authenticates the
// client application; the session's access token authenticates the user.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Supabase client.
func New(baseURL, anonKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type row struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Script      string    `json:"script"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type insertRow struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Script      string `json:"script,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

func (r row) toProject() project.Project {
	imageURL := r.ImageURL
	if imageURL == "" {
		imageURL = project.DefaultImageURL
	}
	return project.Project{
		ID:          r.ID,
		Title:       r.Title,
		Type:        r.Type,
		Description: r.Description,
		Script:      r.Script,
		ImageURL:    imageURL,
		CreatedAt:   r.CreatedAt,
	}
}

// ListByOwner fetches all rows owned by the session's user, newest first.
func (c *Client) ListByOwner(ctx context.Context, sess *session.Session) ([]project.Project, error) {
	query := fmt.Sprintf("select=*&user_id=eq.%s&order=created_at.desc", url.QueryEscape(sess.UserID))
	body, err := c.do(ctx, sess, http.MethodGet, "/rest/v1/"+projectsTable+"?"+query, nil, "")
	if err != nil {
		return nil, err
	}

	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: decoding project rows: %v", repository.ErrUpstream, err)
	}
	projects := make([]project.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, r.toProject())
	}
	return projects, nil
}

// Insert creates a new row and returns the stored copy with its
// store-assigned id and creation time.
func (c *Client) Insert(ctx context.Context, sess *session.Session, proj project.Project) (*project.Project, error) {
	payload, err := json.Marshal(insertRow{
		UserID:      sess.UserID,
		Title:       proj.Title,
		Type:        proj.Type,
		Description: proj.Description,
		Script:      proj.Script,
		ImageURL:    proj.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding project row: %w", err)
	}

	body, err := c.do(ctx, sess, http.MethodPost, "/rest/v1/"+projectsTable, payload, "return=representation")
	if err != nil {
		return nil, err
	}

	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert returned no row", repository.ErrUpstream)
	}
	created := rows[0].toProject()
	c.logger.Debug("inserted cloud project", "id", created.ID)
	return &created, nil
}

// UpdateScript overwrites the script column of one owned row.
func (c *Client) UpdateScript(ctx context.Context, sess *session.Session, id, script string) error {
	payload, err := json.Marshal(map[string]string{"script": script})
	if err != nil {
		return fmt.Errorf("encoding script update: %w", err)
	}
	query := fmt.Sprintf("id=eq.%s&user_id=eq.%s", url.QueryEscape(id), url.QueryEscape(sess.UserID))
	_, err = c.do(ctx, sess, http.MethodPatch, "/rest/v1/"+projectsTable+"?"+query, payload, "")
	return err
}

// Delete removes one owned row.
func (c *Client) Delete(ctx context.Context, sess *session.Session, id string) error {
	query := fmt.Sprintf("id=eq.%s&user_id=eq.%s", url.QueryEscape(id), url.QueryEscape(sess.UserID))
	_, err := c.do(ctx, sess, http.MethodDelete, "/rest/v1/"+projectsTable+"?"+query, nil, "")
	return err
}

// ResolveSession validates an access token against the auth endpoint and
// returns the session principal it belongs to.
func (c *Client) ResolveSession(ctx context.Context, accessToken string) (*session.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("creating auth request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading auth response: %v", repository.ErrUpstream, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, repository.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: auth returned %d: %s", repository.ErrUpstream, resp.StatusCode, upstreamMessage(body))
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &user); err != nil || user.ID == "" {
		return nil, fmt.Errorf("%w: auth response missing user id", repository.ErrUpstream)
	}
	return &session.Session{UserID: user.ID, AccessToken: accessToken}, nil
}

func (c *Client) do(ctx context.Context, sess *session.Session, method, path string, payload []byte, prefer string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", repository.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, repository.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, repository.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s %s returned %d: %s",
			repository.ErrUpstream, method, path, resp.StatusCode, upstreamMessage(body))
	}
	return body, nil
}

// upstreamMessage pulls the human-readable message out of a PostgREST
// error body, falling back to the raw body.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return string(body)
}
