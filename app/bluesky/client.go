package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const DefaultPDSHost = "https://bsky.social"

const (
	createSessionPath  = "/xrpc/com.atproto.server.createSession"
	refreshSessionPath = "/xrpc/com.atproto.server.refreshSession"
	uploadBlobPath     = "/xrpc/com.atproto.repo.uploadBlob"
	createRecordPath   = "/xrpc/com.atproto.repo.createRecord"
)

// ErrAuthFailed marks login and session-refresh failures. Without a valid
// session nothing can be published, so callers treat it as fatal for the
// whole run.
var ErrAuthFailed = errors.New("authentication failed")

// Client holds one authenticated session against a PDS. The session is
// exclusively owned by the client and mutated in place on refresh. Not safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	host       string
	session    Session
}

// Login creates a session with the identifier and app password and returns a
// client bound to it.
func Login(ctx context.Context, httpClient *http.Client, host, identifier, password string) (*Client, error) {
	c := &Client{httpClient: httpClient, host: host}

	body, err := json.Marshal(createSessionRequest{Identifier: identifier, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host+createSessionPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: create session returned %s", ErrAuthFailed, responseSummary(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(&c.session); err != nil {
		return nil, fmt.Errorf("%w: failed to decode session: %v", ErrAuthFailed, err)
	}

	return c, nil
}

func (c *Client) Handle() string {
	return c.session.Handle
}

func (c *Client) Did() string {
	return c.session.Did
}

// refreshSession exchanges the refresh token for a new token set, replacing
// the session in place.
func (c *Client) refreshSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+refreshSessionPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.session.RefreshJwt)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: refresh session returned %s", ErrAuthFailed, responseSummary(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(&c.session); err != nil {
		return fmt.Errorf("%w: failed to decode refreshed session: %v", ErrAuthFailed, err)
	}

	slog.Debug("Session refreshed", "handle", c.session.Handle)
	return nil
}

// doWithRefresh sends an authenticated request. On a 401 the session is
// refreshed exactly once and the request is rebuilt with the new access token
// and retried; a second 401 surfaces as a plain request failure so an expired
// refresh token cannot cause a retry loop.
func (c *Client) doWithRefresh(ctx context.Context, build func(accessJwt string) (*http.Request, error)) (*http.Response, error) {
	resp, err := c.sendAuthed(build)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return checkStatus(resp)
	}
	resp.Body.Close()

	if err := c.refreshSession(ctx); err != nil {
		return nil, err
	}

	resp, err = c.sendAuthed(build)
	if err != nil {
		return nil, err
	}
	return checkStatus(resp)
}

func (c *Client) sendAuthed(build func(accessJwt string) (*http.Request, error)) (*http.Response, error) {
	req, err := build(c.session.AccessJwt)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return c.httpClient.Do(req)
}

// UploadBlob uploads raw bytes under the original content type and returns
// the blob reference to attach to a post.
func (c *Client) UploadBlob(ctx context.Context, data []byte, contentType string) (*Blob, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := c.doWithRefresh(ctx, func(accessJwt string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+uploadBlobPath, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessJwt)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload blob: %w", err)
	}
	defer resp.Body.Close()

	var uploaded UploadBlobResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	return &uploaded.Blob, nil
}

// CreateRecord submits the composed post under the authenticated account.
func (c *Client) CreateRecord(ctx context.Context, record CreateRecordRequest) (*CreateRecordResponse, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	resp, err := c.doWithRefresh(ctx, func(accessJwt string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+createRecordPath, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessJwt)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	defer resp.Body.Close()

	var created CreateRecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode record response: %w", err)
	}

	return &created, nil
}

func checkStatus(resp *http.Response) (*http.Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, fmt.Errorf("request failed: %s", responseSummary(resp))
}

// responseSummary renders the status plus a truncated body for error
// messages. XRPC errors carry their reason in a small JSON body.
func responseSummary(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(body) == 0 {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, body)
}
