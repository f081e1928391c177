package scriptvault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// Client is the ScriptVault HTTP client. ScriptVault stores the manuscripts
// behind feedback listings; the engine only asks it to grant read access.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// ApproveViewerPayload asks ScriptVault to let a reviewer read a script.
type ApproveViewerPayload struct {
	ScriptID     string `json:"script_id"`
	ViewerUserID string `json:"viewer_user_id"`
}

// NewClient creates a new ScriptVault client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// ApproveViewer grants a reviewer read access to a script. Callers treat this
// as fire-and-forget: a failure is logged, never rolled back into the claim.
func (c *Client) ApproveViewer(ctx context.Context, scriptID, viewerUserID uuid.UUID) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("scriptvault request error: client is nil")
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("scriptvault config error: base_url is empty")
	}

	payload, err := json.Marshal(ApproveViewerPayload{
		ScriptID:     scriptID.String(),
		ViewerUserID: viewerUserID.String(),
	})
	if err != nil {
		return fmt.Errorf("scriptvault request error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/scripts/approve-viewer", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("scriptvault request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("scriptvault request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("scriptvault responded %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
