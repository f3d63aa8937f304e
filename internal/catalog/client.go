package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/utils"
)

// HostedItem is one catalog entry as reported by the backend.
type HostedItem struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	FileSize int64  `json:"file_size"`
}

// Client talks to the backend catalog service. Every method degrades
// rather than blocks: a missing credential or a failed call never stops
// the upload flow from reporting success.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

// NewClient creates a catalog client. apiKey may be empty; the client then
// skips all network calls.
func NewClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// Configured reports whether a catalog credential is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type autoMatchRequest struct {
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	Platform    string `json:"platform"`
	FileID      string `json:"file_id"`
	DownloadURL string `json:"download_url"`
}

type autoMatchResponse struct {
	Matched bool                `json:"matched"`
	ISOID   string              `json:"iso_id"`
	Message string              `json:"message"`
	ISOInfo *domain.CatalogInfo `json:"iso_info"`
}

// AutoMatch reports a completed transfer so the backend can match it
// against a known catalog item. Exactly one network call, no retry; any
// failure degrades to an unmatched result.
func (c *Client) AutoMatch(ctx context.Context, fileName string, fileSize int64, dest domain.Destination, fileID, downloadURL string) *domain.MatchResult {
	if !c.Configured() {
		c.logger.Warn("no catalog credential configured, skipping auto-match")
		return &domain.MatchResult{Matched: false, Err: "no catalog credential configured"}
	}

	payload, err := json.Marshal(autoMatchRequest{
		FileName:    fileName,
		FileSize:    fileSize,
		Platform:    string(dest),
		FileID:      fileID,
		DownloadURL: downloadURL,
	})
	if err != nil {
		return &domain.MatchResult{Matched: false, Err: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/admin/hosted-iso/auto-match", bytes.NewReader(payload))
	if err != nil {
		return &domain.MatchResult{Matched: false, Err: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("catalog auto-match failed",
			logger.Error(err))
		return &domain.MatchResult{Matched: false, Err: err.Error()}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.logger.Error("catalog auto-match rejected",
			logger.Int("http_status", resp.StatusCode))
		return &domain.MatchResult{
			Matched: false,
			Err:     fmt.Sprintf("HTTP %d: %s", resp.StatusCode, body),
		}
	}

	var parsed autoMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return &domain.MatchResult{Matched: false, Err: err.Error()}
	}

	return &domain.MatchResult{
		Matched:   parsed.Matched && parsed.ISOID != "",
		CatalogID: parsed.ISOID,
		Info:      parsed.ISOInfo,
	}
}

// ListHosted retrieves the currently hosted catalog items.
func (c *Client) ListHosted(ctx context.Context) ([]HostedItem, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("no catalog credential configured (set KEEPER_API_KEY)")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/admin/hosted-iso", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog list failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		ISOs []HostedItem `json:"isos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog list: %w", err)
	}

	return parsed.ISOs, nil
}
