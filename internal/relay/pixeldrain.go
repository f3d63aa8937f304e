package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/utils"
)

// DefaultFileHostURL is the production endpoint of the file host.
const DefaultFileHostURL = "https://pixeldrain.com"

// PixeldrainClient uploads files to the general-purpose file host. The
// transfer streams through a pipe; the payload never resides in memory at
// once.
type PixeldrainClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

// NewPixeldrainClient creates a client for the file host. transferTimeout
// bounds a whole upload (large files take a while).
func NewPixeldrainClient(baseURL, apiKey string, transferTimeout time.Duration, log logger.Logger) *PixeldrainClient {
	if baseURL == "" {
		baseURL = DefaultFileHostURL
	}
	return &PixeldrainClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: transferTimeout,
		},
		logger: log,
	}
}

// Upload streams r to the file host as a multipart form and returns the
// destination reference. The host answers 200 or 201 on success; both are
// accepted. On a non-success response the raw body is folded verbatim
// into the error.
func (c *PixeldrainClient) Upload(ctx context.Context, r io.Reader, filename string) (*domain.UploadResult, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/file", pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	// Empty username, API key as password.
	req.SetBasicAuth("", c.apiKey)

	c.logger.Info("uploading to file host",
		logger.String("filename", filename))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("file host returned HTTP %d: %s", resp.StatusCode, body)
	}

	// The host answers text/plain, so decode the body manually.
	var parsed struct {
		ID   string `json:"id"`
		Size int64  `json:"size"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	if parsed.ID == "" {
		return nil, fmt.Errorf("file host response missing file id: %s", body)
	}

	return &domain.UploadResult{
		OK:          true,
		Destination: domain.DestinationFileHost,
		FileID:      parsed.ID,
		DownloadURL: fmt.Sprintf("%s/api/file/%s", c.baseURL, parsed.ID),
		ViewURL:     fmt.Sprintf("%s/u/%s", c.baseURL, parsed.ID),
		Size:        parsed.Size,
	}, nil
}
