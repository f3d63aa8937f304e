package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/utils"
)

// RemoteFile is the metadata probed from a remote URL before download.
// Size is -1 when the origin does not announce a Content-Length.
type RemoteFile struct {
	Name string
	Size int64
}

// Scratch is a temporary file holding a downloaded payload between the
// origin and the destination. Callers must Remove it on every exit path.
type Scratch struct {
	path string
	Size int64
}

// Open returns a fresh read stream over the scratch content.
func (sc *Scratch) Open() (io.ReadCloser, error) {
	return os.Open(sc.path)
}

// Remove deletes the scratch file. Safe to call more than once.
func (sc *Scratch) Remove() {
	_ = os.Remove(sc.path)
}

// Path returns the scratch file location. Exposed for tests.
func (sc *Scratch) Path() string {
	return sc.path
}

// Fetcher downloads remote files to scratch storage so they can be
// streamed onward to a destination.
type Fetcher struct {
	meta       *http.Client // short timeout, metadata only
	transfer   *http.Client // long timeout, payload transfers
	scratchDir string
	logger     logger.Logger
}

// NewFetcher creates a fetcher. metaTimeout bounds the HEAD probe,
// transferTimeout bounds the whole download.
func NewFetcher(metaTimeout, transferTimeout time.Duration, log logger.Logger) *Fetcher {
	return &Fetcher{
		meta:       &http.Client{Timeout: metaTimeout},
		transfer:   &http.Client{Timeout: transferTimeout},
		scratchDir: os.TempDir(),
		logger:     log,
	}
}

// IsSupportedURL reports whether raw names a fetchable resource.
func IsSupportedURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// FileNameFromURL derives a display filename from the last path segment,
// query stripped, with a fallback for bare URLs.
func FileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "unknown.iso"
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "unknown.iso"
	}
	return name
}

// Probe issues a HEAD request to learn the remote file's name and size
// before committing to a transfer.
func (f *Fetcher) Probe(ctx context.Context, rawURL string) (*RemoteFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := f.meta.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("url returned HTTP %d", resp.StatusCode)
	}

	size := resp.ContentLength // -1 when unannounced
	return &RemoteFile{
		Name: FileNameFromURL(rawURL),
		Size: size,
	}, nil
}

// Download streams the remote payload into a scratch file, incrementally,
// without holding it in memory. On any failure the scratch file is
// removed before returning; on success the caller owns the Scratch and
// must Remove it when done.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (*Scratch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := f.transfer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	scratchPath := filepath.Join(f.scratchDir, "keeper-"+uuid.NewString()+".part")
	out, err := os.Create(scratchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		_ = os.Remove(scratchPath)
		if err == nil {
			err = closeErr
		}
		return nil, fmt.Errorf("failed to write scratch file: %w", err)
	}

	f.logger.Info("downloaded to scratch",
		logger.String("url", rawURL),
		logger.Int64("bytes", written))

	return &Scratch{path: scratchPath, Size: written}, nil
}
