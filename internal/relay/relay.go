package relay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/logger"
)

// ErrNoCredential is the configuration error returned when the file host
// is the only usable destination but no API key is configured. It fires
// before any data movement.
var ErrNoCredential = errors.New("file host credential not configured (set KEEPER_PIXELDRAIN_API_KEY)")

// Source describes a relayable file. Open is called at most once, and only
// when the chosen destination needs the bytes; the inline-attachment path
// reuses AttachmentID without any transfer.
type Source struct {
	Open         func(ctx context.Context) (io.ReadCloser, error)
	Filename     string
	Size         int64
	AttachmentID string // platform file id; empty for fetched files
}

// Service chooses the destination for a file and performs the transfer.
type Service struct {
	host      *PixeldrainClient // nil when no credential is configured
	threshold int64
	logger    logger.Logger
}

// NewService creates a relay service. host may be nil.
func NewService(host *PixeldrainClient, threshold int64, log logger.Logger) *Service {
	return &Service{
		host:      host,
		threshold: threshold,
		logger:    log,
	}
}

// Threshold returns the size above which the attachment destination is
// categorically unusable.
func (s *Service) Threshold() int64 {
	return s.threshold
}

// HostConfigured reports whether the file host credential is present.
func (s *Service) HostConfigured() bool {
	return s.host != nil
}

// Relay transfers src to a destination chosen by policy:
//
//   - size above the threshold rules out the attachment store (its
//     platform caps files around 8 GiB), so the file host is mandatory;
//   - below the threshold the attachment path is preferred when available
//     (no third-party dependency for small files);
//   - fetched files have no attachment reference and always go to the
//     file host.
func (s *Service) Relay(ctx context.Context, src Source) (*domain.UploadResult, error) {
	if src.AttachmentID != "" && src.Size <= s.threshold {
		s.logger.Info("relaying via attachment store",
			logger.String("filename", src.Filename),
			logger.Int64("size", src.Size))
		return &domain.UploadResult{
			OK:          true,
			Destination: domain.DestinationAttachment,
			FileID:      src.AttachmentID,
			DownloadURL: "tg://" + src.AttachmentID,
			Size:        src.Size,
		}, nil
	}

	if s.host == nil {
		return nil, ErrNoCredential
	}

	body, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		_ = body.Close()
	}()

	s.logger.Info("relaying via file host",
		logger.String("filename", src.Filename),
		logger.Int64("size", src.Size))
	return s.host.Upload(ctx, body, src.Filename)
}
