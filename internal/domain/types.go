package domain

import "time"

// Destination identifies where a relayed file ended up.
type Destination string

const (
	// DestinationAttachment is the chat platform's own file storage.
	// The platform enforces a hard ceiling around 8 GiB per file.
	DestinationAttachment Destination = "telegram"
	// DestinationFileHost is the external general-purpose file host.
	DestinationFileHost Destination = "pixeldrain"
)

// Label returns the user-facing platform name (ex: "PIXELDRAIN").
func (d Destination) Label() string {
	switch d {
	case DestinationAttachment:
		return "TELEGRAM"
	case DestinationFileHost:
		return "PIXELDRAIN"
	default:
		return "UNKNOWN"
	}
}

// PingResult is the outcome of a single health-check call.
// HTTPStatus is 0 when no HTTP response was received.
type PingResult struct {
	OK         bool
	Message    string
	HTTPStatus int
}

// UploadResult describes one completed (or failed) relay attempt.
type UploadResult struct {
	OK          bool
	Destination Destination
	FileID      string // opaque identifier on the destination
	DownloadURL string
	ViewURL     string // empty for the attachment destination
	Size        int64
	Err         string
}

// CatalogInfo carries descriptive fields for a matched catalog item.
type CatalogInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Architecture string `json:"architecture"`
}

// MatchResult is the outcome of reporting an upload to the catalog service.
// A failed or skipped notification degrades to Matched=false; the upload
// itself is still considered successful.
type MatchResult struct {
	Matched   bool
	CatalogID string
	Info      *CatalogInfo
	Err       string
}

// Folder is a client-side upload label. The file host has no real folder
// concept; this carries no storage semantics on the destination.
type Folder struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	FileCount int       `json:"file_count"`
}
