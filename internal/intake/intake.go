// Package intake implements the batch intake domain: registration of primary
// disclosure documents, optional companion images and tag tables, and the
// matching gate that must pass before a batch run may start.
//
// Everything registered here lives for the current process only. Uploaded
// files are spooled to a working directory because the browser-driven
// pipeline steps need on-disk paths.
package intake

import (
	"time"

	"github.com/google/uuid"
)

// Companion set labels used in validation reporting.
const (
	LabelImages = "images"
	LabelTags   = "tags"
)

// Item is one unit of batch work: a primary disclosure document keyed by the
// identifier extracted from its filename. Identifier is empty when extraction
// failed; such items skip the pipeline and are recorded as immediate
// failures.
type Item struct {
	ID         uuid.UUID `json:"id"`
	Identifier string    `json:"identifier,omitempty"`
	Filename   string    `json:"filename"`
	Path       string    `json:"-"`
	SizeBytes  int64     `json:"size_bytes"`
	PageCount  *int      `json:"page_count,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// CompanionImage is an optional product image aligned to an item by identifier.
type CompanionImage struct {
	Identifier string    `json:"identifier"`
	Filename   string    `json:"filename"`
	Path       string    `json:"-"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload carries one file from the intake surface.
type Upload struct {
	Filename string
	Data     []byte
}

// RegisterResult reports the outcome of a single file within a batch upload.
// On success, Identifier is populated (documents and images only).
// On failure, Error describes the problem.
type RegisterResult struct {
	Filename   string `json:"filename"`
	Identifier string `json:"identifier,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Snapshot is a read-only view of the current intake state.
type Snapshot struct {
	Items         []Item            `json:"items"`
	Images        []CompanionImage  `json:"images"`
	Tags          map[string]string `json:"tags"`
	ImagesEnabled bool              `json:"images_enabled"`
	TagsEnabled   bool              `json:"tags_enabled"`
}
