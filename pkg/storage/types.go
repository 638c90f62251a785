package storage

import (
	"io"
	"time"
)

// Object describes a stored blob.
type Object struct {
	Key          string    `json:"key"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ListResult is one page of blob listings.
type ListResult struct {
	Objects    []Object `json:"objects"`
	NextMarker string   `json:"next_marker,omitempty"`
}

// DownloadResult carries a blob stream plus the metadata needed to serve it.
type DownloadResult struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}
