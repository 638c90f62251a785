package intake

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/jmaxwell/sellforge/pkg/ident"
)

// System defines the public contract for intake domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	AddDocuments(ctx context.Context, uploads []Upload) ([]RegisterResult, error)
	AddImages(ctx context.Context, uploads []Upload) ([]RegisterResult, error)
	SetTags(filename string, data []byte) (int, error)
	SetToggles(images, tags *bool)

	Snapshot() Snapshot
	Validate() ValidationResult
	Reset() error
}

type system struct {
	mu       sync.RWMutex
	spoolDir string
	logger   *slog.Logger

	items         []Item
	images        []CompanionImage
	tags          map[string]string
	imagesEnabled bool
	tagsEnabled   bool
}

// New creates an intake system that spools uploads under spoolDir.
func New(spoolDir string, logger *slog.Logger) System {
	return &system{
		spoolDir: spoolDir,
		logger:   logger.With("system", "intake"),
	}
}

func (s *system) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

// AddDocuments registers primary disclosure documents. Files whose names do
// not yield an identifier are still registered: they become immediate
// per-item failures when the batch runs, not intake errors. Identifiers are
// unique within a batch; a file whose identifier is already registered is
// rejected per-file.
func (s *system) AddDocuments(ctx context.Context, uploads []Upload) ([]RegisterResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	items := make([]Item, len(uploads))
	results := make([]RegisterResult, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(spoolWorkers(len(uploads)))

	for i, upload := range uploads {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			identifier, _ := ident.Extract(upload.Filename)
			results[i] = RegisterResult{Filename: upload.Filename, Identifier: identifier}

			path, err := s.spool("docs", upload)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}

			items[i] = Item{
				ID:         uuid.New(),
				Identifier: identifier,
				Filename:   upload.Filename,
				Path:       path,
				SizeBytes:  int64(len(upload.Data)),
				PageCount:  pdfPageCount(s.logger, upload),
				UploadedAt: time.Now(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	seen := make(map[string]struct{}, len(s.items))
	for _, existing := range s.items {
		if existing.Identifier != "" {
			seen[existing.Identifier] = struct{}{}
		}
	}
	for i, item := range items {
		if results[i].Error != "" {
			continue
		}
		if item.Identifier != "" {
			if _, dup := seen[item.Identifier]; dup {
				results[i].Error = "duplicate identifier"
				os.Remove(item.Path)
				continue
			}
			seen[item.Identifier] = struct{}{}
		}
		s.items = append(s.items, item)
	}
	s.mu.Unlock()

	s.logger.Info("documents registered", "count", len(uploads))
	return results, nil
}

// AddImages registers companion images and turns the image toggle on.
// Images whose names do not yield an identifier are rejected per-file:
// they could never be matched to an item.
func (s *system) AddImages(ctx context.Context, uploads []Upload) ([]RegisterResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	images := make([]CompanionImage, len(uploads))
	results := make([]RegisterResult, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(spoolWorkers(len(uploads)))

	for i, upload := range uploads {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			results[i] = RegisterResult{Filename: upload.Filename}

			if !allowedImage(upload.Filename) {
				results[i].Error = "unsupported image type"
				return nil
			}

			identifier, ok := ident.Extract(upload.Filename)
			if !ok {
				results[i].Error = "could not extract a valid identifier"
				return nil
			}
			results[i].Identifier = identifier

			path, err := s.spool("images", upload)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}

			images[i] = CompanionImage{
				Identifier: identifier,
				Filename:   upload.Filename,
				Path:       path,
				UploadedAt: time.Now(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.imagesEnabled = true
	for i, img := range images {
		if results[i].Error == "" && results[i].Identifier != "" {
			s.images = append(s.images, img)
		}
	}
	s.mu.Unlock()

	s.logger.Info("images registered", "count", len(uploads))
	return results, nil
}

// SetTags parses and installs the companion tag table, replacing any
// previous table, and turns the tag toggle on. Returns the row count.
func (s *system) SetTags(filename string, data []byte) (int, error) {
	tags, err := ParseTagTable(filename, data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.tags = tags
	s.tagsEnabled = true
	s.mu.Unlock()

	s.logger.Info("tag table installed", "filename", filename, "rows", len(tags))
	return len(tags), nil
}

// SetToggles updates the companion toggles. Nil leaves a toggle unchanged.
// Turning a toggle off clears its companion data.
func (s *system) SetToggles(images, tags *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if images != nil {
		s.imagesEnabled = *images
		if !*images {
			s.images = nil
		}
	}
	if tags != nil {
		s.tagsEnabled = *tags
		if !*tags {
			s.tags = nil
		}
	}
}

func (s *system) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Items:         make([]Item, len(s.items)),
		Images:        make([]CompanionImage, len(s.images)),
		Tags:          make(map[string]string, len(s.tags)),
		ImagesEnabled: s.imagesEnabled,
		TagsEnabled:   s.tagsEnabled,
	}
	copy(snap.Items, s.items)
	copy(snap.Images, s.images)
	for id, tag := range s.tags {
		snap.Tags[id] = tag
	}

	return snap
}

// Validate runs the matching gate over the current intake state.
func (s *system) Validate() ValidationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	primary := make(map[string]struct{})
	for _, item := range s.items {
		if item.Identifier != "" {
			primary[item.Identifier] = struct{}{}
		}
	}

	companions := make(map[string]map[string]struct{})
	var enabledEmpty []string

	if s.imagesEnabled {
		if len(s.images) == 0 {
			enabledEmpty = append(enabledEmpty, LabelImages)
		} else {
			set := make(map[string]struct{}, len(s.images))
			for _, img := range s.images {
				set[img.Identifier] = struct{}{}
			}
			companions[LabelImages] = set
		}
	}

	if s.tagsEnabled {
		if len(s.tags) == 0 {
			enabledEmpty = append(enabledEmpty, LabelTags)
		} else {
			set := make(map[string]struct{}, len(s.tags))
			for id := range s.tags {
				set[id] = struct{}{}
			}
			companions[LabelTags] = set
		}
	}

	return Validate(primary, companions, enabledEmpty)
}

// Reset discards all registered items and companions and clears the spool.
func (s *system) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.images = nil
	s.tags = nil
	s.imagesEnabled = false
	s.tagsEnabled = false

	for _, sub := range []string{"docs", "images"} {
		if err := os.RemoveAll(filepath.Join(s.spoolDir, sub)); err != nil {
			return fmt.Errorf("clear spool %s: %w", sub, err)
		}
	}

	s.logger.Info("intake reset")
	return nil
}

func (s *system) spool(sub string, upload Upload) (string, error) {
	dir := filepath.Join(s.spoolDir, sub)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create spool dir: %w", err)
	}

	// uuid prefix keeps identically named uploads from clobbering each other
	path := filepath.Join(dir, uuid.NewString()+"_"+filepath.Base(upload.Filename))
	if err := os.WriteFile(path, upload.Data, 0640); err != nil {
		return "", fmt.Errorf("spool %s: %w", upload.Filename, err)
	}

	return path, nil
}

func pdfPageCount(logger *slog.Logger, upload Upload) *int {
	if strings.ToLower(filepath.Ext(upload.Filename)) != ".pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(upload.Data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "filename", upload.Filename, "error", err)
		return nil
	}

	return &count
}

func allowedImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

func spoolWorkers(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}
