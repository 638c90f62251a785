package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jmaxwell/sellforge/internal/batch"
)

// Renderer produces the one-page sell sheet PDF for an item from its
// formatted fields and optional companion image, via pdfcpu's declarative
// page creation.
type Renderer struct {
	outputDir string
	logger    *slog.Logger
}

// NewRenderer creates a Renderer that writes sell sheets under outputDir.
func NewRenderer(outputDir string, logger *slog.Logger) *Renderer {
	return &Renderer{
		outputDir: outputDir,
		logger:    logger.With("system", "renderer"),
	}
}

// RenderPath returns the on-disk location of the sell sheet for an
// identifier. The orchestrator verifies this path after a reported success.
func (r *Renderer) RenderPath(identifier string) string {
	return filepath.Join(r.outputDir, fmt.Sprintf("%s_sell_sheet.pdf", identifier))
}

// Render writes the sell sheet for st and fills st.ArtifactPath.
func (r *Renderer) Render(ctx context.Context, st *batch.ItemState) error {
	if st.Fields == nil {
		return fmt.Errorf("no formatted fields for %s", st.Item.Identifier)
	}

	if err := os.MkdirAll(r.outputDir, 0750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	spec, err := sheetSpec(st)
	if err != nil {
		return fmt.Errorf("build sheet layout: %w", err)
	}

	path := r.RenderPath(st.Item.Identifier)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sell sheet %s: %w", path, err)
	}
	defer f.Close()

	if err := api.Create(nil, bytes.NewReader(spec), f, nil); err != nil {
		os.Remove(path)
		return fmt.Errorf("render sell sheet %s: %w", st.Item.Identifier, err)
	}

	st.ArtifactPath = path

	r.logger.Info("sell sheet rendered", "identifier", st.Item.Identifier, "path", path)
	return nil
}

// sheetSpec builds the pdfcpu page description JSON for one sell sheet.
type sheetText struct {
	Value    string    `json:"value"`
	Anchor   string    `json:"anchor,omitempty"`
	Position []float64 `json:"position,omitempty"`
	Font     sheetFont `json:"font"`
	Width    float64   `json:"width,omitempty"`
}

type sheetFont struct {
	Name string  `json:"name"`
	Size int     `json:"size"`
	Col  string  `json:"col,omitempty"`
	Lh   float64 `json:"lheight,omitempty"`
}

type sheetImage struct {
	Src      string    `json:"src"`
	Anchor   string    `json:"anchor,omitempty"`
	Position []float64 `json:"position,omitempty"`
	Width    float64   `json:"width,omitempty"`
}

type sheetContent struct {
	Text   []sheetText  `json:"text,omitempty"`
	Images []sheetImage `json:"image,omitempty"`
}

type sheetPage struct {
	Content sheetContent `json:"content"`
}

type sheet struct {
	Paper string               `json:"paper"`
	Pages map[string]sheetPage `json:"pages"`
}

func sheetSpec(st *batch.ItemState) ([]byte, error) {
	fields := st.Fields

	content := sheetContent{
		Text: []sheetText{
			{
				Value:    fields.Title,
				Anchor:   "tc",
				Position: []float64{0, -40},
				Font:     sheetFont{Name: "Helvetica-Bold", Size: 22},
			},
			{
				Value:    st.Item.Identifier,
				Anchor:   "tc",
				Position: []float64{0, -70},
				Font:     sheetFont{Name: "Helvetica", Size: 11, Col: "#555555"},
			},
			{
				Value:    fields.Statement,
				Anchor:   "tc",
				Position: []float64{0, -100},
				Font:     sheetFont{Name: "Helvetica-Oblique", Size: 13},
				Width:    480,
			},
			{
				Value:    fields.Description,
				Anchor:   "tc",
				Position: []float64{0, -150},
				Font:     sheetFont{Name: "Helvetica", Size: 10, Lh: 1.3},
				Width:    480,
			},
			section("Advantages", fields.Advantages, -320),
			section("Problems Solved", fields.Problems, -440),
			section("Applications", fields.Applications, -560),
		},
	}

	if st.ImagePath != "" {
		content.Images = append(content.Images, sheetImage{
			Src:      st.ImagePath,
			Anchor:   "br",
			Position: []float64{-30, 30},
			Width:    160,
		})
	}

	doc := sheet{
		Paper: "A4",
		Pages: map[string]sheetPage{"1": {Content: content}},
	}

	return json.Marshal(doc)
}

func section(heading string, entries []string, offset float64) sheetText {
	var b strings.Builder
	b.WriteString(heading)
	for _, entry := range entries {
		b.WriteString("\n• ")
		b.WriteString(entry)
	}

	return sheetText{
		Value:    b.String(),
		Anchor:   "tl",
		Position: []float64{60, offset},
		Font:     sheetFont{Name: "Helvetica", Size: 10, Lh: 1.25},
		Width:    480,
	}
}
