// Package pipeline implements the four per-item collaborators the
// orchestrator sequences: extraction of a structured summary from the
// analysis platform, transformation of that summary into publishable
// fields, sell sheet rendering, and the ordered publish sub-steps against
// the publishing platform's content-entry form.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/jmaxwell/sellforge/internal/batch"
	"github.com/jmaxwell/sellforge/internal/session"
)

// Extraction platform selectors. The platform generates a technology
// summary from an uploaded disclosure document.
const (
	selDisclosureInput = `input[type="file"]`
	selGenerateButton  = `button[data-action="generate"]`
	selSummaryTitle    = `#summary-title`
	selSummaryBody     = `#summary-body`
)

// Extractor pulls a structured summary for one disclosure from the
// extraction platform: upload the document, trigger generation, and scrape
// the produced summary from the page.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("system", "extractor")}
}

// Extract drives the extraction tab for one item and fills st.Summary.
func (e *Extractor) Extract(ctx context.Context, tab *session.Tab, st *batch.ItemState) error {
	var title, body string

	err := tab.Run(
		chromedp.WaitVisible(selDisclosureInput, chromedp.ByQuery),
		chromedp.SetUploadFiles(selDisclosureInput, []string{st.Item.Path}, chromedp.ByQuery),
		chromedp.Click(selGenerateButton, chromedp.ByQuery),
		chromedp.WaitVisible(selSummaryBody, chromedp.ByQuery),
		chromedp.Text(selSummaryTitle, &title, chromedp.ByQuery),
		chromedp.Text(selSummaryBody, &body, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("extract summary for %s: %w", st.Item.Identifier, err)
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Errorf("extraction platform returned an empty summary for %s", st.Item.Identifier)
	}

	st.Summary = &batch.Summary{
		Identifier: st.Item.Identifier,
		Title:      title,
		Body:       body,
	}

	e.logger.Info("summary extracted", "identifier", st.Item.Identifier, "chars", len(body))
	return nil
}
