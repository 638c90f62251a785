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

// Publishing platform content-entry form selectors, one per sub-step.
const (
	selFormName        = `#product-name`
	selFormTitleID     = `#title-id`
	selFormStatement   = `#executive-statement`
	selFormOverview    = `#overview`
	selFormAdvantages  = `#advantages`
	selFormProblems    = `#problems-solved`
	selFormApps        = `#applications`
	selFormMiscInfo    = `#misc-info`
	selFormAttachment  = `#attachment input[type="file"]`
	selFormTag         = `#tag`
	selFormContactLink = `#contact-link`
	selFormOverride    = `#override-description`
	selFormPublish     = `button[type="submit"]`
)

// Publisher fills and submits the publishing platform's content-entry form
// as an ordered sequence of independently isolated sub-steps. The first
// failing sub-step halts the sequence for that item only.
type Publisher struct {
	contactLink string
	logger      *slog.Logger
}

// NewPublisher creates a Publisher that records contactLink on every item.
func NewPublisher(contactLink string, logger *slog.Logger) *Publisher {
	return &Publisher{
		contactLink: contactLink,
		logger:      logger.With("system", "publisher"),
	}
}

// Sequence returns the ordered publish sub-steps for one item. Each step is
// a uniform batch.Step so the executor can isolate and classify failures
// per form field.
func (p *Publisher) Sequence(tab *session.Tab, st *batch.ItemState) []batch.Step {
	fields := st.Fields

	steps := []batch.Step{
		setField(tab, batch.StepPublishName, selFormName, func() string {
			return fields.Title
		}),
		setField(tab, batch.StepPublishTitleID, selFormTitleID, func() string {
			return fmt.Sprintf("%s (%s)", fields.Title, st.Item.Identifier)
		}),
		setField(tab, batch.StepPublishStatement, selFormStatement, func() string {
			return fields.Statement
		}),
		setField(tab, batch.StepPublishOverview, selFormOverview, func() string {
			return fields.Description
		}),
		setField(tab, batch.StepPublishAdvantages, selFormAdvantages, func() string {
			return strings.Join(fields.Advantages, "\n")
		}),
		setField(tab, batch.StepPublishProblems, selFormProblems, func() string {
			return strings.Join(fields.Problems, "\n")
		}),
		setField(tab, batch.StepPublishApplications, selFormApps, func() string {
			return strings.Join(fields.Applications, "\n")
		}),
		setField(tab, batch.StepPublishMiscInfo, selFormMiscInfo, func() string {
			return fmt.Sprintf("Disclosure %s", st.Item.Identifier)
		}),
		{
			Name: batch.StepPublishArtifact,
			Invoke: func(ctx context.Context) error {
				return tab.Run(
					chromedp.WaitVisible(selFormAttachment, chromedp.ByQuery),
					chromedp.SetUploadFiles(selFormAttachment, []string{st.ArtifactPath}, chromedp.ByQuery),
				)
			},
		},
	}

	// The tag sub-step only runs when the companion tag table supplied one.
	if st.Tag != "" {
		steps = append(steps, setField(tab, batch.StepPublishTag, selFormTag, func() string {
			return st.Tag
		}))
	}

	steps = append(steps,
		setField(tab, batch.StepPublishContactLink, selFormContactLink, func() string {
			return p.contactLink
		}),
		setField(tab, batch.StepPublishOverride, selFormOverride, func() string {
			return fields.Statement
		}),
		batch.Step{
			Name: batch.StepPublishSubmit,
			Invoke: func(ctx context.Context) error {
				return tab.Run(
					chromedp.Click(selFormPublish, chromedp.ByQuery),
					chromedp.WaitNotPresent(selFormPublish, chromedp.ByQuery),
				)
			},
		},
	)

	return steps
}

// setField builds a sub-step that clears a form control and types the value
// produced by fn at invocation time, after earlier steps have run.
func setField(tab *session.Tab, name, selector string, fn func() string) batch.Step {
	return batch.Step{
		Name: name,
		Invoke: func(ctx context.Context) error {
			return tab.Run(
				chromedp.WaitVisible(selector, chromedp.ByQuery),
				chromedp.SetValue(selector, "", chromedp.ByQuery),
				chromedp.SendKeys(selector, fn(), chromedp.ByQuery),
			)
		},
	}
}
