package batch

import (
	"context"
	"fmt"
	"log/slog"
)

// Step is one named operation in the per-item pipeline. Every step — the
// four pipeline stages and each publish sub-step — runs through the same
// uniform shape so the executor can isolate and classify any failure.
type Step struct {
	Name   string
	Invoke func(ctx context.Context) error
}

// Pipeline step names. Publish sub-step names mirror the publishing form's
// field order.
const (
	StepExtract   = "extract"
	StepTransform = "transform"
	StepRender    = "render"

	StepPublishName         = "publish:name"
	StepPublishTitleID      = "publish:title-id"
	StepPublishStatement    = "publish:statement"
	StepPublishOverview     = "publish:overview"
	StepPublishAdvantages   = "publish:advantages"
	StepPublishProblems     = "publish:problems"
	StepPublishApplications = "publish:applications"
	StepPublishMiscInfo     = "publish:misc-info"
	StepPublishArtifact     = "publish:artifact"
	StepPublishTag          = "publish:tag"
	StepPublishContactLink  = "publish:contact-link"
	StepPublishOverride     = "publish:override-description"
	StepPublishSubmit       = "publish:submit"
)

// stepMessages maps step names to the human-readable failure category shown
// to the operator. Unlisted steps classify as unexpected.
var stepMessages = map[string]string{
	StepExtract:   "the extraction platform could not process the disclosure",
	StepTransform: "the extracted summary was malformed",
	StepRender:    "sell sheet generation failed",

	StepPublishName:         "could not set the product name",
	StepPublishTitleID:      "could not set the title and identifier",
	StepPublishStatement:    "could not set the executive statement",
	StepPublishOverview:     "could not set the overview",
	StepPublishAdvantages:   "could not set the advantages list",
	StepPublishProblems:     "could not set the problems-solved list",
	StepPublishApplications: "could not set the applications list",
	StepPublishMiscInfo:     "could not set the miscellaneous info",
	StepPublishArtifact:     "could not attach the sell sheet",
	StepPublishTag:          "could not set the tag",
	StepPublishContactLink:  "could not set the contact link",
	StepPublishOverride:     "could not set the override description",
	StepPublishSubmit:       "publishing the record failed",
}

// Executor runs one step at a time and converts any failure — returned
// error or panic — into a classified FailureReport. Nothing escapes this
// boundary; it is the unit of fault isolation that lets a batch continue
// past any single broken step.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a step executor.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger.With("system", "executor")}
}

// Execute invokes the step for the given item. It returns nil on success,
// otherwise a FailureReport carrying the classified category message and
// the original cause.
func (e *Executor) Execute(ctx context.Context, identifier string, step Step) (report *FailureReport) {
	defer func() {
		if r := recover(); r != nil {
			report = e.fail(identifier, step.Name, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := step.Invoke(ctx); err != nil {
		return e.fail(identifier, step.Name, err.Error())
	}

	return nil
}

func (e *Executor) fail(identifier, stepName, cause string) *FailureReport {
	e.logger.Error(fmt.Sprintf("%s - %s failed: %s", identifier, stepName, cause))

	return &FailureReport{
		Step:    stepName,
		Message: classify(stepName),
		Cause:   cause,
	}
}

func classify(stepName string) string {
	if msg, ok := stepMessages[stepName]; ok {
		return msg
	}
	return "unexpected error"
}
