package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmaxwell/sellforge/internal/intake"
	"github.com/jmaxwell/sellforge/internal/session"
)

// Reporter receives a progress update after every item, success or failure.
// It is a side effect only and never influences control flow.
type Reporter func(completed, total int, identifier string)

// Orchestrator drives one batch: for each item it runs the fixed ordered
// step sequence through the executor, records the outcome, reports
// progress, and honors cancellation between items.
type Orchestrator struct {
	pipeline Pipeline
	executor *Executor
	logger   *slog.Logger
	report   Reporter
}

// NewOrchestrator creates an orchestrator over the given pipeline
// collaborators. report may be nil.
func NewOrchestrator(pipeline Pipeline, executor *Executor, logger *slog.Logger, report Reporter) *Orchestrator {
	if report == nil {
		report = func(int, int, string) {}
	}
	return &Orchestrator{
		pipeline: pipeline,
		executor: executor,
		logger:   logger.With("system", "orchestrator"),
		report:   report,
	}
}

// Run processes every item in order against the shared session, recording
// one outcome per item into agg. Cancellation is checked between items:
// items not yet started are omitted, completed outcomes are kept.
func (o *Orchestrator) Run(
	ctx context.Context,
	run *Run,
	snap intake.Snapshot,
	sess *session.Session,
	agg *Aggregator,
) {
	imagePaths := make(map[string]string, len(snap.Images))
	for _, img := range snap.Images {
		imagePaths[img.Identifier] = img.Path
	}

	total := len(snap.Items)
	for i, item := range snap.Items {
		if run.Cancelled() {
			o.logger.Info("run cancelled", "completed", i, "total", total)
			return
		}

		st := &ItemState{
			Item:      item,
			ImagePath: imagePaths[item.Identifier],
			Tag:       snap.Tags[item.Identifier],
		}

		outcome := o.processItem(ctx, sess, st)
		agg.Record(outcome)

		label := item.Identifier
		if label == "" {
			label = item.Filename
		}
		run.advance(i+1, label)
		o.report(i+1, total, label)
	}
}

// processItem runs the ordered pipeline for one item, terminal on first
// failure. Exactly one of success or failure is recorded per item.
func (o *Orchestrator) processItem(ctx context.Context, sess *session.Session, st *ItemState) ItemOutcome {
	outcome := ItemOutcome{
		Identifier: st.Item.Identifier,
		Filename:   st.Item.Filename,
	}

	if st.Item.Identifier == "" {
		outcome.Status = StatusFailed
		outcome.FailureReasons = []string{"could not extract a valid identifier"}
		return outcome
	}

	for _, step := range o.itemSteps(sess, st) {
		if report := o.executor.Execute(ctx, st.Item.Identifier, step); report != nil {
			outcome.Status = StatusFailed
			outcome.FailureReasons = append(outcome.FailureReasons, report.String())
			return outcome
		}
	}

	artifact, err := os.ReadFile(st.ArtifactPath)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.FailureReasons = append(outcome.FailureReasons,
			fmt.Sprintf("artifact could not be read back (%v)", err))
		return outcome
	}

	outcome.Status = StatusSuccess
	outcome.Artifact = artifact
	return outcome
}

// itemSteps assembles the full ordered step list for one item: the three
// pipeline stages, the render verification, and the publish sub-steps.
func (o *Orchestrator) itemSteps(sess *session.Session, st *ItemState) []Step {
	steps := []Step{
		{
			Name: StepExtract,
			Invoke: func(ctx context.Context) error {
				return o.pipeline.Extract.Extract(ctx, sess.Extraction, st)
			},
		},
		{
			Name: StepTransform,
			Invoke: func(ctx context.Context) error {
				return o.pipeline.Transform.Format(ctx, st)
			},
		},
		{
			Name: StepRender,
			Invoke: func(ctx context.Context) error {
				if err := o.pipeline.Render.Render(ctx, st); err != nil {
					return err
				}
				return verifyArtifact(st.ArtifactPath)
			},
		},
	}

	return append(steps, o.pipeline.Publish.Sequence(sess.Publishing, st)...)
}

// verifyArtifact confirms the rendered artifact actually exists on disk.
// A render step reporting success without producing the file is itself a
// failure.
func verifyArtifact(path string) error {
	if path == "" {
		return fmt.Errorf("artifact not produced")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("artifact not produced: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("artifact not produced: empty file")
	}
	return nil
}
