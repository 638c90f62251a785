package batch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jmaxwell/sellforge/internal/intake"
	"github.com/jmaxwell/sellforge/internal/session"
	"github.com/jmaxwell/sellforge/pkg/storage"
)

// SessionOpener opens the shared browser session for a run.
// *session.Manager is the production implementation.
type SessionOpener interface {
	Open(ctx context.Context) (*session.Session, error)
}

// System defines the public contract for batch run operations.
type System interface {
	Handler() *Handler

	Start() (*Run, error)
	Find(id uuid.UUID) (*Run, error)
	Cancel(id uuid.UUID) error
	Result(id uuid.UUID) (*BatchResult, error)
	Archive(id uuid.UUID) ([]byte, error)
}

type system struct {
	intake   intake.System
	sessions SessionOpener
	pipeline Pipeline
	store    storage.System
	logger   *slog.Logger
	baseCtx  context.Context

	mu     sync.Mutex
	runs   map[uuid.UUID]*Run
	active *Run
}

// New creates a batch system. Runs execute on baseCtx, which should be the
// lifecycle context so shutdown interrupts the login wait. store may be nil
// when artifact retention is disabled.
func New(
	baseCtx context.Context,
	intakeSys intake.System,
	sessions SessionOpener,
	pipeline Pipeline,
	store storage.System,
	logger *slog.Logger,
) System {
	return &system{
		intake:   intakeSys,
		sessions: sessions,
		pipeline: pipeline,
		store:    store,
		logger:   logger.With("system", "batch"),
		baseCtx:  baseCtx,
		runs:     make(map[uuid.UUID]*Run),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

// Start begins a new batch run. The intake gate must pass, at least one
// item must be registered, and only one run may be active at a time.
func (s *system) Start() (*Run, error) {
	snap := s.intake.Snapshot()
	if len(snap.Items) == 0 {
		return nil, ErrNoItems
	}
	if gate := s.intake.Validate(); !gate.Passed {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, gate.Reasons)
	}

	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return nil, ErrRunActive
	}

	run := NewRun(len(snap.Items))
	s.runs[run.ID] = run
	s.active = run
	s.mu.Unlock()

	s.logger.Info("run starting", "run_id", run.ID, "items", run.Total)
	go s.execute(run, snap)

	return run, nil
}

func (s *system) Find(id uuid.UUID) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// Cancel sets the run's cancellation flag. The item in flight finishes
// before cancellation takes effect.
func (s *system) Cancel(id uuid.UUID) error {
	run, err := s.Find(id)
	if err != nil {
		return err
	}

	run.Cancel()
	s.logger.Info("run cancellation requested", "run_id", id)
	return nil
}

func (s *system) Result(id uuid.UUID) (*BatchResult, error) {
	run, err := s.Find(id)
	if err != nil {
		return nil, err
	}

	result := run.Result()
	if result == nil {
		return nil, ErrRunInFlight
	}
	return result, nil
}

func (s *system) Archive(id uuid.UUID) ([]byte, error) {
	run, err := s.Find(id)
	if err != nil {
		return nil, err
	}

	if run.Result() == nil {
		return nil, ErrRunInFlight
	}

	archive := run.Archive()
	if len(run.Result().Successes) == 0 {
		return nil, ErrNoArchive
	}
	return archive, nil
}

// execute drives one run to completion: open the session (which includes
// the operator login window), orchestrate every item, finalize the result,
// build the archive, and optionally retain it in blob storage. The session
// is released on every path.
func (s *system) execute(run *Run, snap intake.Snapshot) {
	defer s.release(run)

	sess, err := s.sessions.Open(s.baseCtx)
	if err != nil {
		s.logger.Error("session open failed", "run_id", run.ID, "error", err)
		run.finish(RunFailed, nil, nil, err)
		return
	}
	defer sess.Close()

	run.setStatus(RunProcessing)

	agg := NewAggregator()
	orch := NewOrchestrator(s.pipeline, NewExecutor(s.logger), s.logger, s.reporter(run))
	orch.Run(s.baseCtx, run, snap, sess, agg)

	result := agg.Finalize()
	archive, err := BuildArchive(result)
	if err != nil {
		s.logger.Error("archive build failed", "run_id", run.ID, "error", err)
		run.finish(RunFailed, result, nil, err)
		return
	}

	status := RunCompleted
	if run.Cancelled() {
		status = RunCancelled
	}
	run.finish(status, result, archive, nil)

	s.logger.Info(
		"run finished",
		"run_id", run.ID,
		"status", status,
		"succeeded", len(result.Successes),
		"failed", len(result.Failures),
	)

	s.retain(run.ID, result, archive)
}

func (s *system) release(run *Run) {
	s.mu.Lock()
	if s.active == run {
		s.active = nil
	}
	s.mu.Unlock()
}

func (s *system) reporter(run *Run) Reporter {
	return func(completed, total int, identifier string) {
		s.logger.Info(
			"progress",
			"run_id", run.ID,
			"completed", completed,
			"total", total,
			"current", identifier,
		)
	}
}

// retain uploads the archive and each artifact to blob storage when
// retention is configured. Failures are logged, never surfaced: the
// operator still has the in-memory download.
func (s *system) retain(runID uuid.UUID, result *BatchResult, archive []byte) {
	if s.store == nil || len(result.Successes) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(s.baseCtx)
	g.SetLimit(4)

	g.Go(func() error {
		key := fmt.Sprintf("runs/%s/%s", runID, ArchiveFilename)
		return s.store.Upload(ctx, key, bytes.NewReader(archive), ArchiveContentType)
	})

	for _, name := range result.ArtifactOrder {
		data := result.Artifacts[name]
		key := fmt.Sprintf("runs/%s/artifacts/%s", runID, name)
		g.Go(func() error {
			return s.store.Upload(ctx, key, bytes.NewReader(data), "application/pdf")
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("artifact retention failed", "run_id", runID, "error", err)
		return
	}

	s.logger.Info("artifacts retained", "run_id", runID, "count", len(result.ArtifactOrder))
}
