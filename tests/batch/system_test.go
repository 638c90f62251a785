package batch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jmaxwell/sellforge/internal/batch"
	"github.com/jmaxwell/sellforge/internal/intake"
	"github.com/jmaxwell/sellforge/internal/session"
)

type fakeOpener struct {
	release chan struct{}
	err     error
}

func (f *fakeOpener) Open(ctx context.Context) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &session.Session{}, nil
}

func newIntake(t *testing.T, filenames ...string) intake.System {
	t.Helper()
	sys := intake.New(t.TempDir(), discardLogger())

	if len(filenames) == 0 {
		return sys
	}

	uploads := make([]intake.Upload, len(filenames))
	for i, name := range filenames {
		uploads[i] = intake.Upload{Filename: name, Data: []byte("disclosure content")}
	}
	if _, err := sys.AddDocuments(context.Background(), uploads); err != nil {
		t.Fatalf("register documents: %v", err)
	}

	return sys
}

func newSystem(t *testing.T, intakeSys intake.System, opener batch.SessionOpener) batch.System {
	t.Helper()
	return batch.New(
		context.Background(),
		intakeSys,
		opener,
		testPipeline(t),
		nil,
		discardLogger(),
	)
}

func waitForResult(t *testing.T, sys batch.System, id uuid.UUID) *batch.BatchResult {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		result, err := sys.Result(id)
		if err == nil {
			return result
		}
		if !errors.Is(err, batch.ErrRunInFlight) {
			t.Fatalf("Result() error = %v", err)
		}

		select {
		case <-deadline:
			t.Fatal("run did not finish in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSystemStartRequiresItems(t *testing.T) {
	sys := newSystem(t, newIntake(t), &fakeOpener{})

	_, err := sys.Start()
	if !errors.Is(err, batch.ErrNoItems) {
		t.Errorf("Start() error = %v, want ErrNoItems", err)
	}
}

func TestSystemStartRequiresPassingGate(t *testing.T) {
	intakeSys := newIntake(t, "2025-001_disclosure.pdf")

	// images toggled on with nothing uploaded fails the gate
	enabled := true
	intakeSys.SetToggles(&enabled, nil)

	sys := newSystem(t, intakeSys, &fakeOpener{})

	_, err := sys.Start()
	if !errors.Is(err, batch.ErrValidationFailed) {
		t.Errorf("Start() error = %v, want ErrValidationFailed", err)
	}
}

func TestSystemRunToCompletion(t *testing.T) {
	intakeSys := newIntake(t, "2025-001_disclosure.pdf", "2025-002_disclosure.pdf")
	sys := newSystem(t, intakeSys, &fakeOpener{})

	run, err := sys.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	result := waitForResult(t, sys, run.ID)
	if len(result.Successes) != 2 {
		t.Errorf("successes: got %v, want both items", result.Successes)
	}
	if len(result.Failures) != 0 {
		t.Errorf("failures: got %v, want none", result.Failures)
	}

	found, err := sys.Find(run.ID)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if status := found.Snapshot().Status; status != batch.RunCompleted {
		t.Errorf("status: got %s, want %s", status, batch.RunCompleted)
	}

	archive, err := sys.Archive(run.ID)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if len(archive) == 0 {
		t.Error("archive should not be empty")
	}
}

func TestSystemSingleActiveRun(t *testing.T) {
	intakeSys := newIntake(t, "2025-001_disclosure.pdf")
	opener := &fakeOpener{release: make(chan struct{})}
	sys := newSystem(t, intakeSys, opener)

	run, err := sys.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// the first run is blocked in the login window
	if _, err := sys.Start(); !errors.Is(err, batch.ErrRunActive) {
		t.Errorf("second Start() error = %v, want ErrRunActive", err)
	}

	close(opener.release)
	waitForResult(t, sys, run.ID)

	// the slot frees once the run finishes
	deadline := time.After(5 * time.Second)
	for {
		if _, err := sys.Start(); err == nil {
			break
		} else if !errors.Is(err, batch.ErrRunActive) {
			t.Fatalf("Start() error = %v", err)
		}

		select {
		case <-deadline:
			t.Fatal("active slot never released")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSystemSessionOpenFailure(t *testing.T) {
	intakeSys := newIntake(t, "2025-001_disclosure.pdf")
	opener := &fakeOpener{err: errors.New("browser launch failed")}
	sys := newSystem(t, intakeSys, opener)

	run, err := sys.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		found, err := sys.Find(run.ID)
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}

		snap := found.Snapshot()
		if snap.Status == batch.RunFailed {
			if snap.Error == "" {
				t.Error("failed run should carry the error")
			}
			return
		}

		select {
		case <-deadline:
			t.Fatal("run never reached failed state")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSystemCancelUnknownRun(t *testing.T) {
	sys := newSystem(t, newIntake(t), &fakeOpener{})

	if err := sys.Cancel(uuid.New()); !errors.Is(err, batch.ErrRunNotFound) {
		t.Errorf("Cancel() error = %v, want ErrRunNotFound", err)
	}
}
