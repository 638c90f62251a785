package batch_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/jmaxwell/sellforge/internal/batch"
)

type mockSystem struct {
	startFn   func() (*batch.Run, error)
	findFn    func(id uuid.UUID) (*batch.Run, error)
	cancelFn  func(id uuid.UUID) error
	resultFn  func(id uuid.UUID) (*batch.BatchResult, error)
	archiveFn func(id uuid.UUID) ([]byte, error)
}

func (m *mockSystem) Handler() *batch.Handler {
	return batch.NewHandler(m, discardLogger())
}

func (m *mockSystem) Start() (*batch.Run, error) {
	return m.startFn()
}

func (m *mockSystem) Find(id uuid.UUID) (*batch.Run, error) {
	return m.findFn(id)
}

func (m *mockSystem) Cancel(id uuid.UUID) error {
	return m.cancelFn(id)
}

func (m *mockSystem) Result(id uuid.UUID) (*batch.BatchResult, error) {
	return m.resultFn(id)
}

func (m *mockSystem) Archive(id uuid.UUID) ([]byte, error) {
	return m.archiveFn(id)
}

func setupMux(h *batch.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func TestHandlerStart(t *testing.T) {
	sys := &mockSystem{
		startFn: func() (*batch.Run, error) {
			return batch.NewRun(3), nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/runs", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want 202", rec.Code)
	}

	var progress batch.Progress
	if err := json.NewDecoder(rec.Body).Decode(&progress); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if progress.Status != batch.RunAwaitingLogin {
		t.Errorf("status: got %s, want %s", progress.Status, batch.RunAwaitingLogin)
	}
	if progress.Total != 3 {
		t.Errorf("total: got %d, want 3", progress.Total)
	}
}

func TestHandlerStartErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "run already active",
			err:  batch.ErrRunActive,
			want: http.StatusConflict,
		},
		{
			name: "validation gate failing",
			err:  batch.ErrValidationFailed,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "nothing registered",
			err:  batch.ErrNoItems,
			want: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				startFn: func() (*batch.Run, error) { return nil, tt.err },
			}
			mux := setupMux(sys.Handler())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/runs", nil)
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerStatus(t *testing.T) {
	run := batch.NewRun(2)
	sys := &mockSystem{
		findFn: func(id uuid.UUID) (*batch.Run, error) {
			if id != run.ID {
				return nil, batch.ErrRunNotFound
			}
			return run, nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/runs/"+run.ID.String(), nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var progress batch.Progress
	if err := json.NewDecoder(rec.Body).Decode(&progress); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if progress.ID != run.ID {
		t.Errorf("run id: got %s, want %s", progress.ID, run.ID)
	}
}

func TestHandlerStatusNotFound(t *testing.T) {
	sys := &mockSystem{
		findFn: func(id uuid.UUID) (*batch.Run, error) {
			return nil, batch.ErrRunNotFound
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/runs/"+uuid.NewString(), nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandlerStatusInvalidID(t *testing.T) {
	sys := &mockSystem{}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/runs/not-a-uuid", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandlerCancel(t *testing.T) {
	var cancelled uuid.UUID
	sys := &mockSystem{
		cancelFn: func(id uuid.UUID) error {
			cancelled = id
			return nil
		},
	}
	mux := setupMux(sys.Handler())

	id := uuid.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/runs/"+id.String()+"/cancel", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status: got %d, want 202", rec.Code)
	}
	if cancelled != id {
		t.Errorf("cancelled id: got %s, want %s", cancelled, id)
	}
}

func TestHandlerResultInFlight(t *testing.T) {
	sys := &mockSystem{
		resultFn: func(id uuid.UUID) (*batch.BatchResult, error) {
			return nil, batch.ErrRunInFlight
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/runs/"+uuid.NewString()+"/result", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
}

func TestHandlerResult(t *testing.T) {
	sys := &mockSystem{
		resultFn: func(id uuid.UUID) (*batch.BatchResult, error) {
			return &batch.BatchResult{
				Successes: []string{"2025-001"},
				Failures: []batch.Failure{
					{Filename: "2025-002_disclosure.pdf", Reason: "sell sheet generation failed (layout)"},
				},
			}, nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/runs/"+uuid.NewString()+"/result", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var result batch.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(result.Successes) != 1 || result.Successes[0] != "2025-001" {
		t.Errorf("successes: got %v", result.Successes)
	}
	if len(result.Failures) != 1 {
		t.Errorf("failures: got %v", result.Failures)
	}
}

func TestHandlerArchive(t *testing.T) {
	sys := &mockSystem{
		archiveFn: func(id uuid.UUID) ([]byte, error) {
			return []byte("zip-bytes"), nil
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/runs/"+uuid.NewString()+"/archive", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content-type: got %s, want application/zip", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="sell_sheets.zip"` {
		t.Errorf("content-disposition: got %s", cd)
	}
	if rec.Body.String() != "zip-bytes" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}

func TestHandlerArchiveNoArtifacts(t *testing.T) {
	sys := &mockSystem{
		archiveFn: func(id uuid.UUID) ([]byte, error) {
			return nil, batch.ErrNoArchive
		},
	}
	mux := setupMux(sys.Handler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/runs/"+uuid.NewString()+"/archive", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}
