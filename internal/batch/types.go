// Package batch implements the orchestration engine: the per-item pipeline
// state machine, step-level fault isolation, result aggregation, and the
// archive of generated sell sheets.
//
// Processing is strictly sequential. Both external systems are driven
// through one shared interactive browser session, so concurrent navigation
// would corrupt session state; the only suspension points are the operator
// login window and the cancellation check between items.
package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmaxwell/sellforge/internal/intake"
	"github.com/jmaxwell/sellforge/internal/session"
)

// Summary is the structured payload pulled from the extraction platform for
// one item.
type Summary struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// Fields are the publishable fields produced by the transform step.
type Fields struct {
	Title        string   `json:"title"`
	Statement    string   `json:"statement"`
	Description  string   `json:"description"`
	Advantages   []string `json:"advantages"`
	Problems     []string `json:"problems"`
	Applications []string `json:"applications"`
}

// ItemState is the mutable working state for one item as it moves through
// the pipeline. The orchestrator owns it exclusively for the item's
// duration; steps fill in their outputs as they run.
type ItemState struct {
	Item      intake.Item
	ImagePath string
	Tag       string

	Summary      *Summary
	Fields       *Fields
	ArtifactPath string
}

// FailureReport is the classified outcome of a failed step: the step name,
// a human-readable category message from the static classification table,
// and the original cause.
type FailureReport struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Cause   string `json:"cause"`
}

func (f *FailureReport) String() string {
	return fmt.Sprintf("%s (%s)", f.Message, f.Cause)
}

// Status is the terminal state of one item.
type Status string

// Item outcome states. Exactly one is recorded per item.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ItemOutcome is the recorded result for one item. Artifact is populated
// only on success.
type ItemOutcome struct {
	Identifier     string
	Filename       string
	Status         Status
	FailureReasons []string
	Artifact       []byte
}

// JoinedReasons returns the ordered failure reasons as one display string.
func (o *ItemOutcome) JoinedReasons() string {
	return strings.Join(o.FailureReasons, "; ")
}

// Failure pairs an original filename with its joined failure reasons.
type Failure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// BatchResult is the complete outcome record for one run: successes in
// completion order, failures with reasons, and generated artifacts keyed by
// output filename. ArtifactOrder preserves success insertion order so the
// archive is deterministic.
type BatchResult struct {
	Successes []string          `json:"successes"`
	Failures  []Failure         `json:"failures"`
	Artifacts map[string][]byte `json:"-"`

	ArtifactOrder []string `json:"-"`
}

// ArtifactName derives the output filename for a generated sell sheet.
func ArtifactName(identifier string) string {
	return fmt.Sprintf("sell_sheet_%s.pdf", identifier)
}

// Extractor pulls the structured summary for an item from the extraction
// platform, filling st.Summary.
type Extractor interface {
	Extract(ctx context.Context, tab *session.Tab, st *ItemState) error
}

// Transformer turns an extracted summary into publishable fields, filling
// st.Fields.
type Transformer interface {
	Format(ctx context.Context, st *ItemState) error
}

// Renderer produces the sell sheet artifact for an item, filling
// st.ArtifactPath.
type Renderer interface {
	Render(ctx context.Context, st *ItemState) error
}

// Publisher yields the ordered publish sub-steps for an item against the
// publishing tab. The first failing sub-step halts the sequence for that
// item only.
type Publisher interface {
	Sequence(tab *session.Tab, st *ItemState) []Step
}

// Pipeline bundles the four pipeline collaborators.
type Pipeline struct {
	Extract   Extractor
	Transform Transformer
	Render    Renderer
	Publish   Publisher
}
