package batch

import "sync"

// Aggregator accumulates per-item outcomes into a BatchResult. It is the
// sole owner of that result while the run is in flight; the orchestrator is
// its only writer.
//
// Artifact retention policy: only items that complete the full pipeline —
// publish sequence included — contribute artifacts. An item whose sell
// sheet rendered but whose publish failed is a failure with no artifact.
type Aggregator struct {
	mu        sync.Mutex
	successes []string
	failures  []Failure
	artifacts map[string][]byte
	order     []string
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		artifacts: make(map[string][]byte),
	}
}

// Record accumulates one item outcome.
func (a *Aggregator) Record(outcome ItemOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if outcome.Status == StatusSuccess {
		name := ArtifactName(outcome.Identifier)
		a.successes = append(a.successes, outcome.Identifier)
		a.artifacts[name] = outcome.Artifact
		a.order = append(a.order, name)
		return
	}

	a.failures = append(a.failures, Failure{
		Filename: outcome.Filename,
		Reason:   outcome.JoinedReasons(),
	})
}

// Finalize assembles the immutable batch result.
func (a *Aggregator) Finalize() *BatchResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := &BatchResult{
		Successes:     make([]string, len(a.successes)),
		Failures:      make([]Failure, len(a.failures)),
		Artifacts:     make(map[string][]byte, len(a.artifacts)),
		ArtifactOrder: make([]string, len(a.order)),
	}
	copy(result.Successes, a.successes)
	copy(result.Failures, a.failures)
	copy(result.ArtifactOrder, a.order)
	for name, data := range a.artifacts {
		result.Artifacts[name] = data
	}

	return result
}
