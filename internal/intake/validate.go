package intake

import (
	"fmt"
	"sort"
)

// ValidationResult is the outcome of one matching pass over the intake state.
// Discrepancy lists are sorted by identifier so repeated passes over the same
// state produce identical output. The result is advisory to the operator and
// blocking to the orchestrator: a run must not start while Passed is false.
type ValidationResult struct {
	Passed  bool                `json:"passed"`
	Missing map[string][]string `json:"missing"`
	Extra   map[string][]string `json:"extra"`
	Reasons []string            `json:"reasons"`
}

// Validate computes set differences between the primary identifier set and
// every enabled companion set. A companion source that is toggled on with
// nothing uploaded is a failing state on its own.
func Validate(primary map[string]struct{}, companions map[string]map[string]struct{}, enabledEmpty []string) ValidationResult {
	result := ValidationResult{
		Passed:  true,
		Missing: map[string][]string{},
		Extra:   map[string][]string{},
	}

	for _, label := range enabledEmpty {
		result.Passed = false
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("upload %s or turn off the %s toggle", label, label))
	}

	for _, label := range sortedLabels(companions) {
		ids := companions[label]

		missing := difference(primary, ids)
		extra := difference(ids, primary)

		if len(missing) > 0 {
			result.Passed = false
			result.Missing[label] = missing
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("%d item(s) missing a matching entry in %s", len(missing), label))
		}
		if len(extra) > 0 {
			result.Passed = false
			result.Extra[label] = extra
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("%d entr(ies) in %s have no matching item", len(extra), label))
		}
	}

	return result
}

// difference returns a − b in sorted identifier order.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for id := range a {
		if _, ok := b[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func sortedLabels(companions map[string]map[string]struct{}) []string {
	labels := make([]string, 0, len(companions))
	for label := range companions {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
