package intake_test

import (
	"strings"
	"testing"

	"github.com/jmaxwell/sellforge/internal/intake"
)

func set(ids ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func TestValidatePasses(t *testing.T) {
	tests := []struct {
		name       string
		primary    map[string]struct{}
		companions map[string]map[string]struct{}
	}{
		{
			name:       "no companions",
			primary:    set("2025-001", "2025-002"),
			companions: map[string]map[string]struct{}{},
		},
		{
			name:    "fully matched companion",
			primary: set("2025-001", "2025-002"),
			companions: map[string]map[string]struct{}{
				intake.LabelImages: set("2025-001", "2025-002"),
			},
		},
		{
			name:    "both companions matched",
			primary: set("2025-001"),
			companions: map[string]map[string]struct{}{
				intake.LabelImages: set("2025-001"),
				intake.LabelTags:   set("2025-001"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := intake.Validate(tt.primary, tt.companions, nil)
			if !result.Passed {
				t.Errorf("Validate() passed = false, reasons: %v", result.Reasons)
			}
			if len(result.Reasons) != 0 {
				t.Errorf("reasons: got %v, want none", result.Reasons)
			}
		})
	}
}

func TestValidateMissingCompanion(t *testing.T) {
	primary := set("2025-001", "2025-002", "2025-003")
	companions := map[string]map[string]struct{}{
		intake.LabelImages: set("2025-001", "2025-002"),
	}

	result := intake.Validate(primary, companions, nil)

	if result.Passed {
		t.Fatal("Validate() passed = true, want false")
	}

	missing := result.Missing[intake.LabelImages]
	if len(missing) != 1 || missing[0] != "2025-003" {
		t.Errorf("missing: got %v, want [2025-003]", missing)
	}
	if len(result.Extra) != 0 {
		t.Errorf("extra: got %v, want none", result.Extra)
	}
	if len(result.Reasons) != 1 || !strings.Contains(result.Reasons[0], "images") {
		t.Errorf("reasons: got %v", result.Reasons)
	}
}

func TestValidateExtraCompanion(t *testing.T) {
	primary := set("2025-001")
	companions := map[string]map[string]struct{}{
		intake.LabelTags: set("2025-001", "2025-099"),
	}

	result := intake.Validate(primary, companions, nil)

	if result.Passed {
		t.Fatal("Validate() passed = true, want false")
	}

	extra := result.Extra[intake.LabelTags]
	if len(extra) != 1 || extra[0] != "2025-099" {
		t.Errorf("extra: got %v, want [2025-099]", extra)
	}
}

// Discrepancy lists are sorted so repeated passes over the same state
// produce identical output.
func TestValidateSortsDiscrepancies(t *testing.T) {
	primary := set("2025-003", "2025-001", "2025-002")
	companions := map[string]map[string]struct{}{
		intake.LabelImages: {},
	}

	result := intake.Validate(primary, companions, nil)

	missing := result.Missing[intake.LabelImages]
	want := []string{"2025-001", "2025-002", "2025-003"}
	if len(missing) != len(want) {
		t.Fatalf("missing: got %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("missing[%d] = %s, want %s", i, missing[i], want[i])
		}
	}
}

// A companion source toggled on with nothing uploaded fails on its own.
func TestValidateEnabledEmpty(t *testing.T) {
	primary := set("2025-001")

	result := intake.Validate(primary, map[string]map[string]struct{}{}, []string{intake.LabelTags})

	if result.Passed {
		t.Fatal("Validate() passed = true, want false")
	}
	if len(result.Reasons) != 1 {
		t.Fatalf("reasons: got %v, want one", result.Reasons)
	}
	want := "upload tags or turn off the tags toggle"
	if result.Reasons[0] != want {
		t.Errorf("reason: got %q, want %q", result.Reasons[0], want)
	}
}

func TestValidateBothDirections(t *testing.T) {
	primary := set("2025-001", "2025-002")
	companions := map[string]map[string]struct{}{
		intake.LabelImages: set("2025-002", "2025-005"),
	}

	result := intake.Validate(primary, companions, nil)

	if result.Passed {
		t.Fatal("Validate() passed = true, want false")
	}
	if got := result.Missing[intake.LabelImages]; len(got) != 1 || got[0] != "2025-001" {
		t.Errorf("missing: got %v, want [2025-001]", got)
	}
	if got := result.Extra[intake.LabelImages]; len(got) != 1 || got[0] != "2025-005" {
		t.Errorf("extra: got %v, want [2025-005]", got)
	}
	if len(result.Reasons) != 2 {
		t.Errorf("reasons: got %v, want two", result.Reasons)
	}
}
