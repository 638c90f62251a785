package ident_test

import (
	"testing"

	"github.com/jmaxwell/sellforge/pkg/ident"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
		wantOK   bool
	}{
		{
			"bare identifier",
			"2025-001.pdf",
			"2025-001",
			true,
		},
		{
			"identifier embedded in name",
			"disclosure_2025-042_final.pdf",
			"2025-042",
			true,
		},
		{
			"first of several matches wins",
			"2024-999_supersedes_2023-001.pdf",
			"2024-999",
			true,
		},
		{
			"too few trailing digits",
			"2025-01.pdf",
			"",
			false,
		},
		{
			"no digits at all",
			"notes.pdf",
			"",
			false,
		},
		{
			"longer digit runs still contain a match",
			"20251-0012.png",
			"0251-001",
			true,
		},
		{
			"empty filename",
			"",
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ident.Extract(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
