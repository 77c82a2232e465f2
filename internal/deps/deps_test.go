package deps

import (
	"errors"
	"testing"

	appErrors "photein/internal/errors"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	results := CheckBinaries([]Requirement{
		{Name: "Missing", Command: "photein-definitely-missing-binary", Description: "missing"},
		{Name: "Blank", Command: "  "},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[0].Detail == "" {
		t.Fatalf("expected detail for missing binary")
	}
	if results[1].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[1].Detail)
	}
}

func TestRequireMissingBinaryIsFatal(t *testing.T) {
	_, err := Require("photein-definitely-missing-binary", "transcoding")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, appErrors.ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
	if !appErrors.IsFatal(err) {
		t.Fatalf("expected missing dependency to be fatal")
	}
}
