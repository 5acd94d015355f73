package services

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDocumentPolicyDefaults(t *testing.T) {
	t.Setenv("DOCUMENT_POLICY_PATH", "")
	policy, err := NewDocumentPolicy(testLogger(t))
	if err != nil {
		t.Fatalf("NewDocumentPolicy: %v", err)
	}

	cases := []struct {
		docType string
		max     int
	}{
		{docType: "SUPPORT_LETTER", max: 10},
		{docType: "PHOTO", max: 20},
		{docType: "CERTIFICATE", max: 50},
		{docType: "EMPLOYMENT_PLAN", max: 5},
		{docType: "HOUSING_PLAN", max: 5},
		{docType: "OTHER", max: 20},
	}
	for _, tc := range cases {
		t.Run(tc.docType, func(t *testing.T) {
			if !policy.KnownType(tc.docType) {
				t.Fatalf("type %s not known", tc.docType)
			}
			if got := policy.MaxFor(tc.docType); got != tc.max {
				t.Fatalf("MaxFor(%s)=%d, want %d", tc.docType, got, tc.max)
			}
		})
	}
	if policy.KnownType("RESUME") {
		t.Fatalf("unexpected type RESUME")
	}
}

func TestDocumentPolicyEligibility(t *testing.T) {
	t.Setenv("DOCUMENT_POLICY_PATH", "")
	policy, err := NewDocumentPolicy(testLogger(t))
	if err != nil {
		t.Fatalf("NewDocumentPolicy: %v", err)
	}

	t.Run("missing_minimums", func(t *testing.T) {
		missing := policy.CheckEligibility(map[string]int64{
			"SUPPORT_LETTER": 1,
			"PHOTO":          2,
		})
		if len(missing) != 2 {
			t.Fatalf("missing=%v, want 2 entries", missing)
		}
	})

	t.Run("minimums_met", func(t *testing.T) {
		missing := policy.CheckEligibility(map[string]int64{
			"SUPPORT_LETTER": 3,
			"PHOTO":          10,
		})
		if len(missing) != 0 {
			t.Fatalf("missing=%v, want none", missing)
		}
	})
}

func TestDocumentPolicyOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	override := []byte("document_types:\n  SUPPORT_LETTER:\n    min: 1\n    max: 2\n")
	if err := os.WriteFile(path, override, 0o600); err != nil {
		t.Fatalf("write override: %v", err)
	}
	t.Setenv("DOCUMENT_POLICY_PATH", path)

	policy, err := NewDocumentPolicy(testLogger(t))
	if err != nil {
		t.Fatalf("NewDocumentPolicy: %v", err)
	}
	if policy.MaxFor("SUPPORT_LETTER") != 2 {
		t.Fatalf("override not applied")
	}
	if policy.KnownType("PHOTO") {
		t.Fatalf("override should replace the default table")
	}
	missing := policy.CheckEligibility(map[string]int64{})
	if len(missing) != 1 {
		t.Fatalf("missing=%v, want one entry", missing)
	}
}
