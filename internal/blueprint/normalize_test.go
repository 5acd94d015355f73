package blueprint

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeTotality(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty_string", raw: ""},
		{name: "garbage_text", raw: "sorry, I cannot help with that"},
		{name: "invalid_json", raw: `{"case_summary": `},
		{name: "json_array_root", raw: `[1,2,3]`},
		{name: "json_scalar_root", raw: `42`},
		{name: "empty_object", raw: `{}`},
		{name: "mistyped_fields", raw: `{"case_summary": "not an object", "panel_concerns": {"oops": true}, "sections": 7}`},
		{name: "mistyped_leaves", raw: `{"case_summary":{"client_name":123,"key_facts":"not a list"},"narrative_strategy":{"tone":[],"themes":[1,true,null]}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bp := Normalize(tc.raw)
			if bp == nil {
				t.Fatalf("Normalize(%q) returned nil", tc.raw)
			}
			assertInvariants(t, bp)
		})
	}
}

func assertInvariants(t *testing.T, bp *CampaignBlueprint) {
	t.Helper()
	if bp.CaseSummary.ClientName == "" {
		t.Fatalf("client_name empty after normalization")
	}
	if bp.CaseSummary.TDCJNumber == "" {
		t.Fatalf("tdcj_number empty after normalization")
	}
	if bp.NarrativeStrategy.Tone == "" {
		t.Fatalf("tone empty after normalization")
	}
	for name, list := range map[string][]string{
		"key_facts":           bp.CaseSummary.KeyFacts,
		"themes":              bp.NarrativeStrategy.Themes,
		"do_not_say":          bp.NarrativeStrategy.DoNotSay,
		"toc":                 bp.Sections.TOC,
		"synopsis.paragraphs": bp.Sections.Synopsis.Paragraphs,
		"strengths.bullets":   bp.Sections.Strengths.Bullets,
		"plan_30":             bp.Sections.Plan30_90_180.Plan30,
		"plan_90":             bp.Sections.Plan30_90_180.Plan90,
		"plan_180":            bp.Sections.Plan30_90_180.Plan180,
		"missing_info":        bp.ComplianceChecks.MissingInfo,
	} {
		if list == nil {
			t.Fatalf("list field %s is nil after normalization", name)
		}
	}
	if bp.PanelConcerns == nil {
		t.Fatalf("panel_concerns is nil after normalization")
	}
	if bp.CitationsToUserUploads == nil {
		t.Fatalf("citations_to_user_uploads is nil after normalization")
	}
	if bp.Sections.SupportLetters.Supporters == nil || bp.Sections.SupportLetters.Letters == nil {
		t.Fatalf("support_letters sub-lists nil after normalization")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	bp := Normalize(`{}`)

	if bp.CaseSummary.ClientName != "Client" {
		t.Fatalf("client_name=%q, want %q", bp.CaseSummary.ClientName, "Client")
	}
	if bp.CaseSummary.TDCJNumber != "—" {
		t.Fatalf("tdcj_number=%q, want em dash", bp.CaseSummary.TDCJNumber)
	}
	if bp.NarrativeStrategy.Tone != "respectful" {
		t.Fatalf("tone=%q, want %q", bp.NarrativeStrategy.Tone, "respectful")
	}
	if bp.Sections.Cover.Tagline != "Parole Campaign" {
		t.Fatalf("cover tagline=%q, want %q", bp.Sections.Cover.Tagline, "Parole Campaign")
	}
	if bp.Sections.Synopsis.Title != "Executive Summary" {
		t.Fatalf("synopsis title=%q, want %q", bp.Sections.Synopsis.Title, "Executive Summary")
	}
	if bp.Sections.ClientLetter.Salutation != "Dear Members of the Board," {
		t.Fatalf("salutation=%q", bp.Sections.ClientLetter.Salutation)
	}
	if bp.Sections.ClientLetter.Closing != "Respectfully," {
		t.Fatalf("letter closing=%q", bp.Sections.ClientLetter.Closing)
	}
	if bp.Sections.HomePlan.Description != "See assessment." {
		t.Fatalf("home plan description=%q", bp.Sections.HomePlan.Description)
	}
	if bp.Sections.Transportation.Description != "See assessment." {
		t.Fatalf("transportation description=%q", bp.Sections.Transportation.Description)
	}
	if !reflect.DeepEqual(bp.Sections.TOC, DefaultTOC) {
		t.Fatalf("toc=%v, want canonical default", bp.Sections.TOC)
	}
	if len(bp.CaseSummary.KeyFacts) != 0 || len(bp.PanelConcerns) != 0 || len(bp.Sections.Strengths.Bullets) != 0 {
		t.Fatalf("expected empty lists on empty input")
	}
	if bp.ComplianceChecks.TruthfulnessConfirmed {
		t.Fatalf("truthfulness_confirmed should default to false")
	}
	if bp.Sections.TreatmentPlan != nil {
		t.Fatalf("treatment_plan should stay absent on empty input")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "empty_object", raw: `{}`},
		{name: "partial", raw: `{"case_summary":{"client_name":"Jane Doe"},"sections":{"strengths":{"bullets":["Completed GED"]}}}`},
		{name: "with_treatment_plan", raw: `{"sections":{"treatment_plan":{"description":"Outpatient counseling","commitments":["Weekly AA meetings"]}}}`},
		{name: "mistyped", raw: `{"panel_concerns":[{"concern":1},{"concern":"violent offense","evidence":"record","mitigation":"completed anger management"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := Normalize(tc.raw)
			serialized, err := json.Marshal(first)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			second := Normalize(string(serialized))
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
			}
		})
	}
}

func TestNormalizeTreatmentPlanPreservation(t *testing.T) {
	t.Run("absent_stays_absent", func(t *testing.T) {
		bp := Normalize(`{"sections":{"closing":{"paragraphs":["Thank you."]}}}`)
		if bp.Sections.TreatmentPlan != nil {
			t.Fatalf("treatment_plan fabricated from absent input")
		}
	})

	t.Run("null_stays_absent", func(t *testing.T) {
		bp := Normalize(`{"sections":{"treatment_plan":null}}`)
		if bp.Sections.TreatmentPlan != nil {
			t.Fatalf("treatment_plan fabricated from null input")
		}
	})

	t.Run("partial_completed_with_defaults", func(t *testing.T) {
		bp := Normalize(`{"sections":{"treatment_plan":{"description":"Substance abuse program"}}}`)
		tp := bp.Sections.TreatmentPlan
		if tp == nil {
			t.Fatalf("treatment_plan dropped despite being present")
		}
		if tp.Description != "Substance abuse program" {
			t.Fatalf("description=%q", tp.Description)
		}
		if tp.Commitments == nil || len(tp.Commitments) != 0 {
			t.Fatalf("commitments=%v, want empty list", tp.Commitments)
		}
	})
}

func TestNormalizeVerbatimValues(t *testing.T) {
	raw := `{
		"case_summary":{"client_name":"Jane Doe","tdcj_number":"02134567","key_facts":["Model inmate","First-time offender"]},
		"panel_concerns":[{"concern":"Nature of offense","evidence":"Court record","mitigation":"Ten years of clean conduct"}],
		"narrative_strategy":{"themes":["accountability"],"tone":"direct","do_not_say":["minimizing language"]},
		"sections":{
			"support_letters":{"supporters":[{"name":"Mary Doe","relationship":"Mother","summary":"Offers housing"}],"letters":[{"id":"doc-1"},{"id":"doc-2","improved_text":"Polished text"}]}
		},
		"citations_to_user_uploads":[{"section":"home_plan","doc_id":"doc-3","reason":"Confirms address"}],
		"compliance_checks":{"truthfulness_confirmed":true,"missing_info":["employment dates"]}
	}`
	bp := Normalize(raw)

	if bp.CaseSummary.ClientName != "Jane Doe" || bp.CaseSummary.TDCJNumber != "02134567" {
		t.Fatalf("case_summary not taken verbatim: %+v", bp.CaseSummary)
	}
	if len(bp.PanelConcerns) != 1 || bp.PanelConcerns[0].Mitigation != "Ten years of clean conduct" {
		t.Fatalf("panel_concerns=%+v", bp.PanelConcerns)
	}
	if bp.NarrativeStrategy.Tone != "direct" {
		t.Fatalf("tone=%q, want verbatim %q", bp.NarrativeStrategy.Tone, "direct")
	}
	letters := bp.Sections.SupportLetters.Letters
	if len(letters) != 2 || letters[0].ImprovedText != "" || letters[1].ImprovedText != "Polished text" {
		t.Fatalf("letters=%+v", letters)
	}
	if len(bp.CitationsToUserUploads) != 1 || bp.CitationsToUserUploads[0].DocID != "doc-3" {
		t.Fatalf("citations=%+v", bp.CitationsToUserUploads)
	}
	if !bp.ComplianceChecks.TruthfulnessConfirmed {
		t.Fatalf("truthfulness_confirmed dropped")
	}
}

func TestNormalizeJaneDoeScenario(t *testing.T) {
	raw := `{"case_summary":{"client_name":"Jane Doe"},"sections":{"strengths":{"bullets":["Completed GED","Clean disciplinary record"]}}}`
	bp := Normalize(raw)

	if bp.CaseSummary.ClientName != "Jane Doe" {
		t.Fatalf("client_name=%q", bp.CaseSummary.ClientName)
	}
	if bp.CaseSummary.TDCJNumber != "—" {
		t.Fatalf("tdcj_number=%q, want em dash default", bp.CaseSummary.TDCJNumber)
	}
	want := []string{"Completed GED", "Clean disciplinary record"}
	if !reflect.DeepEqual(bp.Sections.Strengths.Bullets, want) {
		t.Fatalf("strengths.bullets=%v, want %v", bp.Sections.Strengths.Bullets, want)
	}
	if !reflect.DeepEqual(bp.Sections.TOC, DefaultTOC) {
		t.Fatalf("toc=%v, want canonical ten-item default", bp.Sections.TOC)
	}
	if len(bp.Sections.TOC) != 10 {
		t.Fatalf("default toc has %d entries, want 10", len(bp.Sections.TOC))
	}
}

func TestNormalizeDropsEmptyListElements(t *testing.T) {
	raw := `{"sections":{"strengths":{"bullets":["Completed GED","",null,42,"Mentors peers"]}}}`
	bp := Normalize(raw)
	want := []string{"Completed GED", "Mentors peers"}
	if !reflect.DeepEqual(bp.Sections.Strengths.Bullets, want) {
		t.Fatalf("bullets=%v, want %v", bp.Sections.Strengths.Bullets, want)
	}
}
