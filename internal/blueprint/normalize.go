package blueprint

import "encoding/json"

// DefaultTOC is the canonical ten-entry table of contents used whenever the
// generator supplies none.
var DefaultTOC = []string{
	"Synopsis",
	"Client Letter",
	"Strengths",
	"Reentry Plan",
	"Home Plan",
	"Transportation",
	"Employment",
	"Future",
	"Support Letters",
	"Closing",
}

// Normalize coerces raw generator output into a fully populated
// CampaignBlueprint. It is total: any input, including empty strings and
// invalid JSON, yields a valid blueprint with documented defaults. Values are
// taken verbatim when well-typed and replaced by type defaults otherwise;
// content is never invented. Normalizing an already-normalized blueprint is
// the identity.
func Normalize(raw string) *CampaignBlueprint {
	var root map[string]any
	if err := json.Unmarshal([]byte(raw), &root); err != nil || root == nil {
		root = map[string]any{}
	}

	caseSummary := asMap(root["case_summary"])
	strategy := asMap(root["narrative_strategy"])
	sections := asMap(root["sections"])
	compliance := asMap(root["compliance_checks"])

	bp := &CampaignBlueprint{
		CaseSummary: CaseSummary{
			ClientName: strOr(caseSummary["client_name"], "Client"),
			TDCJNumber: strOr(caseSummary["tdcj_number"], "—"),
			KeyFacts:   strList(caseSummary["key_facts"]),
		},
		PanelConcerns: panelConcerns(root["panel_concerns"]),
		NarrativeStrategy: NarrativeStrategy{
			Themes:   strList(strategy["themes"]),
			Tone:     strOr(strategy["tone"], "respectful"),
			DoNotSay: strList(strategy["do_not_say"]),
		},
		Sections:               normalizeSections(sections),
		CitationsToUserUploads: uploadCitations(root["citations_to_user_uploads"]),
		ComplianceChecks: ComplianceChecks{
			TruthfulnessConfirmed: boolVal(compliance["truthfulness_confirmed"]),
			MissingInfo:           strList(compliance["missing_info"]),
		},
	}
	return bp
}

func normalizeSections(s map[string]any) Sections {
	cover := asMap(s["cover"])
	synopsis := asMap(s["synopsis"])
	letter := asMap(s["client_letter"])
	strengths := asMap(s["strengths"])
	plan := asMap(s["plan_30_90_180"])
	home := asMap(s["home_plan"])
	transport := asMap(s["transportation"])
	employment := asMap(s["employment"])
	future := asMap(s["future"])
	support := asMap(s["support_letters"])
	closing := asMap(s["closing"])

	toc := strList(s["toc"])
	if len(toc) == 0 {
		toc = append([]string(nil), DefaultTOC...)
	}

	out := Sections{
		Cover: Cover{
			Tagline:              strOr(cover["tagline"], "Parole Campaign"),
			ClientPhotoAvailable: boolVal(cover["client_photo_available"]),
		},
		TOC: toc,
		Synopsis: Synopsis{
			Title:      strOr(synopsis["title"], "Executive Summary"),
			Paragraphs: strList(synopsis["paragraphs"]),
		},
		ClientLetter: ClientLetter{
			Salutation: strOr(letter["salutation"], "Dear Members of the Board,"),
			Paragraphs: strList(letter["paragraphs"]),
			Closing:    strOr(letter["closing"], "Respectfully,"),
		},
		Strengths: Strengths{
			Bullets: strList(strengths["bullets"]),
		},
		Plan30_90_180: Plan30_90_180{
			Plan30:  strList(plan["plan_30"]),
			Plan90:  strList(plan["plan_90"]),
			Plan180: strList(plan["plan_180"]),
		},
		HomePlan: HomePlan{
			Address:          str(home["address"]),
			Description:      strOr(home["description"], "See assessment."),
			StabilityFactors: strList(home["stability_factors"]),
		},
		Transportation: Transportation{
			Description: strOr(transport["description"], "See assessment."),
			Details:     strList(transport["details"]),
		},
		Employment: Employment{
			History:       strList(employment["history"]),
			Opportunities: strList(employment["opportunities"]),
			Plan:          strList(employment["plan"]),
		},
		Future: Future{
			Goals:       strList(future["goals"]),
			Commitments: strList(future["commitments"]),
		},
		SupportLetters: SupportLetters{
			Supporters: supporters(support["supporters"]),
			Letters:    supportLetterRefs(support["letters"]),
		},
		Closing: Closing{
			Paragraphs: strList(closing["paragraphs"]),
		},
	}

	// Absence is meaningful here: a missing treatment plan stays missing.
	if tp, ok := s["treatment_plan"]; ok && tp != nil {
		tpMap := asMap(tp)
		out.TreatmentPlan = &TreatmentPlan{
			Description: str(tpMap["description"]),
			Commitments: strList(tpMap["commitments"]),
		}
	}

	return out
}

func panelConcerns(v any) []PanelConcern {
	items := asList(v)
	out := make([]PanelConcern, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		out = append(out, PanelConcern{
			Concern:    str(m["concern"]),
			Evidence:   str(m["evidence"]),
			Mitigation: str(m["mitigation"]),
		})
	}
	return out
}

func supporters(v any) []Supporter {
	items := asList(v)
	out := make([]Supporter, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		out = append(out, Supporter{
			Name:         str(m["name"]),
			Relationship: str(m["relationship"]),
			Summary:      str(m["summary"]),
		})
	}
	return out
}

func supportLetterRefs(v any) []SupportLetterRef {
	items := asList(v)
	out := make([]SupportLetterRef, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		out = append(out, SupportLetterRef{
			ID:           str(m["id"]),
			ImprovedText: str(m["improved_text"]),
		})
	}
	return out
}

func uploadCitations(v any) []UploadCitation {
	items := asList(v)
	out := make([]UploadCitation, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		out = append(out, UploadCitation{
			Section: str(m["section"]),
			DocID:   str(m["doc_id"]),
			Reason:  str(m["reason"]),
		})
	}
	return out
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func strOr(v any, def string) string {
	if s := str(v); s != "" {
		return s
	}
	return def
}

// strList keeps well-typed, non-empty string elements and drops the rest.
func strList(v any) []string {
	items := asList(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func boolVal(v any) bool {
	b, _ := v.(bool)
	return b
}
