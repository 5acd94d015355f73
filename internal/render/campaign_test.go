package render

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/parolegy/parolegy-backend/internal/blueprint"
)

func sampleBlueprint(t *testing.T, raw string) *blueprint.CampaignBlueprint {
	t.Helper()
	return blueprint.Normalize(raw)
}

func TestCampaignDeterministic(t *testing.T) {
	bp := sampleBlueprint(t, `{
		"case_summary":{"client_name":"Jane Doe","tdcj_number":"02134567","key_facts":["Model inmate"]},
		"sections":{
			"synopsis":{"paragraphs":["Jane Doe has served ten years with a clean record."]},
			"strengths":{"bullets":["Completed GED","Clean disciplinary record"]},
			"support_letters":{"supporters":[{"name":"Mary Doe","relationship":"Mother","summary":"Offers housing and daily support."}]}
		}
	}`)

	first, err := Campaign(bp, "Jane Doe", "02134567")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := Campaign(bp, "Jane Doe", "02134567")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("rendering the same blueprint twice produced different bytes (%d vs %d)", len(first), len(second))
	}
}

func TestCampaignNonEmptyPDF(t *testing.T) {
	bp := sampleBlueprint(t, `{}`)
	out, err := Campaign(bp, "Client", "—")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("rendered zero bytes")
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header")
	}
}

func TestSectionSequenceOrder(t *testing.T) {
	base := []string{
		SectionCover,
		SectionTOC,
		SectionSynopsis,
		SectionClientLetter,
		SectionStrengths,
		SectionPlan30_90_180,
		SectionHomePlan,
		SectionTransportation,
		SectionEmployment,
		SectionFuture,
		SectionSupportLetters,
		SectionClosing,
	}
	withTreatment := append(append([]string{}, base[:11]...), SectionTreatmentPlan, SectionClosing)

	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "without_treatment_plan",
			raw:  `{}`,
			want: base,
		},
		{
			name: "with_treatment_plan",
			raw:  `{"sections":{"treatment_plan":{"description":"Outpatient counseling"}}}`,
			want: withTreatment,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bp := sampleBlueprint(t, tc.raw)
			got := SectionSequence(bp)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("section sequence=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestCampaignEmptyListsStillRenderPages(t *testing.T) {
	empty := sampleBlueprint(t, `{}`)
	full := sampleBlueprint(t, `{"sections":{"treatment_plan":{"description":"Counseling","commitments":["Weekly meetings"]}}}`)

	emptySeq := SectionSequence(empty)
	fullSeq := SectionSequence(full)
	if len(emptySeq) != 12 {
		t.Fatalf("expected 12 structural page groups without treatment plan, got %d", len(emptySeq))
	}
	if len(fullSeq) != 13 {
		t.Fatalf("expected 13 page groups with treatment plan, got %d", len(fullSeq))
	}

	// Pages are structural: both shapes must render without error.
	if _, err := Campaign(empty, "Client", "—"); err != nil {
		t.Fatalf("render empty blueprint: %v", err)
	}
	if _, err := Campaign(full, "Client", "—"); err != nil {
		t.Fatalf("render full blueprint: %v", err)
	}
}
