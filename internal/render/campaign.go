package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/parolegy/parolegy-backend/internal/blueprint"
)

// Section names, one per page group, in render order.
const (
	SectionCover          = "cover"
	SectionTOC            = "toc"
	SectionSynopsis       = "synopsis"
	SectionClientLetter   = "client_letter"
	SectionStrengths      = "strengths"
	SectionPlan30_90_180  = "plan_30_90_180"
	SectionHomePlan       = "home_plan"
	SectionTransportation = "transportation"
	SectionEmployment     = "employment"
	SectionFuture         = "future"
	SectionSupportLetters = "support_letters"
	SectionTreatmentPlan  = "treatment_plan"
	SectionClosing        = "closing"
)

type section struct {
	name    string
	applies func(bp *blueprint.CampaignBlueprint) bool
	draw    func(d *doc, bp *blueprint.CampaignBlueprint)
}

// The single source of truth for page order. Every section is structural
// (rendered even with empty content) except the treatment plan, whose
// presence in the blueprint decides its page.
var sections = []section{
	{name: SectionCover, draw: (*doc).cover},
	{name: SectionTOC, draw: (*doc).toc},
	{name: SectionSynopsis, draw: (*doc).synopsis},
	{name: SectionClientLetter, draw: (*doc).clientLetter},
	{name: SectionStrengths, draw: (*doc).strengths},
	{name: SectionPlan30_90_180, draw: (*doc).plan},
	{name: SectionHomePlan, draw: (*doc).homePlan},
	{name: SectionTransportation, draw: (*doc).transportation},
	{name: SectionEmployment, draw: (*doc).employment},
	{name: SectionFuture, draw: (*doc).future},
	{name: SectionSupportLetters, draw: (*doc).supportLetters},
	{
		name:    SectionTreatmentPlan,
		applies: func(bp *blueprint.CampaignBlueprint) bool { return bp.Sections.TreatmentPlan != nil },
		draw:    (*doc).treatmentPlan,
	},
	{name: SectionClosing, draw: (*doc).closing},
}

// SectionSequence reports the page-group order a blueprint renders to.
func SectionSequence(bp *blueprint.CampaignBlueprint) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.applies != nil && !s.applies(bp) {
			continue
		}
		out = append(out, s.name)
	}
	return out
}

// Campaign renders a normalized blueprint into a Letter-size PDF. The client
// name and TDCJ number come from the caller's case record, not the blueprint.
// Output is byte-identical for identical inputs: document dates are pinned
// and every page is driven by the fixed section table above. The blueprint
// must already be normalized; no shape validation happens here.
func Campaign(bp *blueprint.CampaignBlueprint, clientName, tdcjNumber string) ([]byte, error) {
	d := newDoc(clientName, tdcjNumber)
	for _, s := range sections {
		if s.applies != nil && !s.applies(bp) {
			continue
		}
		d.pdf.AddPage()
		s.draw(d, bp)
	}

	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render campaign pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type doc struct {
	pdf        *fpdf.Fpdf
	tr         func(string) string
	clientName string
	tdcjNumber string
}

func newDoc(clientName, tdcjNumber string) *doc {
	pdf := fpdf.New("P", "pt", "Letter", "")
	// Pinned dates keep the output stable across runs.
	epoch := time.Unix(0, 0).UTC()
	pdf.SetCreationDate(epoch)
	pdf.SetModificationDate(epoch)
	pdf.SetTitle("Parole Campaign", true)
	pdf.SetMargins(40, 40, 40)
	pdf.SetAutoPageBreak(true, 50)

	d := &doc{
		pdf:        pdf,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		clientName: clientName,
		tdcjNumber: tdcjNumber,
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-40)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(102, 102, 102)
		pdf.CellFormat(0, 12, fmt.Sprintf("%d", pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	return d
}

func (d *doc) title(text string) {
	d.pdf.SetFont("Helvetica", "B", 20)
	d.pdf.MultiCell(0, 26, d.tr(text), "", "L", false)
	x := d.pdf.GetX()
	y := d.pdf.GetY() + 4
	pageW, _ := d.pdf.GetPageSize()
	d.pdf.SetLineWidth(2)
	d.pdf.Line(x, y, pageW-40, y)
	d.pdf.SetY(y + 14)
	d.pdf.SetFont("Helvetica", "", 11)
}

func (d *doc) heading(text string) {
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.MultiCell(0, 20, d.tr(text), "", "L", false)
	d.pdf.Ln(4)
	d.pdf.SetFont("Helvetica", "", 11)
}

func (d *doc) paragraph(text string) {
	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.MultiCell(0, 16, d.tr(text), "", "L", false)
	d.pdf.Ln(8)
}

func (d *doc) bullets(items []string) {
	d.pdf.SetFont("Helvetica", "", 11)
	for _, item := range items {
		d.pdf.SetX(55)
		d.pdf.MultiCell(0, 16, d.tr("• "+item), "", "L", false)
		d.pdf.Ln(4)
	}
	d.pdf.SetX(40)
}

func (d *doc) cover(bp *blueprint.CampaignBlueprint) {
	d.pdf.SetY(240)
	d.pdf.SetFont("Helvetica", "B", 32)
	d.pdf.MultiCell(0, 40, d.tr("Parole Campaign"), "", "C", false)
	d.pdf.Ln(10)
	d.pdf.SetFont("Helvetica", "", 18)
	d.pdf.SetTextColor(102, 102, 102)
	d.pdf.MultiCell(0, 24, d.tr(bp.Sections.Cover.Tagline), "", "C", false)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.Ln(30)
	d.pdf.SetFont("Helvetica", "", 14)
	d.pdf.MultiCell(0, 20, d.tr(d.clientName), "", "C", false)
	d.pdf.MultiCell(0, 20, d.tr("TDCJ #"+d.tdcjNumber), "", "C", false)
}

func (d *doc) toc(bp *blueprint.CampaignBlueprint) {
	d.title("Table of Contents")
	for i, item := range bp.Sections.TOC {
		d.paragraph(fmt.Sprintf("%d. %s", i+1, item))
	}
}

func (d *doc) synopsis(bp *blueprint.CampaignBlueprint) {
	d.title(bp.Sections.Synopsis.Title)
	for _, para := range bp.Sections.Synopsis.Paragraphs {
		d.paragraph(para)
	}
}

func (d *doc) clientLetter(bp *blueprint.CampaignBlueprint) {
	letter := bp.Sections.ClientLetter
	d.title("Letter to the Parole Board")
	d.paragraph(letter.Salutation)
	for _, para := range letter.Paragraphs {
		d.paragraph(para)
	}
	d.paragraph(letter.Closing)
}

func (d *doc) strengths(bp *blueprint.CampaignBlueprint) {
	d.title("Things You Should Know")
	d.bullets(bp.Sections.Strengths.Bullets)
}

func (d *doc) plan(bp *blueprint.CampaignBlueprint) {
	p := bp.Sections.Plan30_90_180
	d.title("Reentry Plan: 30 | 90 | 180 Days")
	d.heading("First 30 Days")
	d.bullets(p.Plan30)
	d.heading("Days 31-90")
	d.bullets(p.Plan90)
	d.heading("Days 91-180")
	d.bullets(p.Plan180)
}

func (d *doc) homePlan(bp *blueprint.CampaignBlueprint) {
	home := bp.Sections.HomePlan
	d.title("Home Plan")
	if home.Address != "" {
		d.paragraph("Address: " + home.Address)
	}
	d.paragraph(home.Description)
	d.bullets(home.StabilityFactors)
}

func (d *doc) transportation(bp *blueprint.CampaignBlueprint) {
	transport := bp.Sections.Transportation
	d.title("Transportation Plan")
	d.paragraph(transport.Description)
	d.bullets(transport.Details)
}

func (d *doc) employment(bp *blueprint.CampaignBlueprint) {
	emp := bp.Sections.Employment
	d.title("Employment History & Opportunities")
	d.heading("Employment History")
	d.bullets(emp.History)
	d.heading("Employment Opportunities")
	d.bullets(emp.Opportunities)
	d.heading("Employment Plan")
	d.bullets(emp.Plan)
}

func (d *doc) future(bp *blueprint.CampaignBlueprint) {
	fut := bp.Sections.Future
	d.title("Future Plans")
	d.heading("Goals")
	d.bullets(fut.Goals)
	d.heading("Commitments")
	d.bullets(fut.Commitments)
}

func (d *doc) supportLetters(bp *blueprint.CampaignBlueprint) {
	d.title("Letters of Support")
	for _, supporter := range bp.Sections.SupportLetters.Supporters {
		d.heading(supporter.Name + " - " + supporter.Relationship)
		d.paragraph(supporter.Summary)
	}
}

func (d *doc) treatmentPlan(bp *blueprint.CampaignBlueprint) {
	tp := bp.Sections.TreatmentPlan
	d.title("Post-Release Treatment Plan")
	d.paragraph(tp.Description)
	d.bullets(tp.Commitments)
}

func (d *doc) closing(bp *blueprint.CampaignBlueprint) {
	d.title("Closing")
	for _, para := range bp.Sections.Closing.Paragraphs {
		d.paragraph(para)
	}
}
