package blueprint

// CampaignBlueprint is the canonical campaign shape. After Normalize every
// field is present: strings are "" or a default, lists are empty slices,
// never nil in the JSON sense. TreatmentPlan is the one section whose
// absence is meaningful and therefore preserved.
type CampaignBlueprint struct {
	CaseSummary            CaseSummary       `json:"case_summary"`
	PanelConcerns          []PanelConcern    `json:"panel_concerns"`
	NarrativeStrategy      NarrativeStrategy `json:"narrative_strategy"`
	Sections               Sections          `json:"sections"`
	CitationsToUserUploads []UploadCitation  `json:"citations_to_user_uploads"`
	ComplianceChecks       ComplianceChecks  `json:"compliance_checks"`
}

type CaseSummary struct {
	ClientName string   `json:"client_name"`
	TDCJNumber string   `json:"tdcj_number"`
	KeyFacts   []string `json:"key_facts"`
}

type PanelConcern struct {
	Concern    string `json:"concern"`
	Evidence   string `json:"evidence"`
	Mitigation string `json:"mitigation"`
}

type NarrativeStrategy struct {
	Themes   []string `json:"themes"`
	Tone     string   `json:"tone"`
	DoNotSay []string `json:"do_not_say"`
}

type Sections struct {
	Cover          Cover          `json:"cover"`
	TOC            []string       `json:"toc"`
	Synopsis       Synopsis       `json:"synopsis"`
	ClientLetter   ClientLetter   `json:"client_letter"`
	Strengths      Strengths      `json:"strengths"`
	Plan30_90_180  Plan30_90_180  `json:"plan_30_90_180"`
	HomePlan       HomePlan       `json:"home_plan"`
	Transportation Transportation `json:"transportation"`
	Employment     Employment     `json:"employment"`
	Future         Future         `json:"future"`
	SupportLetters SupportLetters `json:"support_letters"`
	TreatmentPlan  *TreatmentPlan `json:"treatment_plan,omitempty"`
	Closing        Closing        `json:"closing"`
}

type Cover struct {
	Tagline              string `json:"tagline"`
	ClientPhotoAvailable bool   `json:"client_photo_available"`
}

type Synopsis struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

type ClientLetter struct {
	Salutation string   `json:"salutation"`
	Paragraphs []string `json:"paragraphs"`
	Closing    string   `json:"closing"`
}

type Strengths struct {
	Bullets []string `json:"bullets"`
}

type Plan30_90_180 struct {
	Plan30  []string `json:"plan_30"`
	Plan90  []string `json:"plan_90"`
	Plan180 []string `json:"plan_180"`
}

type HomePlan struct {
	Address          string   `json:"address,omitempty"`
	Description      string   `json:"description"`
	StabilityFactors []string `json:"stability_factors"`
}

type Transportation struct {
	Description string   `json:"description"`
	Details     []string `json:"details"`
}

type Employment struct {
	History       []string `json:"history"`
	Opportunities []string `json:"opportunities"`
	Plan          []string `json:"plan"`
}

type Future struct {
	Goals       []string `json:"goals"`
	Commitments []string `json:"commitments"`
}

type SupportLetters struct {
	Supporters []Supporter        `json:"supporters"`
	Letters    []SupportLetterRef `json:"letters"`
}

type Supporter struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Summary      string `json:"summary"`
}

type SupportLetterRef struct {
	ID           string `json:"id"`
	ImprovedText string `json:"improved_text,omitempty"`
}

type TreatmentPlan struct {
	Description string   `json:"description"`
	Commitments []string `json:"commitments"`
}

type Closing struct {
	Paragraphs []string `json:"paragraphs"`
}

type UploadCitation struct {
	Section string `json:"section"`
	DocID   string `json:"doc_id"`
	Reason  string `json:"reason"`
}

type ComplianceChecks struct {
	TruthfulnessConfirmed bool     `json:"truthfulness_confirmed"`
	MissingInfo           []string `json:"missing_info"`
}

// DocumentSummary is the evidence metadata shown to the generator. It never
// carries file bytes.
type DocumentSummary struct {
	Type     string `json:"type"`
	FileName string `json:"fileName"`
	ID       string `json:"id"`
}
