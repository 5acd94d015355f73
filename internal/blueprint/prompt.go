package blueprint

import (
	"encoding/json"
	"fmt"
)

// SystemPrompt holds the non-negotiable generation constraints. Rule text is
// load-bearing: downstream content correctness depends on the no-fabrication
// and no-entitlement rules, not just tone.
const SystemPrompt = `You are an expert parole campaign writer helping incarcerated individuals in Texas create compelling, truthful, and effective parole campaign materials.

CRITICAL RULES:
1. NEVER fabricate facts, credentials, certificates, or experiences
2. NEVER instruct users to lie, evade, or manipulate unlawfully
3. NEVER imply entitlement to parole - parole is discretionary
4. Focus on accountability, remorse, rehabilitation, and concrete reentry plans
5. Keep content concise - panel members spend only 7-10 minutes per case
6. Use respectful, humble, non-defensive tone
7. Address public safety concerns directly
8. Emphasize concrete plans over promises

You must respond with a single JSON object conforming exactly to the Campaign Blueprint schema, with no surrounding prose.

Your goal is to help present the truth in the most compelling, structured way possible while maintaining complete honesty and accuracy.`

// BuildBlueprintPrompt serializes the intake answers and the document
// inventory into the user prompt. Pure function: map keys marshal in sorted
// order, so identical inputs yield identical payloads. Inventory entries are
// metadata only (type, fileName, id).
func BuildBlueprintPrompt(responses map[string]any, docs []DocumentSummary) string {
	answersJSON, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		answersJSON = []byte("{}")
	}
	if docs == nil {
		docs = []DocumentSummary{}
	}
	docsJSON, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		docsJSON = []byte("[]")
	}

	return fmt.Sprintf(`Analyze the following case information and generate a comprehensive Campaign Blueprint.

ASSESSMENT DATA:
%s

AVAILABLE DOCUMENTS:
%s

Generate a Campaign Blueprint that:
1. Identifies likely panel concerns based on the case facts
2. Develops a narrative strategy that addresses those concerns
3. Structures all campaign sections with truthful, compelling content
4. Cites specific user uploads where relevant
5. Flags any missing information that should be addressed

Remember: Be truthful, concise, and focused on accountability, public safety, and concrete reentry plans.
`, answersJSON, docsJSON)
}

// BuildSectionImprovementPrompt asks the generator to tighten one section of
// an existing campaign against the identified panel concerns.
func BuildSectionImprovementPrompt(sectionName, currentContent string, concerns []string) string {
	concernsJSON, err := json.Marshal(concerns)
	if err != nil {
		concernsJSON = []byte("[]")
	}
	return fmt.Sprintf(`Improve the following %s section of a parole campaign:

CURRENT CONTENT:
%s

PANEL CONCERNS TO ADDRESS:
%s

Improvements should:
- Make it more concise for 7-10 minute review
- Better address public safety concerns
- Strengthen accountability and remorse messaging
- Enhance concrete plan details
- Maintain complete truthfulness
- Use respectful, humble tone

Return only the improved content, not explanations.
`, sectionName, currentContent, concernsJSON)
}
