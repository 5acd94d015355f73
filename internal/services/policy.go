package services

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/parolegy/parolegy-backend/internal/logger"
)

// defaultPolicyYAML mirrors the product upload table. A deployment can
// override it with DOCUMENT_POLICY_PATH.
const defaultPolicyYAML = `
document_types:
  SUPPORT_LETTER:
    min: 3
    max: 10
  PHOTO:
    min: 10
    max: 20
  CERTIFICATE:
    min: 0
    max: 50
  EMPLOYMENT_PLAN:
    min: 0
    max: 5
  HOUSING_PLAN:
    min: 0
    max: 5
  OTHER:
    min: 0
    max: 20
`

type DocumentTypePolicy struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type documentPolicyFile struct {
	DocumentTypes map[string]DocumentTypePolicy `yaml:"document_types"`
}

// DocumentPolicy holds per-type upload limits and the minimum counts a case
// must satisfy before campaign generation. Eligibility is business policy and
// runs before the pipeline, never inside it.
type DocumentPolicy struct {
	log   *logger.Logger
	types map[string]DocumentTypePolicy
}

func NewDocumentPolicy(log *logger.Logger) (*DocumentPolicy, error) {
	policyLog := log.With("service", "DocumentPolicy")

	raw := []byte(defaultPolicyYAML)
	if path := os.Getenv("DOCUMENT_POLICY_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read document policy file: %w", err)
		}
		policyLog.Info("Loaded document policy override", "path", path)
		raw = data
	}

	var file documentPolicyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse document policy: %w", err)
	}
	if len(file.DocumentTypes) == 0 {
		return nil, fmt.Errorf("document policy defines no document types")
	}
	return &DocumentPolicy{log: policyLog, types: file.DocumentTypes}, nil
}

func (p *DocumentPolicy) KnownType(docType string) bool {
	_, ok := p.types[docType]
	return ok
}

func (p *DocumentPolicy) MaxFor(docType string) int {
	return p.types[docType].Max
}

// CheckEligibility reports every document type whose minimum count is not
// met by the given counts.
func (p *DocumentPolicy) CheckEligibility(counts map[string]int64) []string {
	var missing []string
	for docType, policy := range p.types {
		if policy.Min <= 0 {
			continue
		}
		if counts[docType] < int64(policy.Min) {
			missing = append(missing, fmt.Sprintf("%s: need at least %d, have %d", docType, policy.Min, counts[docType]))
		}
	}
	sort.Strings(missing)
	return missing
}

// RequiredTypes lists the document types that carry a minimum.
func (p *DocumentPolicy) RequiredTypes() []string {
	var out []string
	for docType, policy := range p.types {
		if policy.Min > 0 {
			out = append(out, docType)
		}
	}
	sort.Strings(out)
	return out
}

// Types lists every configured document type.
func (p *DocumentPolicy) Types() []string {
	out := make([]string, 0, len(p.types))
	for docType := range p.types {
		out = append(out, docType)
	}
	sort.Strings(out)
	return out
}
