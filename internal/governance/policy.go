package governance

import (
	"regexp"
	"sort"
	"strings"
)

// Risk flags attached to plans by the policy engine.
const (
	FlagPotentialPII   = "POTENTIAL_PII"
	FlagMissingContext = "MISSING_CONTEXT"
)

// piiTerms are request-text markers that suggest the user is handling
// personal data, independent of whether a redaction pattern fired.
var piiTerms = []string{"ssn", "social security", "password", "dob", "date of birth"}

// PolicyEngine derives risk flags for a request. Rules are fixed at
// construction time; evaluation is deterministic.
type PolicyEngine struct {
	piiTerms    []string
	piiPatterns []*regexp.Regexp
}

// NewPolicyEngine creates a policy engine with the default PII rules.
func NewPolicyEngine() *PolicyEngine {
	return &PolicyEngine{
		piiTerms:    piiTerms,
		piiPatterns: []*regexp.Regexp{emailRE, phoneRE, ssnRE},
	}
}

// AddPIITerm registers an additional term that marks text as
// potentially containing personal data.
func (e *PolicyEngine) AddPIITerm(term string) {
	e.piiTerms = append(e.piiTerms, strings.ToLower(term))
}

// EvaluateInput holds the request context a policy evaluation sees.
type EvaluateInput struct {
	Text          string
	HasSchemaPath bool
	NeedsSchema   bool
}

// Evaluate returns the sorted set of risk flags for a request.
func (e *PolicyEngine) Evaluate(in EvaluateInput) []string {
	flags := map[string]struct{}{}

	lowered := strings.ToLower(in.Text)
	for _, term := range e.piiTerms {
		if strings.Contains(lowered, term) {
			flags[FlagPotentialPII] = struct{}{}
			break
		}
	}
	if _, found := flags[FlagPotentialPII]; !found {
		for _, re := range e.piiPatterns {
			if re.MatchString(in.Text) {
				flags[FlagPotentialPII] = struct{}{}
				break
			}
		}
	}

	if in.NeedsSchema && !in.HasSchemaPath {
		flags[FlagMissingContext] = struct{}{}
	}

	result := make([]string, 0, len(flags))
	for flag := range flags {
		result = append(result, flag)
	}
	sort.Strings(result)
	return result
}
