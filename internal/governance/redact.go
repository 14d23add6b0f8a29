// Package governance holds the redaction and policy rules applied to
// user text before anything is logged or persisted. Redaction is pure
// and idempotent: applying it to already-redacted text changes nothing.
package governance

import (
	"regexp"
)

const (
	emailToken = "[REDACTED_EMAIL]"
	phoneToken = "[REDACTED_PHONE]"
	ssnToken   = "[REDACTED_SSN]"
	fullToken  = "[REDACTED_FULL_TEXT]"
)

// maxRedactableLen bounds the input the pattern scanner will walk.
// Anything larger is masked wholesale rather than scanned, so redaction
// never becomes the slow or failing stage of a request.
const maxRedactableLen = 1 << 20

var (
	emailRE = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(\+?1[-.\s]?)?(\(?\d{3}\)?[-.\s]?)\d{3}[-.\s]?\d{4}\b`)
	ssnRE   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

// RedactionResult is the outcome of masking sensitive patterns in text.
type RedactionResult struct {
	RedactedText string         `json:"redacted_text"`
	Counts       map[string]int `json:"redaction_counts"`
}

// Total returns the total number of masked matches.
func (r RedactionResult) Total() int {
	sum := 0
	for _, n := range r.Counts {
		sum += n
	}
	return sum
}

// Redact masks email addresses, phone numbers and SSN-like digit runs
// with placeholder tokens and reports how many of each were found.
// Oversized input degrades to masking the full text instead of
// scanning it.
func Redact(text string) RedactionResult {
	counts := map[string]int{"email": 0, "phone": 0, "ssn": 0}

	if len(text) > maxRedactableLen {
		return RedactionResult{
			RedactedText: fullToken,
			Counts:       counts,
		}
	}

	out := text

	out, n := replaceAll(emailRE, out, emailToken)
	counts["email"] += n

	out, n = replaceAll(phoneRE, out, phoneToken)
	counts["phone"] += n

	out, n = replaceAll(ssnRE, out, ssnToken)
	counts["ssn"] += n

	return RedactionResult{
		RedactedText: out,
		Counts:       counts,
	}
}

func replaceAll(re *regexp.Regexp, text, token string) (string, int) {
	n := 0
	result := re.ReplaceAllStringFunc(text, func(string) string {
		n++
		return token
	})
	return result, n
}
