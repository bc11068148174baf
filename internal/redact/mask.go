package redact

import (
	"regexp"
	"strings"
)

// MaskToken replaces a detected surname.
const MaskToken = "****"

// candidatePattern matches a generic two-token capitalized sequence, the
// weakest signal in the pipeline. Stronger pattern+context checks decide
// whether a candidate is actually a person.
var candidatePattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)

// Masker redacts likely person names. Detection is rule-based and biased
// toward precision: without positive person-context evidence the text is
// left unmodified.
type Masker struct {
	terms *TermList
}

// NewMasker creates a masker over the given term list.
func NewMasker(terms *TermList) *Masker {
	if terms == nil {
		terms = DefaultTermList()
	}
	return &Masker{terms: terms}
}

// Mask replaces the surname of every likely person name with MaskToken.
// Masking is idempotent: already-masked text passes through unchanged.
func (m *Masker) Mask(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = m.maskLine(line)
	}
	return strings.Join(lines, "\n")
}

func (m *Masker) maskLine(line string) string {
	if m.terms.isTableHeader(line) {
		return line
	}

	matches := candidatePattern.FindAllStringIndex(line, -1)
	// Replace right to left so earlier indices stay valid.
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		phrase := line[start:end]

		if m.excluded(line, phrase, start, end) {
			continue
		}
		if !m.personEvidence(line, start, end) {
			continue
		}

		first, _, _ := strings.Cut(phrase, " ")
		line = line[:start] + first + " " + MaskToken + line[end:]
	}
	return line
}

// excluded applies the guard checks that veto masking regardless of
// evidence: curated phrase list, corporate suffix, and at/company context.
func (m *Masker) excluded(line, phrase string, start, end int) bool {
	if m.terms.isExcludedPhrase(phrase) {
		return true
	}
	if next := tokenAfter(line, end); m.terms.isCorporateSuffix(next) {
		return true
	}
	prev := strings.ToLower(tokenBefore(line, start))
	if prev == "at" || prev == "company" {
		return true
	}
	return false
}

// personEvidence reports whether the candidate carries positive evidence of
// being a person: an honorific, a person label, or a trailing job title.
func (m *Masker) personEvidence(line string, start, end int) bool {
	prev := tokenBefore(line, start)
	if m.terms.isHonorific(prev) {
		return true
	}
	if strings.HasSuffix(prev, ":") && m.terms.isPersonLabel(prev) {
		return true
	}
	if next := tokenAfter(line, end); m.terms.isJobTitle(next) {
		return true
	}
	return false
}

// tokenBefore returns the whitespace-delimited token immediately preceding
// position start, or "".
func tokenBefore(line string, start int) string {
	left := strings.TrimRight(line[:start], " ")
	if left == "" {
		return ""
	}
	if idx := strings.LastIndexByte(left, ' '); idx >= 0 {
		return left[idx+1:]
	}
	return left
}

// tokenAfter returns the next token after position end, skipping separator
// punctuation so "John Smith, CEO" still sees "CEO".
func tokenAfter(line string, end int) string {
	right := strings.TrimLeft(line[end:], " ,;-–—()")
	if right == "" {
		return ""
	}
	if idx := strings.IndexAny(right, " ,;:"); idx >= 0 {
		right = right[:idx]
	}
	return strings.TrimRight(right, ".")
}
