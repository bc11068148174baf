package redact

// Violations scans output text for likely person names that survived the
// masking pass. It applies the same detection rules as Mask; any hit in
// text that claims to be post-masking is a masking violation. Violations
// are advisory and never block delivery.
func (m *Masker) Violations(text string) []string {
	var found []string
	for _, line := range splitLines(text) {
		if m.terms.isTableHeader(line) {
			continue
		}
		for _, idx := range candidatePattern.FindAllStringIndex(line, -1) {
			start, end := idx[0], idx[1]
			phrase := line[start:end]
			if m.excluded(line, phrase, start, end) {
				continue
			}
			if !m.personEvidence(line, start, end) {
				continue
			}
			found = append(found, phrase)
		}
	}
	return found
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return append(lines, text[start:])
}
