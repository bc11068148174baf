package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask_LabelEvidence(t *testing.T) {
	m := NewMasker(nil)
	assert.Equal(t, "Contact: John ****", m.Mask("Contact: John Smith"))
}

func TestMask_HonorificEvidence(t *testing.T) {
	m := NewMasker(nil)
	assert.Equal(t, "Dr. Jane ****", m.Mask("Dr. Jane Doe"))
	assert.Equal(t, "Meet Mr. Alan ****.", m.Mask("Meet Mr. Alan Turing."))
}

func TestMask_JobTitleEvidence(t *testing.T) {
	m := NewMasker(nil)
	assert.Equal(t, "Maria ****, CEO of Acme Widgets Inc", m.Mask("Maria Lopez, CEO of Acme Widgets Inc"))
	assert.Equal(t, "David ****, Founder", m.Mask("David Chen, Founder"))
}

func TestMask_NoEvidenceLeavesTextAlone(t *testing.T) {
	m := NewMasker(nil)
	// A bare capitalized pair without person context must pass through:
	// precision over recall.
	in := "The report mentions Quantum Dynamics as a market leader."
	assert.Equal(t, in, m.Mask(in))
}

func TestMask_ExclusionList(t *testing.T) {
	m := NewMasker(nil)
	for _, phrase := range []string{
		"Goldman Sachs",
		"Machine Learning",
		"New York",
	} {
		in := "Contact: " + phrase
		assert.Equal(t, in, m.Mask(in), "excluded phrase %q must never be modified", phrase)
	}
}

func TestMask_CorporateSuffixGuard(t *testing.T) {
	m := NewMasker(nil)
	in := "Contact: Acme Widgets Inc. for details"
	assert.Equal(t, in, m.Mask(in))
}

func TestMask_AtContextGuard(t *testing.T) {
	m := NewMasker(nil)
	in := "She works at Quantum Partners" // "at" context vetoes masking
	assert.Equal(t, in, m.Mask(in))
}

func TestMask_TableHeaderSkipped(t *testing.T) {
	m := NewMasker(nil)
	header := "| Company Name | Contact Email | Industry | Revenue |"
	assert.Equal(t, header, m.Mask(header))
}

func TestMask_Idempotent(t *testing.T) {
	m := NewMasker(nil)
	inputs := []string{
		"Contact: John Smith",
		"Dr. Jane Doe and Contact: Bob Jones",
		"Maria Lopez, CEO",
		"Nothing to mask here at all",
	}
	for _, in := range inputs {
		once := m.Mask(in)
		assert.Equal(t, once, m.Mask(once), "mask(mask(x)) must equal mask(x) for %q", in)
	}
}

func TestMask_MultipleNamesOnOneLine(t *testing.T) {
	m := NewMasker(nil)
	got := m.Mask("Contact: John Smith, Manager: Alice Brown")
	assert.Equal(t, "Contact: John ****, Manager: Alice ****", got)
}

func TestMask_MultilineText(t *testing.T) {
	m := NewMasker(nil)
	in := "Summary of findings\nContact: John Smith\nRevenue grew 20%"
	want := "Summary of findings\nContact: John ****\nRevenue grew 20%"
	assert.Equal(t, want, m.Mask(in))
}

func TestViolations(t *testing.T) {
	m := NewMasker(nil)

	// Unmasked person with evidence is a violation.
	v := m.Violations("Contact: John Smith")
	require.Len(t, v, 1)
	assert.Equal(t, "John Smith", v[0])

	// Properly masked text has none.
	assert.Empty(t, m.Violations("Contact: John ****"))

	// Excluded phrases are not violations.
	assert.Empty(t, m.Violations("Contact: Goldman Sachs"))

	// No evidence, no violation.
	assert.Empty(t, m.Violations("Quantum Dynamics released a report"))
}

func TestLoadTermList_Override(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/terms.yaml"
	writeFile(t, path, `
excluded_phrases: [Custom Phrase]
person_labels: [Contact]
honorifics: [Dr]
job_titles: [CEO]
corporate_suffixes: [Inc]
table_columns: [Company, Contact, Email]
`)

	tl, err := LoadTermList(path)
	require.NoError(t, err)

	m := NewMasker(tl)
	assert.Equal(t, "Contact: Custom Phrase", m.Mask("Contact: Custom Phrase"))
	assert.Equal(t, "Contact: John ****", m.Mask("Contact: John Smith"))
}

func TestLoadTermList_MissingFile(t *testing.T) {
	_, err := LoadTermList("/nonexistent/terms.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read term list")
}

func TestDefaultTermList(t *testing.T) {
	tl := DefaultTermList()
	assert.True(t, tl.isExcludedPhrase("Goldman Sachs"))
	assert.True(t, tl.isExcludedPhrase("machine learning"))
	assert.True(t, tl.isHonorific("Dr."))
	assert.True(t, tl.isPersonLabel("Contact:"))
	assert.True(t, tl.isJobTitle("CEO"))
	assert.True(t, tl.isCorporateSuffix("Inc"))
}
