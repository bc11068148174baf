// Package redact post-processes provider output for privacy compliance:
// a rule-based name masking pass and a domain plausibility check.
package redact

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed terms.yaml
var defaultTermsYAML []byte

// TermList holds the exclusion and evidence vocabularies driving the name
// masking pass. Lists are data, not code: override them via config to tune
// precision without a rebuild.
type TermList struct {
	ExcludedPhrases   []string `yaml:"excluded_phrases"`
	CorporateSuffixes []string `yaml:"corporate_suffixes"`
	Honorifics        []string `yaml:"honorifics"`
	PersonLabels      []string `yaml:"person_labels"`
	JobTitles         []string `yaml:"job_titles"`
	TableColumns      []string `yaml:"table_columns"`

	excluded  map[string]bool
	suffixes  map[string]bool
	honorific map[string]bool
	labels    map[string]bool
	titles    map[string]bool
	columns   map[string]bool
}

// DefaultTermList returns the embedded starting configuration.
func DefaultTermList() *TermList {
	tl, err := parseTermList(defaultTermsYAML)
	if err != nil {
		// The embedded file is validated by tests; a parse failure here is
		// a build defect.
		panic(err)
	}
	return tl
}

// LoadTermList reads a term list from a YAML file.
func LoadTermList(path string) (*TermList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "redact: read term list %s", path)
	}
	tl, err := parseTermList(data)
	if err != nil {
		return nil, eris.Wrapf(err, "redact: parse term list %s", path)
	}
	return tl, nil
}

func parseTermList(data []byte) (*TermList, error) {
	var tl TermList
	if err := yaml.Unmarshal(data, &tl); err != nil {
		return nil, eris.Wrap(err, "redact: unmarshal term list")
	}
	tl.index()
	return &tl, nil
}

func (tl *TermList) index() {
	tl.excluded = lowerSet(tl.ExcludedPhrases)
	tl.suffixes = lowerSet(tl.CorporateSuffixes)
	tl.honorific = lowerSet(tl.Honorifics)
	tl.labels = lowerSet(tl.PersonLabels)
	tl.titles = lowerSet(tl.JobTitles)
	tl.columns = lowerSet(tl.TableColumns)
}

func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[strings.ToLower(strings.TrimSpace(it))] = true
	}
	return set
}

func (tl *TermList) isExcludedPhrase(phrase string) bool {
	return tl.excluded[strings.ToLower(phrase)]
}

func (tl *TermList) isCorporateSuffix(tok string) bool {
	return tl.suffixes[strings.ToLower(tok)]
}

func (tl *TermList) isHonorific(tok string) bool {
	return tl.honorific[strings.ToLower(tok)]
}

func (tl *TermList) isPersonLabel(tok string) bool {
	return tl.labels[strings.ToLower(strings.TrimSuffix(tok, ":"))]
}

func (tl *TermList) isJobTitle(tok string) bool {
	return tl.titles[strings.ToLower(tok)]
}

// isTableHeader reports whether a line looks like a table header row:
// three or more column-keyword hits.
func (tl *TermList) isTableHeader(line string) bool {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == '|' || r == '\t' || r == ',' || r == ' '
	})
	hits := 0
	for _, f := range fields {
		if tl.columns[strings.ToLower(strings.TrimSpace(f))] {
			hits++
			if hits >= 3 {
				return true
			}
		}
	}
	return false
}
