// Package leads implements the two-phase sales-opportunities pipeline:
// extract an ideal-customer profile once, then generate leads per provider
// conditioned on that profile.
package leads

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/research-engine/internal/model"
)

// profileSystem instructs the designated provider to emit the profile as
// strict JSON so phase 1 can be parsed rather than interpreted.
const profileSystem = `You are a B2B sales analyst. Respond with a single JSON object and nothing else.
No markdown fences, no commentary.`

const profileSchema = `{
  "company_name": "",
  "products_services": [],
  "target_segments": [],
  "value_propositions": [],
  "ideal_customer_profile": {
    "industry_focus": [],
    "company_size_ranges": [],
    "revenue_ranges": [],
    "geographies": [],
    "decision_maker_roles": [],
    "pain_points": [],
    "fit_criteria": []
  }
}`

// ProfilePrompt builds the phase-1 extraction prompt.
func ProfilePrompt(req *model.ResearchRequest) string {
	var sb strings.Builder
	sb.WriteString("Build an ideal customer profile for the business described below.\n")
	sb.WriteString("Business context: ")
	sb.WriteString(strings.TrimSpace(req.Query))
	sb.WriteString("\n")
	if req.TargetWebsite != "" {
		sb.WriteString("Company website: " + req.TargetWebsite + "\n")
	}
	if req.GeographicScope != "" {
		sb.WriteString("Geographic focus: " + req.GeographicScope + "\n")
	}
	if req.CompanySize != "" {
		sb.WriteString("Target company size: " + req.CompanySize + "\n")
	}
	if req.RevenueCategory != "" {
		sb.WriteString("Target revenue category: " + req.RevenueCategory + "\n")
	}
	sb.WriteString("\nFill this JSON schema exactly. Leave arrays empty rather than guessing:\n")
	sb.WriteString(profileSchema)
	return sb.String()
}

// ParseProfile parses phase-1 provider output into a LeadProfile. The text
// may wrap the object in markdown fences or prose; only the outermost JSON
// object is considered.
func ParseProfile(text string) (*model.LeadProfile, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.New("leads: no JSON object in profile output")
	}

	var p model.LeadProfile
	if err := json.Unmarshal([]byte(text[start:end+1]), &p); err != nil {
		return nil, eris.Wrap(err, "leads: parse profile")
	}
	if p.CompanyName == "" && len(p.ProductsServices) == 0 && len(p.ICP.IndustryFocus) == 0 {
		return nil, eris.New("leads: profile output is empty")
	}
	return &p, nil
}

// industryKeywords maps business-context keywords to an inferred industry
// focus. Used only by the synthesized fallback profile.
var industryKeywords = map[string]string{
	"software":      "Software & Technology",
	"saas":          "Software & Technology",
	"cloud":         "Software & Technology",
	"manufactur":    "Manufacturing",
	"industrial":    "Manufacturing",
	"pump":          "Industrial Equipment",
	"valve":         "Industrial Equipment",
	"construction":  "Construction",
	"contractor":    "Construction",
	"logistics":     "Logistics & Transportation",
	"freight":       "Logistics & Transportation",
	"healthcare":    "Healthcare",
	"medical":       "Healthcare",
	"clinic":        "Healthcare",
	"finance":       "Financial Services",
	"insurance":     "Financial Services",
	"bank":          "Financial Services",
	"retail":        "Retail & E-commerce",
	"ecommerce":     "Retail & E-commerce",
	"restaurant":    "Hospitality & Food Service",
	"hospitality":   "Hospitality & Food Service",
	"real estate":   "Real Estate",
	"property":      "Real Estate",
	"legal":         "Legal Services",
	"law firm":      "Legal Services",
	"marketing":     "Marketing & Advertising",
	"agency":        "Marketing & Advertising",
	"energy":        "Energy & Utilities",
	"solar":         "Energy & Utilities",
	"education":     "Education",
	"training":      "Education",
	"agricultur":    "Agriculture",
	"farm":          "Agriculture",
	"staffing":      "Staffing & Recruiting",
	"recruit":       "Staffing & Recruiting",
	"accounting":    "Accounting & Tax",
	"bookkeep":      "Accounting & Tax",
	"security":      "Security Services",
	"cybersecurity": "Security Services",
}

// SynthesizeProfile assembles a best-effort profile from the request itself
// when the extraction call fails or cannot be parsed. It never fails.
func SynthesizeProfile(req *model.ResearchRequest) *model.LeadProfile {
	p := &model.LeadProfile{Synthesized: true}

	if req.TargetWebsite != "" {
		p.CompanyName = companyNameFromURL(req.TargetWebsite)
	}

	haystack := strings.ToLower(req.Query + " " + req.TargetWebsite)
	seen := make(map[string]bool)
	for kw, industry := range industryKeywords {
		if strings.Contains(haystack, kw) && !seen[industry] {
			seen[industry] = true
			p.ICP.IndustryFocus = append(p.ICP.IndustryFocus, industry)
		}
	}
	sort.Strings(p.ICP.IndustryFocus)

	if req.CompanySize != "" {
		p.ICP.CompanySizeRanges = []string{req.CompanySize}
	}
	if req.RevenueCategory != "" {
		p.ICP.RevenueRanges = []string{req.RevenueCategory}
	}
	if req.GeographicScope != "" {
		p.ICP.Geographies = []string{req.GeographicScope}
	}
	p.ICP.DecisionMakerRoles = []string{"Owner", "CEO", "VP of Operations"}
	return p
}

// companyNameFromURL derives a display name from a website host:
// "https://www.acme-industrial.com" becomes "Acme Industrial".
func companyNameFromURL(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if i := strings.Index(host, "."); i > 0 {
		host = host[:i]
	}
	words := strings.FieldsFunc(host, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ProfileBlock serializes a profile into the block appended to every
// phase-2 prompt.
func ProfileBlock(p *model.LeadProfile) string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		// LeadProfile contains only strings and slices; this cannot happen
		// outside a corrupted runtime.
		return ""
	}
	return fmt.Sprintf("\nIdeal customer profile (generate leads matching this profile):\n%s\n", data)
}
