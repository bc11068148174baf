// Package model defines the core entities shared across the research engine.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Category identifies a research category. Each category maps to its own
// instruction template in the prompt builder.
type Category string

const (
	CategoryMarketAnalysis          Category = "market_analysis"
	CategoryCompetitiveIntelligence Category = "competitive_intelligence"
	CategoryTechnologyTrends        Category = "technology_trends"
	CategoryIndustryInsights        Category = "industry_insights"
	CategoryAcademicResearch        Category = "academic_research"
	CategoryFinancialAnalysis       Category = "financial_analysis"
	CategoryConsumerBehavior        Category = "consumer_behavior"
	CategoryRegulatoryLandscape     Category = "regulatory_landscape"
	CategorySalesOpportunities      Category = "sales_opportunities"
	CategoryCompanyDeepResearch     Category = "company_deep_research"
	CategoryGeneralResearch         Category = "general_research"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryMarketAnalysis,
	CategoryCompetitiveIntelligence,
	CategoryTechnologyTrends,
	CategoryIndustryInsights,
	CategoryAcademicResearch,
	CategoryFinancialAnalysis,
	CategoryConsumerBehavior,
	CategoryRegulatoryLandscape,
	CategorySalesOpportunities,
	CategoryCompanyDeepResearch,
	CategoryGeneralResearch,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Depth controls how exhaustive the research should be.
type Depth string

const (
	DepthBasic         Depth = "basic"
	DepthIntermediate  Depth = "intermediate"
	DepthComprehensive Depth = "comprehensive"
)

// FeatureFlags toggles optional research dimensions.
type FeatureFlags struct {
	IncludeFounders      bool `json:"include_founders"`
	IncludeRevenue       bool `json:"include_revenue"`
	IncludeFunding       bool `json:"include_funding"`
	IncludeTechStack     bool `json:"include_tech_stack"`
	IncludeHiringSignals bool `json:"include_hiring_signals"`
	AnalyzeSalesOps      bool `json:"analyze_sales_opportunities"`
}

// UploadRow is one row of uploaded tabular data, keyed by column header.
// Order of rows is preserved by the enclosing slice.
type UploadRow struct {
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields"`
}

// ResearchRequest is the unit of work submitted to the orchestrator.
type ResearchRequest struct {
	Query    string   `json:"query"`
	Category Category `json:"category"`
	Depth    Depth    `json:"depth"`

	// Optional scoping filters.
	GeographicScope string `json:"geographic_scope,omitempty"`
	Timeframe       string `json:"timeframe,omitempty"`
	CompanySize     string `json:"company_size,omitempty"`
	RevenueCategory string `json:"revenue_category,omitempty"`
	TargetWebsite   string `json:"target_website,omitempty"`

	Flags FeatureFlags `json:"flags"`

	// Providers maps provider name -> enabled.
	Providers map[string]bool `json:"providers"`

	// Uploaded tabular data, if any.
	UploadRows     []UploadRow `json:"upload_rows,omitempty"`
	UploadFilename string      `json:"upload_filename,omitempty"`

	// Batch continuation fields.
	SessionID      string `json:"session_id,omitempty"`
	BatchIndex     int    `json:"batch_index,omitempty"`
	IsContinuation bool   `json:"is_continuation,omitempty"`
	PreviousResult string `json:"previous_result,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
}

// EnabledProviders returns the names of providers marked enabled, in no
// particular order.
func (r *ResearchRequest) EnabledProviders() []string {
	var names []string
	for name, on := range r.Providers {
		if on {
			names = append(names, name)
		}
	}
	return names
}

// Validate checks the request is well-formed enough to dispatch. Provider
// credential problems are not validation errors; they degrade per provider.
func (r *ResearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return eris.New("model: research query is required")
	}
	if r.Category != "" && !r.Category.Valid() {
		return eris.Errorf("model: unknown category %q", r.Category)
	}
	if len(r.EnabledProviders()) == 0 {
		return eris.New("model: at least one provider must be enabled")
	}
	return nil
}
