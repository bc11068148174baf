package model

// IdealCustomerProfile describes the customer a sales-opportunities request
// should target. Produced once in phase 1 and fed into every phase-2 prompt.
type IdealCustomerProfile struct {
	IndustryFocus      []string `json:"industry_focus"`
	CompanySizeRanges  []string `json:"company_size_ranges"`
	RevenueRanges      []string `json:"revenue_ranges"`
	Geographies        []string `json:"geographies"`
	DecisionMakerRoles []string `json:"decision_maker_roles"`
	PainPoints         []string `json:"pain_points"`
	FitCriteria        []string `json:"fit_criteria"`
}

// LeadProfile is the phase-1 artifact of the sales-opportunities pipeline.
// It lives only for the duration of a single request and is never persisted;
// it is reproducible from the request itself.
type LeadProfile struct {
	CompanyName       string               `json:"company_name"`
	ProductsServices  []string             `json:"products_services"`
	TargetSegments    []string             `json:"target_segments"`
	ValuePropositions []string             `json:"value_propositions"`
	ICP               IdealCustomerProfile `json:"ideal_customer_profile"`

	// Synthesized is true when the profile was assembled from heuristics
	// after a parse failure rather than from provider output.
	Synthesized bool `json:"synthesized,omitempty"`
}
