package promptbuild

import "github.com/sells-group/research-engine/internal/model"

// leadTableSchema is the required output schema for lead-oriented
// categories. Thirteen columns, pipe-delimited, one row per target.
const leadTableSchema = `Present results as a markdown table with exactly these 13 columns:
| Company Name | Website | Industry | Company Size | Revenue Estimate | Location | Key Decision Maker | Title | Contact Signal | Pain Points | Fit Rationale | Opportunity Score | Sources |
Every row must be complete. Use "unknown" rather than inventing a value.`

// categoryInstructions maps each research category to its instruction
// template. Every category has a fixed required-output structure.
var categoryInstructions = map[model.Category]string{
	model.CategoryMarketAnalysis: `Produce a market analysis with these sections:
1. Market size and growth trajectory (with figures and years)
2. Key segments and their relative share
3. Primary demand drivers and headwinds
4. Competitive concentration
5. Outlook
Cite a source for every figure.`,

	model.CategoryCompetitiveIntelligence: `Produce a competitive intelligence brief:
1. Named competitors with positioning summary
2. Relative strengths and weaknesses
3. Recent strategic moves (last 18 months)
4. Pricing and go-to-market differences
5. Threat assessment
Name sources for every claim about a specific company.`,

	model.CategoryTechnologyTrends: `Produce a technology trends report:
1. Emerging technologies relevant to the query
2. Adoption stage for each (experimental / early / mainstream)
3. Key vendors and open-source projects
4. Expected impact over 1, 3 and 5 years
5. Risks and unknowns`,

	model.CategoryIndustryInsights: `Produce an industry insights summary:
1. Current state of the industry
2. Regulatory and economic pressures
3. Consolidation and investment activity
4. Labor and supply dynamics
5. What operators in this industry worry about`,

	model.CategoryAcademicResearch: `Produce an academic research survey:
1. Key publications and findings on the topic
2. Competing schools of thought
3. Methodological notes and data limitations
4. Open research questions
Cite authors and publication years. Flag any claim you cannot source.`,

	model.CategoryFinancialAnalysis: `Produce a financial analysis:
1. Revenue, margin and growth figures with periods
2. Capital structure and funding history
3. Peer comparison on key ratios
4. Risks to the financial outlook
Distinguish reported figures from estimates.`,

	model.CategoryConsumerBehavior: `Produce a consumer behavior analysis:
1. Target demographics and psychographics
2. Purchase drivers and objections
3. Channel preferences
4. Observed shifts in the last 2 years
5. Implications for positioning`,

	model.CategoryRegulatoryLandscape: `Produce a regulatory landscape review:
1. Governing bodies and applicable regulations
2. Recent and pending rule changes
3. Compliance obligations and typical costs
4. Enforcement climate
5. Jurisdictional differences within the requested scope`,

	model.CategorySalesOpportunities: `Identify concrete sales opportunities matching the ideal customer profile.
` + leadTableSchema,

	model.CategoryCompanyDeepResearch: `Produce a company deep-research dossier per target:
1. Corporate overview (founding, ownership, locations)
2. Products and services
3. Leadership and headcount signals
4. Financial signals (revenue estimates, funding, filings)
5. Recent news and trigger events
` + leadTableSchema,

	model.CategoryGeneralResearch: `Answer the research query thoroughly:
1. Direct answer first
2. Supporting evidence with sources
3. Caveats and conflicting information
4. Suggested follow-up questions`,
}

// baseSystem is the shared system prompt skeleton.
const baseSystem = `You are a business research analyst. Research the request below rigorously.
Never fabricate company names, people, URLs or figures. If a fact cannot be verified, say so explicitly.
Output plain markdown.`

// providerSkepticism is appended to the system prompt per provider. The
// prompts are structurally equivalent; they differ in the verification
// intensity demanded of each model.
var providerSkepticism = map[string]string{
	"openai":     "Verify every company and URL you output actually exists. Prefer omitting a result over guessing.",
	"anthropic":  "Verify every company and URL you output actually exists. Prefer omitting a result over guessing.",
	"gemini":     "Apply strict source verification: every claim about a specific organization needs a named, checkable source. Discard anything you cannot verify.",
	"perplexity": "You have live search. Cite a retrievable URL for every factual claim, and cross-check company existence against at least two sources before including it.",
}
