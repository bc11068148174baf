// Package promptbuild assembles provider-specific prompt and system text
// from a research request. Building is pure: no I/O, no clock.
package promptbuild

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/research-engine/internal/model"
)

// maxInlineRows caps how many upload rows are written into the prompt
// verbatim. Remaining rows are referenced by count so none are dropped
// silently.
const maxInlineRows = 10

// maxContextFindings caps carried-over findings from the previous batch.
const maxContextFindings = 10

// Output is the built prompt pair for one provider.
type Output struct {
	Prompt string
	System string
}

// Builder assembles prompts. Zero value is usable.
type Builder struct{}

// New creates a Builder.
func New() *Builder { return &Builder{} }

// Build returns prompt and system text for every enabled provider in the
// request.
func (b *Builder) Build(req *model.ResearchRequest) map[string]Output {
	out := make(map[string]Output)
	for _, name := range req.EnabledProviders() {
		out[name] = b.BuildFor(name, req)
	}
	return out
}

// BuildFor assembles the prompt pair for a single provider.
func (b *Builder) BuildFor(providerName string, req *model.ResearchRequest) Output {
	var sb strings.Builder

	if req.IsContinuation && req.PreviousResult != "" {
		writeContextBlock(&sb, req)
	}

	sb.WriteString("Research request: ")
	sb.WriteString(strings.TrimSpace(req.Query))
	sb.WriteString("\n")

	writeConfigBlock(&sb, req)

	if len(req.UploadRows) > 0 {
		writeRowsBlock(&sb, req)
	}

	category := req.Category
	if category == "" {
		category = model.CategoryGeneralResearch
	}
	if instr, ok := categoryInstructions[category]; ok {
		sb.WriteString("\n")
		sb.WriteString(instr)
		sb.WriteString("\n")
	}

	if req.Instructions != "" {
		sb.WriteString("\nAdditional instructions for this batch:\n")
		sb.WriteString(strings.TrimSpace(req.Instructions))
		sb.WriteString("\n")
	}

	system := baseSystem
	if extra, ok := providerSkepticism[providerName]; ok {
		system += "\n" + extra
	}

	return Output{Prompt: sb.String(), System: system}
}

// writeConfigBlock serializes active feature flags and filters into a
// structured block appended to the query.
func writeConfigBlock(sb *strings.Builder, req *model.ResearchRequest) {
	var lines []string

	if req.Depth != "" {
		lines = append(lines, "depth: "+string(req.Depth))
	}
	if req.GeographicScope != "" {
		lines = append(lines, "geographic scope: "+req.GeographicScope)
	}
	if req.Timeframe != "" {
		lines = append(lines, "timeframe: "+req.Timeframe)
	}
	if req.CompanySize != "" {
		lines = append(lines, "company size: "+req.CompanySize)
	}
	if req.RevenueCategory != "" {
		lines = append(lines, "revenue category: "+req.RevenueCategory)
	}
	if req.TargetWebsite != "" {
		lines = append(lines, "target website: "+req.TargetWebsite)
	}

	var flags []string
	if req.Flags.IncludeFounders {
		flags = append(flags, "include founders")
	}
	if req.Flags.IncludeRevenue {
		flags = append(flags, "include revenue data")
	}
	if req.Flags.IncludeFunding {
		flags = append(flags, "include funding history")
	}
	if req.Flags.IncludeTechStack {
		flags = append(flags, "include technology stack")
	}
	if req.Flags.IncludeHiringSignals {
		flags = append(flags, "include hiring signals")
	}
	if req.Flags.AnalyzeSalesOps {
		flags = append(flags, "analyze sales opportunities")
	}
	if len(flags) > 0 {
		lines = append(lines, "requested dimensions: "+strings.Join(flags, ", "))
	}

	if len(lines) == 0 {
		return
	}

	sb.WriteString("\nResearch configuration:\n")
	for _, l := range lines {
		sb.WriteString("- ")
		sb.WriteString(l)
		sb.WriteString("\n")
	}
}

// writeRowsBlock inlines the first rows of uploaded tabular data and makes
// every row a mandatory research target.
func writeRowsBlock(sb *strings.Builder, req *model.ResearchRequest) {
	total := len(req.UploadRows)
	inline := total
	if inline > maxInlineRows {
		inline = maxInlineRows
	}

	sb.WriteString(fmt.Sprintf("\nUploaded data (%s): %d rows in this batch. ", req.UploadFilename, total))
	sb.WriteString("Every row below is a mandatory research target. Research each one; never skip or merge rows.\n")

	for i := 0; i < inline; i++ {
		row := req.UploadRows[i]
		keys := make([]string, 0, len(row.Fields))
		for k := range row.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var parts []string
		for _, k := range keys {
			if v := strings.TrimSpace(row.Fields[k]); v != "" {
				parts = append(parts, k+"="+v)
			}
		}
		sb.WriteString(fmt.Sprintf("Row %d: %s\n", row.Index+1, strings.Join(parts, "; ")))
	}

	if total > inline {
		sb.WriteString(fmt.Sprintf("...and %d more rows in the same format; they are equally mandatory targets.\n", total-inline))
	}
}

// writeContextBlock prepends key findings from the previous batch so later
// batches stay thematically consistent.
func writeContextBlock(sb *strings.Builder, req *model.ResearchRequest) {
	findings := KeyFindings(req.PreviousResult, maxContextFindings)

	sb.WriteString(fmt.Sprintf("Context from previous batch (batch %d of an ongoing job):\n", req.BatchIndex-1))
	if len(findings) == 0 {
		sb.WriteString("- (no structured findings extracted; keep terminology consistent with the prior batch)\n")
	}
	for _, f := range findings {
		sb.WriteString("- ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	sb.WriteString("Continue the same research over the next batch of targets. Stay consistent with the context above.\n\n")
}

// KeyFindings extracts up to limit bullet-style lines from prior output.
// The heuristic is deliberately simple: bullet or numbered lines carry the
// conclusions in every category template.
func KeyFindings(text string, limit int) []string {
	var findings []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isBulletLine(line) {
			cleaned := strings.TrimSpace(strings.TrimLeft(line, "-*•0123456789. \t"))
			if cleaned != "" {
				findings = append(findings, cleaned)
			}
			if len(findings) >= limit {
				break
			}
		}
	}
	return findings
}

func isBulletLine(line string) bool {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "• ") {
		return true
	}
	// Numbered list: "1. ", "12. "
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 0 && i+1 < len(line) && line[i] == '.' && line[i+1] == ' '
}
