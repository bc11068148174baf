package orchestrator

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/research-engine/internal/model"
)

// verifyTimeout bounds the whole advisory pass, including any live domain
// probes.
const verifyTimeout = 30 * time.Second

// companyPattern matches candidate company names: capitalized phrases with
// a trailing corporate suffix.
var companyPattern = regexp.MustCompile(`\b(?:[A-Z][A-Za-z&]+ )+(?:Inc|LLC|Corp|Corporation|Ltd|Co|Group|Holdings)\b`)

// backgroundVerify re-scans delivered texts for surviving masking
// violations, implausible domains and candidate company names. It runs on
// a detached context after the response is built; it never alters the
// response and never blocks the caller. Findings are telemetry only.
func (o *Orchestrator) backgroundVerify(results map[string]model.ProviderResult) {
	texts := make(map[string]string, len(results))
	for name, res := range results {
		if !res.Failed() && res.Text != "" {
			texts[name] = res.Text
		}
	}
	if len(texts) == 0 {
		if o.onVerifyDone != nil {
			o.onVerifyDone()
		}
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
		defer cancel()

		for name, text := range texts {
			for _, phrase := range o.masker.Violations(text) {
				zap.L().Warn("verify: unmasked name survived delivery",
					zap.String("provider", name),
					zap.String("phrase", phrase))
			}
			for _, dc := range o.domains.Check(ctx, text) {
				if !dc.Verified {
					zap.L().Warn("verify: suspect domain in delivered text",
						zap.String("provider", name),
						zap.String("domain", dc.Domain),
						zap.String("reason", dc.Reason))
				}
			}
			companies := companyPattern.FindAllString(text, -1)
			if len(companies) > 0 {
				zap.L().Debug("verify: candidate companies extracted",
					zap.String("provider", name),
					zap.Int("count", len(companies)))
			}
		}

		if o.onVerifyDone != nil {
			o.onVerifyDone()
		}
	}()
}
