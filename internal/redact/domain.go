package redact

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// parkingPhrases mark a domain-parking page body.
var parkingPhrases = []string{
	"this domain is for sale",
	"buy this domain",
	"domain is parked",
	"parked free",
	"domain parking",
	"courtesy of godaddy",
	"purchase this domain",
}

// deniedDomains are placeholder or parking hosts that never belong in real
// research output.
var deniedDomains = map[string]bool{
	"example.com":      true,
	"example.org":      true,
	"example.net":      true,
	"test.com":         true,
	"domain.com":       true,
	"yourdomain.com":   true,
	"yoursite.com":     true,
	"yourcompany.com":  true,
	"mywebsite.com":    true,
	"company.com":      true,
	"website.com":      true,
	"placeholder.com":  true,
	"sample.com":       true,
	"sedoparking.com":  true,
	"godaddysites.com": true,
	"hugedomains.com":  true,
}

// DomainCheck is the verdict for one URL found in provider output.
type DomainCheck struct {
	URL      string `json:"url"`
	Domain   string `json:"domain"`
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

// DomainChecker flags fabricated or parked web domains in provider output.
// The check never blocks the pipeline: an unreachable URL is reported as
// invalid, not retried.
type DomainChecker struct {
	http      *http.Client
	liveProbe bool
	maxBody   int64
}

// DomainCheckerOption configures a DomainChecker.
type DomainCheckerOption func(*DomainChecker)

// WithLiveProbe enables the reachability probe (HEAD then a bounded GET).
func WithLiveProbe(on bool) DomainCheckerOption {
	return func(c *DomainChecker) { c.liveProbe = on }
}

// WithProbeClient overrides the probe http.Client.
func WithProbeClient(hc *http.Client) DomainCheckerOption {
	return func(c *DomainChecker) { c.http = hc }
}

// NewDomainChecker creates a checker. The live probe is off by default.
func NewDomainChecker(opts ...DomainCheckerOption) *DomainChecker {
	c := &DomainChecker{
		http:    &http.Client{Timeout: 10 * time.Second},
		maxBody: 64 << 10,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Check extracts http(s) URLs from text and validates each one. Results
// come back in order of first appearance, one entry per distinct URL.
func (c *DomainChecker) Check(ctx context.Context, text string) []DomainCheck {
	seen := make(map[string]bool)
	var checks []DomainCheck

	for _, raw := range urlPattern.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ".,;:")
		if seen[raw] {
			continue
		}
		seen[raw] = true
		checks = append(checks, c.checkOne(ctx, raw))
	}
	return checks
}

func (c *DomainChecker) checkOne(ctx context.Context, raw string) DomainCheck {
	check := DomainCheck{URL: raw}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		check.Reason = "unparseable url"
		return check
	}
	check.Domain = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	if deniedDomains[check.Domain] {
		check.Reason = "placeholder or parking domain"
		return check
	}

	if !c.liveProbe {
		check.Verified = true
		return check
	}

	verified, reason := c.probe(ctx, raw)
	check.Verified = verified
	check.Reason = reason
	return check
}

// probe performs a HEAD request and, when inconclusive, a bounded GET to
// sniff the body for parking markers. Network failure means invalid, never
// a retry.
func (c *DomainChecker) probe(ctx context.Context, raw string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return false, "probe request failed"
	}
	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Debug("domain probe failed", zap.String("url", raw), zap.Error(err))
		return false, "unreachable"
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return false, "http status " + resp.Status
	}

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return false, "probe request failed"
	}
	getResp, err := c.http.Do(getReq)
	if err != nil {
		return false, "unreachable"
	}
	defer getResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(getResp.Body, c.maxBody))
	if err != nil {
		// A torn body still proves the host answered.
		return true, ""
	}

	lower := strings.ToLower(string(body))
	for _, phrase := range parkingPhrases {
		if strings.Contains(lower, phrase) {
			return false, "domain parking page"
		}
	}
	return true, ""
}
