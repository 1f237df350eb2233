package router

import (
	"strings"

	"github.com/bonzainsights/WorldInsights/internal/clients"
)

// Rule maps an indicator-code predicate to a source tag. Rules are
// evaluated in order; the first match wins.
type Rule struct {
	Match  func(code string) bool
	Source string
}

// Router resolves indicator codes to source tags using ordered pattern
// heuristics over the code string. This is best effort, not a lookup
// against a canonical catalog: codes that match no rule resolve to the
// fallback provider, which carries the broadest catalog.
type Router struct {
	rules    []Rule
	fallback string
}

// New creates a router with the default rule set: WHO code prefixes,
// FAOSTAT domain prefixes, then weather and solar keywords, falling
// back to the World Bank.
func New() *Router {
	return &Router{
		rules: []Rule{
			{Source: clients.SourceWHO, Match: hasAnyPrefix("WHOSIS_", "MDG_")},
			{Source: clients.SourceFAO, Match: hasAnyPrefix("QC", "RL", "FS")},
			{Source: clients.SourceOpenMeteo, Match: containsAnyFold("temperature", "precipitation")},
			{Source: clients.SourceNASA, Match: containsAnyFold("solar", "radiation")},
		},
		fallback: clients.SourceWorldBank,
	}
}

// Resolve returns the source tag responsible for an indicator code
func (r *Router) Resolve(code string) string {
	for _, rule := range r.rules {
		if rule.Match(code) {
			return rule.Source
		}
	}
	return r.fallback
}

// ResolveAll maps each indicator code to its source tag
func (r *Router) ResolveAll(codes []string) map[string]string {
	mapping := make(map[string]string, len(codes))
	for _, code := range codes {
		mapping[code] = r.Resolve(code)
	}
	return mapping
}

func hasAnyPrefix(prefixes ...string) func(string) bool {
	return func(code string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(code, p) {
				return true
			}
		}
		return false
	}
}

func containsAnyFold(substrings ...string) func(string) bool {
	return func(code string) bool {
		lower := strings.ToLower(code)
		for _, s := range substrings {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}
