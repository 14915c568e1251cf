package domain

import (
	"fmt"
	"strings"
)

// nearCompleteThreshold is the coverage percentage above which remaining
// uncovered topics are additionally surfaced as warnings.
const nearCompleteThreshold = 80

// ConfigurationStatus reports per-group configuration completeness.
// Missing queries block activation; missing filters are informational only.
type ConfigurationStatus struct {
	GroupsWithoutQueries []string `json:"groups_without_queries"`
	GroupsWithoutFilters []string `json:"groups_without_filters"`
}

// ValidationResult is the readiness verdict for a group collection
type ValidationResult struct {
	Coverage            CoverageResult      `json:"coverage"`
	ConfigurationStatus ConfigurationStatus `json:"configuration_status"`
	Warnings            []string            `json:"warnings"`
	ReadyToActivate     bool                `json:"ready_to_activate"`
}

// Validate combines coverage with per-group configuration completeness.
// ready_to_activate requires complete coverage and at least one usable query
// per group; filters never affect readiness. Inputs are treated as immutable
// snapshots and the function is safely re-callable.
func Validate(topics []Topic, groups []RetrievalGroup) ValidationResult {
	result := ValidationResult{
		Coverage: AnalyzeCoverage(topics, groups),
		ConfigurationStatus: ConfigurationStatus{
			GroupsWithoutQueries: []string{},
			GroupsWithoutFilters: []string{},
		},
		Warnings: []string{},
	}

	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t.ID] = true
	}

	for i := range groups {
		g := &groups[i]
		name := groupDisplayName(g)

		if !g.HasUsableQuery() {
			result.ConfigurationStatus.GroupsWithoutQueries = append(result.ConfigurationStatus.GroupsWithoutQueries, name)
		}
		if !g.SemanticFilter.IsConfigured() {
			result.ConfigurationStatus.GroupsWithoutFilters = append(result.ConfigurationStatus.GroupsWithoutFilters, name)
		}

		for _, sq := range sortedQueries(g.SourceQueries) {
			if sq.query.Enabled && strings.TrimSpace(sq.query.Expression) == "" {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("group %q has an enabled %s query with an empty expression", name, sq.source))
			}
		}

		// Stale references from a topic set that has shrunk are tolerated
		// and surfaced here rather than rejected at edit time.
		for _, id := range g.CoveredTopics {
			if !known[id] {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("group %q covers topic %q which is no longer in the semantic space", name, id))
			}
		}
	}

	if !result.Coverage.IsComplete && result.Coverage.CoveragePercentage >= nearCompleteThreshold {
		for _, u := range result.Coverage.Uncovered {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("topic %q is not covered by any group", u.Name))
		}
	}

	result.ReadyToActivate = result.Coverage.IsComplete &&
		len(result.ConfigurationStatus.GroupsWithoutQueries) == 0

	return result
}

func groupDisplayName(g *RetrievalGroup) string {
	if g.Name != "" {
		return g.Name
	}
	return g.ID
}

type sourceQueryPair struct {
	source SourceType
	query  SourceQuery
}

// sortedQueries iterates a group's query map in the fixed source order so
// warning output is deterministic.
func sortedQueries(queries map[SourceType]SourceQuery) []sourceQueryPair {
	out := make([]sourceQueryPair, 0, len(queries))
	for _, src := range KnownSources() {
		if q, ok := queries[src]; ok {
			out = append(out, sourceQueryPair{source: src, query: q})
		}
	}
	return out
}
