package domain

import (
	"sort"
	"strings"
	"time"
)

// ProvenanceManual marks metadata on groups the user created by hand,
// as opposed to the model identifier stamped on AI-proposed groups.
const ProvenanceManual = "user:manual"

// DefaultFilterThreshold is the threshold a disabled filter carries so that
// re-enabling starts from a sensible value.
const DefaultFilterThreshold = 0.7

// SourceQuery is one source-specific search expression within a group.
// A source absent from a group's source_queries map is simply not configured.
type SourceQuery struct {
	Expression string `json:"query_expression"`
	Enabled    bool   `json:"enabled"`
}

// IsUsable returns true if the query is enabled with a non-blank expression
func (q SourceQuery) IsUsable() bool {
	return q.Enabled && strings.TrimSpace(q.Expression) != ""
}

// SemanticFilter is an optional post-retrieval relevance check.
// When disabled, criteria and threshold are inert and never validated.
type SemanticFilter struct {
	Enabled   bool    `json:"enabled"`
	Criteria  string  `json:"criteria"`
	Threshold float64 `json:"threshold"`
}

// DisabledFilter returns the canonical inert filter value
func DisabledFilter() SemanticFilter {
	return SemanticFilter{Enabled: false, Criteria: "", Threshold: DefaultFilterThreshold}
}

// IsConfigured returns true if the filter is enabled with non-blank criteria
func (f SemanticFilter) IsConfigured() bool {
	return f.Enabled && strings.TrimSpace(f.Criteria) != ""
}

// Clamp returns a copy of the filter with the threshold forced into [0,1].
// Out-of-range thresholds are clamped rather than rejected.
func (f SemanticFilter) Clamp() SemanticFilter {
	if f.Threshold < 0 {
		f.Threshold = 0
	}
	if f.Threshold > 1 {
		f.Threshold = 1
	}
	return f
}

// GroupMetadata records how a group came to be. Every group carries it;
// manually created groups use the user:manual provenance marker rather
// than omitting the field.
type GroupMetadata struct {
	GeneratedAt      time.Time `json:"generated_at"`
	GeneratedBy      string    `json:"generated_by"`
	Reasoning        string    `json:"reasoning,omitempty"`
	InputsConsidered []string  `json:"inputs_considered,omitempty"`
	HumanEdited      bool      `json:"human_edited"`
	Confidence       *float64  `json:"confidence,omitempty"`
}

// IsManual returns true if the group was created by the user rather than proposed
func (m GroupMetadata) IsManual() bool {
	return m.GeneratedBy == ProvenanceManual
}

// NewManualMetadata returns metadata for a user-created group
func NewManualMetadata(now time.Time) GroupMetadata {
	return GroupMetadata{
		GeneratedAt: now,
		GeneratedBy: ProvenanceManual,
		HumanEdited: true,
	}
}

// NewGeneratedMetadata returns metadata for an AI-proposed group
func NewGeneratedMetadata(now time.Time, generatedBy, reasoning string, inputs []string, confidence *float64) GroupMetadata {
	return GroupMetadata{
		GeneratedAt:      now,
		GeneratedBy:      generatedBy,
		Reasoning:        reasoning,
		InputsConsidered: inputs,
		HumanEdited:      false,
		Confidence:       confidence,
	}
}

// backfill fills any missing metadata fields with manual defaults so that
// consumers never have to guard against an undefined provenance.
func (m GroupMetadata) backfill(now time.Time) GroupMetadata {
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = now
	}
	if m.GeneratedBy == "" {
		m.GeneratedBy = ProvenanceManual
	}
	return m
}

// RetrievalGroup bundles a set of covered topics with the source queries
// that serve them and an optional semantic filter. Groups are mutated only
// through the collection operations in groupset.go, which produce new
// snapshots rather than editing in place.
type RetrievalGroup struct {
	ID             string                     `json:"group_id"`
	Name           string                     `json:"name"`
	Rationale      string                     `json:"rationale,omitempty"`
	CoveredTopics  []string                   `json:"covered_topics"`
	SourceQueries  map[SourceType]SourceQuery `json:"source_queries"`
	SemanticFilter SemanticFilter             `json:"semantic_filter"`
	Metadata       GroupMetadata              `json:"metadata"`
}

// HasUsableQuery returns true if at least one source query is enabled
// with a non-blank expression
func (g *RetrievalGroup) HasUsableQuery() bool {
	for _, q := range g.SourceQueries {
		if q.IsUsable() {
			return true
		}
	}
	return false
}

// CoversTopic reports whether the group claims the given topic
func (g *RetrievalGroup) CoversTopic(topicID string) bool {
	for _, id := range g.CoveredTopics {
		if id == topicID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the group
func (g *RetrievalGroup) Clone() RetrievalGroup {
	c := *g
	c.CoveredTopics = append([]string(nil), g.CoveredTopics...)
	c.SourceQueries = make(map[SourceType]SourceQuery, len(g.SourceQueries))
	for src, q := range g.SourceQueries {
		c.SourceQueries[src] = q
	}
	c.Metadata.InputsConsidered = append([]string(nil), g.Metadata.InputsConsidered...)
	if g.Metadata.Confidence != nil {
		v := *g.Metadata.Confidence
		c.Metadata.Confidence = &v
	}
	return c
}

// normalizeTopics sorts the covered-topic set and removes duplicates so that
// structurally equal groups compare equal regardless of edit order.
func normalizeTopics(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
