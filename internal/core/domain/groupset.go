package domain

import "time"

// Collection operations.
//
// Every operation takes a group collection and returns a new one; the input
// collection is never modified. Callers that hold the prior snapshot keep
// seeing the prior state.

// EditOrigin distinguishes user-initiated edits from applied generation
// results. Only user-initiated edits flip human_edited.
type EditOrigin string

const (
	EditOriginUser      EditOrigin = "user"
	EditOriginGenerated EditOrigin = "generated"
)

// GroupFieldPatch carries the editable free-text fields of a group.
// Nil members are left unchanged.
type GroupFieldPatch struct {
	Name          *string  `json:"name,omitempty"`
	Rationale     *string  `json:"rationale,omitempty"`
	CoveredTopics []string `json:"covered_topics,omitempty"`
}

// AddGroup appends a blank user-created group with the given id.
// The new group has no covered topics, no source queries, and a disabled filter.
func AddGroup(groups []RetrievalGroup, id string, now time.Time) []RetrievalGroup {
	next := cloneGroups(groups)
	next = append(next, RetrievalGroup{
		ID:             id,
		CoveredTopics:  []string{},
		SourceQueries:  map[SourceType]SourceQuery{},
		SemanticFilter: DisabledFilter(),
		Metadata:       NewManualMetadata(now),
	})
	return next
}

// AppendGroups appends proposed groups to the collection, normalizing each
// group's covered-topic set. Used when applying a proposal result.
func AppendGroups(groups []RetrievalGroup, proposed []RetrievalGroup) []RetrievalGroup {
	next := cloneGroups(groups)
	for _, g := range proposed {
		c := g.Clone()
		c.CoveredTopics = normalizeTopics(c.CoveredTopics)
		if c.SourceQueries == nil {
			c.SourceQueries = map[SourceType]SourceQuery{}
		}
		c.SemanticFilter = c.SemanticFilter.Clamp()
		next = append(next, c)
	}
	return next
}

// RemoveGroup deletes the group with the given id. An empty resulting
// collection is valid; downstream coverage simply degrades to incomplete.
func RemoveGroup(groups []RetrievalGroup, groupID string) ([]RetrievalGroup, error) {
	idx := indexOf(groups, groupID)
	if idx < 0 {
		return nil, ErrGroupNotFound
	}
	next := make([]RetrievalGroup, 0, len(groups)-1)
	for i := range groups {
		if i == idx {
			continue
		}
		next = append(next, groups[i].Clone())
	}
	return next, nil
}

// EditGroupFields shallow-merges name, rationale, and covered topics into the
// group and marks it human-edited. Missing metadata fields are back-filled
// with manual-provenance defaults rather than left undefined.
func EditGroupFields(groups []RetrievalGroup, groupID string, patch GroupFieldPatch, now time.Time) ([]RetrievalGroup, error) {
	return updateGroup(groups, groupID, func(g *RetrievalGroup) {
		if patch.Name != nil {
			g.Name = *patch.Name
		}
		if patch.Rationale != nil {
			g.Rationale = *patch.Rationale
		}
		if patch.CoveredTopics != nil {
			g.CoveredTopics = normalizeTopics(patch.CoveredTopics)
		}
		g.Metadata = g.Metadata.backfill(now)
		g.Metadata.HumanEdited = true
	})
}

// ToggleTopicMembership adds the topic to the group's covered set if absent
// and removes it if present. Applying the operation twice with identical
// arguments restores the original set.
func ToggleTopicMembership(groups []RetrievalGroup, groupID, topicID string, now time.Time) ([]RetrievalGroup, error) {
	return updateGroup(groups, groupID, func(g *RetrievalGroup) {
		if g.CoversTopic(topicID) {
			kept := make([]string, 0, len(g.CoveredTopics)-1)
			for _, id := range g.CoveredTopics {
				if id != topicID {
					kept = append(kept, id)
				}
			}
			g.CoveredTopics = kept
		} else {
			g.CoveredTopics = normalizeTopics(append(g.CoveredTopics, topicID))
		}
		g.Metadata = g.Metadata.backfill(now)
		g.Metadata.HumanEdited = true
	})
}

// SetSourceQuery replaces or creates the query entry for the source.
// human_edited flips only for user-originated edits; applying an unmodified
// generation result keeps it false.
func SetSourceQuery(groups []RetrievalGroup, groupID string, source SourceType, expression string, enabled bool, origin EditOrigin, now time.Time) ([]RetrievalGroup, error) {
	if !source.IsValid() {
		return nil, ErrUnknownSource
	}
	return updateGroup(groups, groupID, func(g *RetrievalGroup) {
		g.SourceQueries[source] = SourceQuery{Expression: expression, Enabled: enabled}
		g.Metadata = g.Metadata.backfill(now)
		if origin == EditOriginUser {
			g.Metadata.HumanEdited = true
		} else {
			g.Metadata.HumanEdited = false
		}
	})
}

// SetSemanticFilter replaces the filter wholesale, clamping the threshold
// into [0,1] before storage.
func SetSemanticFilter(groups []RetrievalGroup, groupID string, filter SemanticFilter, origin EditOrigin, now time.Time) ([]RetrievalGroup, error) {
	return updateGroup(groups, groupID, func(g *RetrievalGroup) {
		g.SemanticFilter = filter.Clamp()
		g.Metadata = g.Metadata.backfill(now)
		if origin == EditOriginUser {
			g.Metadata.HumanEdited = true
		} else {
			g.Metadata.HumanEdited = false
		}
	})
}

// DisableFilter resets the group's filter to the canonical inert value.
func DisableFilter(groups []RetrievalGroup, groupID string, now time.Time) ([]RetrievalGroup, error) {
	return updateGroup(groups, groupID, func(g *RetrievalGroup) {
		g.SemanticFilter = DisabledFilter()
		g.Metadata = g.Metadata.backfill(now)
		g.Metadata.HumanEdited = true
	})
}

// FindGroup returns the group with the given id, or nil
func FindGroup(groups []RetrievalGroup, groupID string) *RetrievalGroup {
	idx := indexOf(groups, groupID)
	if idx < 0 {
		return nil
	}
	return &groups[idx]
}

func indexOf(groups []RetrievalGroup, groupID string) int {
	for i := range groups {
		if groups[i].ID == groupID {
			return i
		}
	}
	return -1
}

func cloneGroups(groups []RetrievalGroup) []RetrievalGroup {
	next := make([]RetrievalGroup, 0, len(groups)+1)
	for i := range groups {
		next = append(next, groups[i].Clone())
	}
	return next
}

// updateGroup clones the collection, applies fn to the targeted group's copy,
// and returns the new collection.
func updateGroup(groups []RetrievalGroup, groupID string, fn func(*RetrievalGroup)) ([]RetrievalGroup, error) {
	idx := indexOf(groups, groupID)
	if idx < 0 {
		return nil, ErrGroupNotFound
	}
	next := cloneGroups(groups)
	fn(&next[idx])
	return next, nil
}
