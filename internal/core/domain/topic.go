package domain

// Importance ranks how much a topic matters to the monitoring goal
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// IsValid returns true if the importance is a known level
func (i Importance) IsValid() bool {
	switch i {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	default:
		return false
	}
}

// Topic is an atomic unit of subject-matter coverage.
// Topics are authored upstream and are read-only for the duration
// of a configuration session.
type Topic struct {
	ID          string     `json:"topic_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Importance  Importance `json:"importance"`
}

// Entity is a named concept in the semantic space
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Relationship links two entities in the semantic space
type Relationship struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Type   string `json:"type,omitempty"`
}

// SemanticSpace is the externally authored topic set (plus entities and
// relationships) that retrieval must cover. Supplied once per session.
type SemanticSpace struct {
	Topics        []Topic        `json:"topics"`
	Entities      []Entity       `json:"entities,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// HasTopic reports whether the space contains a topic with the given id
func (s *SemanticSpace) HasTopic(id string) bool {
	for _, t := range s.Topics {
		if t.ID == id {
			return true
		}
	}
	return false
}

// TopicIDs returns the set of topic ids in the space
func (s *SemanticSpace) TopicIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Topics))
	for _, t := range s.Topics {
		ids[t.ID] = true
	}
	return ids
}

// TopicNames returns the topic names in space order, used when recording
// which inputs a generation call considered
func (s *SemanticSpace) TopicNames() []string {
	names := make([]string, 0, len(s.Topics))
	for _, t := range s.Topics {
		names = append(names, t.Name)
	}
	return names
}
