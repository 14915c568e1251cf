package domain

// Phase is one step of the configuration workflow. Phases are strictly
// linear; there is no branching.
type Phase string

const (
	// PhaseProposeGroups builds the group collection until every topic is covered.
	PhaseProposeGroups Phase = "propose_groups"

	// PhaseConfigureQueries gives every group at least one usable source query.
	PhaseConfigureQueries Phase = "configure_queries"

	// PhaseConfigureFilters optionally attaches semantic filters; always skippable.
	PhaseConfigureFilters Phase = "configure_filters"

	// PhaseValidateFinalize is terminal; exit happens through the external
	// finalize action gated on the validation engine's ready_to_activate.
	PhaseValidateFinalize Phase = "validate_finalize"
)

// phaseOrder fixes the linear sequence of the workflow.
var phaseOrder = []Phase{
	PhaseProposeGroups,
	PhaseConfigureQueries,
	PhaseConfigureFilters,
	PhaseValidateFinalize,
}

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// IsValid returns true if the phase is a known workflow phase
func (p Phase) IsValid() bool {
	return p.index() >= 0
}

func (p Phase) index() int {
	for i, ph := range phaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

// Next returns the following phase and false when already terminal
func (p Phase) Next() (Phase, bool) {
	i := p.index()
	if i < 0 || i == len(phaseOrder)-1 {
		return p, false
	}
	return phaseOrder[i+1], true
}

// Prev returns the preceding phase and false when already initial
func (p Phase) Prev() (Phase, bool) {
	i := p.index()
	if i <= 0 {
		return p, false
	}
	return phaseOrder[i-1], true
}

// Phases returns the workflow phases in order
func Phases() []Phase {
	return append([]Phase(nil), phaseOrder...)
}

// PhaseComplete evaluates the phase's completion predicate against the
// current group state. Predicates are recomputed on every call; editing
// group state from a later phase may un-satisfy an earlier phase without
// moving the editor anywhere.
func PhaseComplete(p Phase, topics []Topic, groups []RetrievalGroup) bool {
	switch p {
	case PhaseProposeGroups:
		return len(groups) > 0 && AnalyzeCoverage(topics, groups).IsComplete
	case PhaseConfigureQueries:
		if len(groups) == 0 {
			return false
		}
		for i := range groups {
			if !groups[i].HasUsableQuery() {
				return false
			}
		}
		return true
	case PhaseConfigureFilters:
		// Filters are optional; the phase only asks that the workflow has
		// produced something worth filtering.
		for i := range groups {
			if groups[i].HasUsableQuery() {
				return true
			}
		}
		return false
	case PhaseValidateFinalize:
		// Not locally gated; the finalize action consults the validation
		// engine's ready_to_activate instead.
		return true
	default:
		return false
	}
}

// CanAdvance reports whether forward navigation out of the phase is
// permitted. configure_filters may always be skipped forward; every other
// phase requires its completion predicate.
func CanAdvance(p Phase, topics []Topic, groups []RetrievalGroup) bool {
	if _, ok := p.Next(); !ok {
		return false
	}
	if p == PhaseConfigureFilters {
		return true
	}
	return PhaseComplete(p, topics, groups)
}

// PhaseState is one phase's current truth value, independent of where the
// editor happens to be navigated.
type PhaseState struct {
	Phase      Phase `json:"phase"`
	Complete   bool  `json:"complete"`
	Current    bool  `json:"current"`
	CanAdvance bool  `json:"can_advance"`
}

// PhaseStates evaluates every phase against the current group state
func PhaseStates(current Phase, topics []Topic, groups []RetrievalGroup) []PhaseState {
	states := make([]PhaseState, 0, len(phaseOrder))
	for _, p := range phaseOrder {
		states = append(states, PhaseState{
			Phase:      p,
			Complete:   PhaseComplete(p, topics, groups),
			Current:    p == current,
			CanAdvance: CanAdvance(p, topics, groups),
		})
	}
	return states
}
