package domain

import (
	"strings"
	"testing"
)

func usableQuery(expr string) SourceQuery {
	return SourceQuery{Expression: expr, Enabled: true}
}

func TestValidate_EnabledBlankQueryBlocksReadiness(t *testing.T) {
	topics := testTopics("t1")
	g := groupCovering("g1", "t1")
	g.SourceQueries[SourcePubMed] = SourceQuery{Expression: "", Enabled: true}
	groups := []RetrievalGroup{g}

	result := Validate(topics, groups)

	if result.ReadyToActivate {
		t.Error("an enabled query with a blank expression must not count as usable")
	}
	if len(result.ConfigurationStatus.GroupsWithoutQueries) != 1 {
		t.Errorf("expected group listed without queries, got %v",
			result.ConfigurationStatus.GroupsWithoutQueries)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "empty expression") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an empty-expression warning, got %v", result.Warnings)
	}
}

func TestValidate_FiltersNeverBlockActivation(t *testing.T) {
	topics := testTopics("t1", "t2")
	g := groupCovering("g1", "t1", "t2")
	g.SourceQueries[SourcePubMed] = usableQuery("sepsis[tiab]")
	groups := []RetrievalGroup{g}

	result := Validate(topics, groups)

	if !result.ReadyToActivate {
		t.Error("missing filters must not block activation")
	}
	if len(result.ConfigurationStatus.GroupsWithoutFilters) != 1 {
		t.Errorf("expected group listed without filters, got %v",
			result.ConfigurationStatus.GroupsWithoutFilters)
	}
}

func TestValidate_IncompleteCoverageBlocksActivation(t *testing.T) {
	topics := testTopics("t1", "t2")
	g := groupCovering("g1", "t1")
	g.SourceQueries[SourcePubMed] = usableQuery("x")
	groups := []RetrievalGroup{g}

	result := Validate(topics, groups)

	if result.ReadyToActivate {
		t.Error("incomplete coverage must block activation")
	}
}

func TestValidate_StaleTopicReferenceWarns(t *testing.T) {
	topics := testTopics("t1")
	g := groupCovering("g1", "t1", "t-gone")
	g.SourceQueries[SourcePubMed] = usableQuery("x")
	groups := []RetrievalGroup{g}

	result := Validate(topics, groups)

	if !result.ReadyToActivate {
		t.Error("a stale topic reference must not block activation")
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "t-gone") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a stale-topic warning, got %v", result.Warnings)
	}
}

func TestValidate_NearCompleteCoverageWarnsPerUncoveredTopic(t *testing.T) {
	topics := testTopics("t1", "t2", "t3", "t4", "t5")
	g := groupCovering("g1", "t1", "t2", "t3", "t4")
	g.SourceQueries[SourcePubMed] = usableQuery("x")
	groups := []RetrievalGroup{g}

	result := Validate(topics, groups)

	if result.Coverage.CoveragePercentage != 80 {
		t.Fatalf("expected 80%% coverage, got %d%%", result.Coverage.CoveragePercentage)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Topic t5") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning for the last uncovered topic, got %v", result.Warnings)
	}
}

func TestValidate_UsesGroupNameOrIDInReports(t *testing.T) {
	topics := testTopics("t1")
	unnamed := groupCovering("g1", "t1")
	unnamed.Name = ""
	groups := []RetrievalGroup{unnamed}

	result := Validate(topics, groups)

	if len(result.ConfigurationStatus.GroupsWithoutQueries) != 1 ||
		result.ConfigurationStatus.GroupsWithoutQueries[0] != "g1" {
		t.Errorf("expected unnamed group reported by id, got %v",
			result.ConfigurationStatus.GroupsWithoutQueries)
	}
}

func TestValidate_EmptyCollection(t *testing.T) {
	result := Validate(testTopics("t1"), nil)

	if result.ReadyToActivate {
		t.Error("an empty collection over uncovered topics is not ready")
	}
	if result.Warnings == nil || result.ConfigurationStatus.GroupsWithoutQueries == nil {
		t.Error("expected non-nil empty slices in the result")
	}
}
