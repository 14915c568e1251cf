package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}, "finish_reason": "stop"},
			},
		})
	}))
}

func testSpace() domain.SemanticSpace {
	return domain.SemanticSpace{
		Topics: []domain.Topic{
			{ID: "t1", Name: "Sepsis biomarkers", Importance: domain.ImportanceHigh},
			{ID: "t2", Name: "Antibiotic resistance", Importance: domain.ImportanceMedium},
		},
	}
}

func TestProposeGroups(t *testing.T) {
	content := `{"groups":[
		{"name":"Sepsis","rationale":"biomarker work","covered_topics":["t1"],"reasoning":"clinical cluster","confidence":0.8},
		{"name":"AMR","covered_topics":["t2"]}
	]}`
	server := chatServer(t, content, http.StatusOK)
	defer server.Close()

	proposer, err := NewOpenAIProposer("test-key", "test-model", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	proposals, err := proposer.ProposeGroups(context.Background(), testSpace(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proposals) != 2 {
		t.Fatalf("expected 2 proposals, got %d", len(proposals))
	}
	if proposals[0].Name != "Sepsis" || proposals[0].Confidence == nil || *proposals[0].Confidence != 0.8 {
		t.Errorf("unexpected first proposal: %+v", proposals[0])
	}
}

func TestGenerateQuery(t *testing.T) {
	server := chatServer(t, `{"query_expression":"sepsis[tiab] AND biomarker[tiab]"}`, http.StatusOK)
	defer server.Close()

	proposer, _ := NewOpenAIProposer("test-key", "test-model", server.URL)
	group := domain.RetrievalGroup{ID: "g1", Name: "Sepsis", CoveredTopics: []string{"t1"}}

	expr, err := proposer.GenerateQuery(context.Background(), group, domain.SourcePubMed, testSpace())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr != "sepsis[tiab] AND biomarker[tiab]" {
		t.Errorf("unexpected expression %q", expr)
	}
}

func TestGenerateQuery_EmptyExpressionRejected(t *testing.T) {
	server := chatServer(t, `{"query_expression":"   "}`, http.StatusOK)
	defer server.Close()

	proposer, _ := NewOpenAIProposer("test-key", "test-model", server.URL)
	group := domain.RetrievalGroup{ID: "g1", Name: "Sepsis"}

	if _, err := proposer.GenerateQuery(context.Background(), group, domain.SourcePubMed, testSpace()); err == nil {
		t.Error("expected a blank expression to be rejected")
	}
}

func TestGenerateFilter(t *testing.T) {
	server := chatServer(t, `{"criteria":"clinical sepsis studies in humans","threshold":0.75}`, http.StatusOK)
	defer server.Close()

	proposer, _ := NewOpenAIProposer("test-key", "test-model", server.URL)
	group := domain.RetrievalGroup{ID: "g1", Name: "Sepsis"}

	filter, err := proposer.GenerateFilter(context.Background(), group, testSpace())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filter.Enabled || filter.Threshold != 0.75 {
		t.Errorf("unexpected filter: %+v", filter)
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit","code":"429"}}`))
	}))
	defer server.Close()

	proposer, _ := NewOpenAIProposer("test-key", "test-model", server.URL)

	_, err := proposer.ProposeGroups(context.Background(), testSpace(), nil)
	if err == nil {
		t.Fatal("expected API error to surface")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected the API message in the error, got %v", err)
	}
}

func TestMalformedContentRejected(t *testing.T) {
	server := chatServer(t, `groups: not json`, http.StatusOK)
	defer server.Close()

	proposer, _ := NewOpenAIProposer("test-key", "test-model", server.URL)

	if _, err := proposer.ProposeGroups(context.Background(), testSpace(), nil); err == nil {
		t.Error("expected malformed model output to be rejected")
	}
}

func TestNewOpenAIProposer_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProposer("", "m", ""); err == nil {
		t.Error("expected missing API key to be rejected")
	}
}
