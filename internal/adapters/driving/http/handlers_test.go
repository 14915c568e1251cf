package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
	"github.com/lira-labs/lira-core/internal/core/ports/driven/mocks"
	"github.com/lira-labs/lira-core/internal/core/services"
)

const testAccessKey = "letmein"

// testEnv wires the server against real services backed by mocks, so tests
// exercise the full request path from routing through to domain logic.
type testEnv struct {
	server      *Server
	store       *mocks.MockSessionStore
	activations *mocks.MockActivationStore
	proposer    *mocks.MockProposalService
	tester      *mocks.MockQueryTestService
	token       string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := mocks.NewMockSessionStore()
	activations := mocks.NewMockActivationStore()
	proposer := mocks.NewMockProposalService()
	tester := mocks.NewMockQueryTestService()
	tester.Results[domain.SourcePubMed] = &domain.QueryTestResult{
		Source:       domain.SourcePubMed,
		ArticleCount: 42,
	}

	adapter := mocks.NewMockAuthAdapter()
	hash, _ := adapter.HashAccessKey(testAccessKey)

	env := &testEnv{
		store:       store,
		activations: activations,
		proposer:    proposer,
		tester:      tester,
	}

	env.server = NewServer(
		Config{Host: "127.0.0.1", Port: 0, Version: "test"},
		services.NewAuthService(adapter, hash),
		services.NewSessionService(store, activations, logger),
		services.NewGroupService(store, proposer, tester, logger),
		services.NewPhaseService(store, logger),
		services.NewAnalysisService(store),
		func() []string {
			sources := tester.SupportedSources()
			names := make([]string, 0, len(sources))
			for _, src := range sources {
				names = append(names, src.String())
			}
			return names
		},
		logger,
	)

	env.token = env.login(t, testAccessKey)
	return env
}

func (e *testEnv) login(t *testing.T, key string) string {
	t.Helper()
	rec := e.do(t, "POST", "/api/v1/auth/login", domain.LoginRequest{AccessKey: key}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	decode(t, rec, &resp)
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// authed issues a request with the env's editor token.
func (e *testEnv) authed(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	return e.do(t, method, path, body, e.token)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func handlerTestSpace() domain.SemanticSpace {
	return domain.SemanticSpace{
		Topics: []domain.Topic{
			{ID: "t1", Name: "Sepsis biomarkers", Importance: domain.ImportanceHigh},
			{ID: "t2", Name: "Lactate clearance", Importance: domain.ImportanceMedium},
		},
	}
}

func (e *testEnv) createSession(t *testing.T) *domain.ConfigSession {
	t.Helper()
	rec := e.authed(t, "POST", "/api/v1/sessions", map[string]interface{}{"space": handlerTestSpace()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var session domain.ConfigSession
	decode(t, rec, &session)
	return &session
}

// addGroup creates a group through the API and returns the updated session.
func (e *testEnv) addGroup(t *testing.T, sessionID, name string) *domain.ConfigSession {
	t.Helper()
	rec := e.authed(t, "POST", "/api/v1/sessions/"+sessionID+"/groups", map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add group failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var session domain.ConfigSession
	decode(t, rec, &session)
	return &session
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid key", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/v1/auth/login", domain.LoginRequest{AccessKey: testAccessKey}, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp domain.LoginResponse
		decode(t, rec, &resp)
		if resp.Token == "" || resp.EditorID == "" {
			t.Errorf("expected token and editor id, got %+v", resp)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		rec := env.do(t, "POST", "/api/v1/auth/login", domain.LoginRequest{AccessKey: "nope"}, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/v1/sessions", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = env.do(t, "GET", "/api/v1/sessions", nil, "garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = env.do(t, "GET", "/version", nil, "")
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["version"] != "test" {
		t.Errorf("expected version test, got %q", resp["version"])
	}
}

func TestListSources(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(t, "GET", "/api/v1/sources", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp SourcesResponse
	decode(t, rec, &resp)
	if len(resp.Sources) != len(domain.KnownSources()) {
		t.Errorf("expected all known sources, got %v", resp.Sources)
	}
	if len(resp.Testable) != 1 || resp.Testable[0] != "pubmed" {
		t.Errorf("expected pubmed testable, got %v", resp.Testable)
	}
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	if session.Phase != domain.PhaseProposeGroups {
		t.Errorf("expected new session in propose_groups, got %s", session.Phase)
	}

	rec := env.authed(t, "GET", "/api/v1/sessions/"+session.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session failed with status %d", rec.Code)
	}

	rec = env.authed(t, "GET", "/api/v1/sessions", nil)
	var list SessionListResponse
	decode(t, rec, &list)
	if len(list.Sessions) != 1 || list.Sessions[0] != session.ID {
		t.Errorf("expected session listed, got %v", list.Sessions)
	}

	rec = env.authed(t, "DELETE", "/api/v1/sessions/"+session.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete session failed with status %d", rec.Code)
	}

	rec = env.authed(t, "GET", "/api/v1/sessions/"+session.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestCreateSession_EmptySpace(t *testing.T) {
	env := newTestEnv(t)

	rec := env.authed(t, "POST", "/api/v1/sessions", map[string]interface{}{
		"space": domain.SemanticSpace{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty topic set, got %d", rec.Code)
	}
}

func TestSessionOwnership(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	// A token for a different editor; the mock adapter's encoding is a
	// parseable string, so any well-formed token authenticates.
	other := fmt.Sprintf("token:other-editor:someone:%d", time.Now().Add(time.Hour).Unix())
	rec := env.do(t, "GET", "/api/v1/sessions/"+session.ID, nil, other)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for another editor's session, got %d", rec.Code)
	}
}

func TestGroupEditing(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)
	base := "/api/v1/sessions/" + session.ID

	updated := env.addGroup(t, session.ID, "Biomarkers")
	if len(updated.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(updated.Groups))
	}
	group := updated.Groups[0]
	if group.Name != "Biomarkers" || !group.Metadata.IsManual() {
		t.Errorf("unexpected group: %+v", group)
	}

	t.Run("toggle topic", func(t *testing.T) {
		rec := env.authed(t, "POST", base+"/groups/"+group.ID+"/topics/t1/toggle", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle failed with status %d: %s", rec.Code, rec.Body.String())
		}
		var s domain.ConfigSession
		decode(t, rec, &s)
		if !s.Groups[0].CoversTopic("t1") {
			t.Error("expected group to cover t1 after toggle")
		}
	})

	t.Run("toggle unknown topic", func(t *testing.T) {
		rec := env.authed(t, "POST", base+"/groups/"+group.ID+"/topics/bogus/toggle", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unknown topic, got %d", rec.Code)
		}
	})

	t.Run("set query", func(t *testing.T) {
		rec := env.authed(t, "PUT", base+"/groups/"+group.ID+"/queries/pubmed", map[string]interface{}{
			"query_expression": "sepsis[tiab]",
			"enabled":          true,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("set query failed with status %d: %s", rec.Code, rec.Body.String())
		}
		var s domain.ConfigSession
		decode(t, rec, &s)
		q := s.Groups[0].SourceQueries[domain.SourcePubMed]
		if q.Expression != "sepsis[tiab]" || !q.Enabled {
			t.Errorf("unexpected query: %+v", q)
		}
		if !s.Groups[0].Metadata.HumanEdited {
			t.Error("expected user edit to mark the group human_edited")
		}
	})

	t.Run("set query for unknown source", func(t *testing.T) {
		rec := env.authed(t, "PUT", base+"/groups/"+group.ID+"/queries/scopus", map[string]interface{}{
			"query_expression": "x",
			"enabled":          true,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unknown source, got %d", rec.Code)
		}
	})

	t.Run("set and disable filter", func(t *testing.T) {
		rec := env.authed(t, "PUT", base+"/groups/"+group.ID+"/filter", map[string]interface{}{
			"enabled":   true,
			"criteria":  "must discuss adult ICU patients",
			"threshold": 1.4,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("set filter failed with status %d", rec.Code)
		}
		var s domain.ConfigSession
		decode(t, rec, &s)
		if s.Groups[0].SemanticFilter.Threshold != 1.0 {
			t.Errorf("expected threshold clamped to 1.0, got %f", s.Groups[0].SemanticFilter.Threshold)
		}

		rec = env.authed(t, "DELETE", base+"/groups/"+group.ID+"/filter", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("disable filter failed with status %d", rec.Code)
		}
		decode(t, rec, &s)
		if s.Groups[0].SemanticFilter != domain.DisabledFilter() {
			t.Errorf("expected inert filter, got %+v", s.Groups[0].SemanticFilter)
		}
	})

	t.Run("update and remove", func(t *testing.T) {
		rec := env.authed(t, "PATCH", base+"/groups/"+group.ID, map[string]string{"name": "Renamed"})
		if rec.Code != http.StatusOK {
			t.Fatalf("update failed with status %d", rec.Code)
		}
		var s domain.ConfigSession
		decode(t, rec, &s)
		if s.Groups[0].Name != "Renamed" {
			t.Errorf("expected rename, got %q", s.Groups[0].Name)
		}

		rec = env.authed(t, "DELETE", base+"/groups/"+group.ID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("remove failed with status %d", rec.Code)
		}
		decode(t, rec, &s)
		if len(s.Groups) != 0 {
			t.Errorf("expected no groups, got %d", len(s.Groups))
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		rec := env.authed(t, "DELETE", base+"/groups/missing", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown group, got %d", rec.Code)
		}
	})
}

func TestPropose(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	confidence := 0.9
	env.proposer.Proposals = []driven.GroupProposal{
		{Name: "Sepsis markers", Rationale: "high importance", CoveredTopics: []string{"t1"}, Reasoning: "importance first", Confidence: &confidence},
		{Name: "Lactate", CoveredTopics: []string{"t2"}},
	}

	rec := env.authed(t, "POST", "/api/v1/sessions/"+session.ID+"/propose", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("propose failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var s domain.ConfigSession
	decode(t, rec, &s)
	if len(s.Groups) != 2 {
		t.Fatalf("expected 2 proposed groups, got %d", len(s.Groups))
	}
	if s.Groups[0].Metadata.GeneratedBy != "mock-model" {
		t.Errorf("expected model provenance, got %q", s.Groups[0].Metadata.GeneratedBy)
	}
	if s.Groups[0].Metadata.HumanEdited {
		t.Error("proposed group must not start human_edited")
	}
}

func TestGenerateQuery(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)
	session = env.addGroup(t, session.ID, "Biomarkers")
	groupID := session.Groups[0].ID

	env.proposer.Query = "sepsis[tiab] AND biomarker[tiab]"

	rec := env.authed(t, "POST", "/api/v1/sessions/"+session.ID+"/groups/"+groupID+"/queries/pubmed/generate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var s domain.ConfigSession
	decode(t, rec, &s)
	q := s.Groups[0].SourceQueries[domain.SourcePubMed]
	if q.Expression != env.proposer.Query || !q.Enabled {
		t.Errorf("expected generated query applied, got %+v", q)
	}
}

func TestGenerateFilter(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)
	session = env.addGroup(t, session.ID, "Biomarkers")
	groupID := session.Groups[0].ID

	env.proposer.Filter = domain.SemanticFilter{Enabled: true, Criteria: "adult ICU patients", Threshold: 0.8}

	rec := env.authed(t, "POST", "/api/v1/sessions/"+session.ID+"/groups/"+groupID+"/filter/generate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate filter failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var s domain.ConfigSession
	decode(t, rec, &s)
	if s.Groups[0].SemanticFilter != env.proposer.Filter {
		t.Errorf("expected generated filter applied, got %+v", s.Groups[0].SemanticFilter)
	}
}

func TestTestQuery(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	rec := env.authed(t, "POST", "/api/v1/sessions/"+session.ID+"/test-query/pubmed", map[string]string{
		"query_expression": "sepsis[tiab]",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("test query failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.QueryTestResult
	decode(t, rec, &result)
	if result.ArticleCount != 42 {
		t.Errorf("expected count 42, got %d", result.ArticleCount)
	}

	rec = env.authed(t, "POST", "/api/v1/sessions/"+session.ID+"/test-query/crossref", map[string]string{
		"query_expression": "x",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for untestable source, got %d", rec.Code)
	}
}

func TestCoverageAndValidation(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)
	session = env.addGroup(t, session.ID, "Biomarkers")
	groupID := session.Groups[0].ID
	base := "/api/v1/sessions/" + session.ID

	env.authed(t, "POST", base+"/groups/"+groupID+"/topics/t1/toggle", nil)

	rec := env.authed(t, "GET", base+"/coverage", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("coverage failed with status %d", rec.Code)
	}
	var coverage domain.CoverageResult
	decode(t, rec, &coverage)
	if coverage.CoveragePercentage != 50 {
		t.Errorf("expected 50%% coverage, got %d", coverage.CoveragePercentage)
	}

	rec = env.authed(t, "GET", base+"/validation", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("validation failed with status %d", rec.Code)
	}
	var validation domain.ValidationResult
	decode(t, rec, &validation)
	if validation.ReadyToActivate {
		t.Error("expected not ready with incomplete coverage")
	}
}

func TestPhaseNavigation(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)
	base := "/api/v1/sessions/" + session.ID

	rec := env.authed(t, "POST", base+"/phases/advance", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 advancing with no coverage, got %d", rec.Code)
	}

	session = env.addGroup(t, session.ID, "All topics")
	groupID := session.Groups[0].ID
	env.authed(t, "POST", base+"/groups/"+groupID+"/topics/t1/toggle", nil)
	env.authed(t, "POST", base+"/groups/"+groupID+"/topics/t2/toggle", nil)

	rec = env.authed(t, "POST", base+"/phases/advance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var s domain.ConfigSession
	decode(t, rec, &s)
	if s.Phase != domain.PhaseConfigureQueries {
		t.Errorf("expected configure_queries, got %s", s.Phase)
	}

	rec = env.authed(t, "POST", base+"/phases/back", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("back failed with status %d", rec.Code)
	}
	decode(t, rec, &s)
	if s.Phase != domain.PhaseProposeGroups {
		t.Errorf("expected propose_groups, got %s", s.Phase)
	}

	rec = env.authed(t, "GET", base+"/phases", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("phases failed with status %d", rec.Code)
	}
	var states []domain.PhaseState
	decode(t, rec, &states)
	if len(states) != 4 || !states[0].Current {
		t.Errorf("unexpected phase states: %+v", states)
	}
}

func TestFinalize(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)
	base := "/api/v1/sessions/" + session.ID

	rec := env.authed(t, "POST", base+"/finalize", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 finalizing an empty configuration, got %d", rec.Code)
	}

	// Build a complete configuration: one group covering both topics with a
	// usable query.
	session = env.addGroup(t, session.ID, "Everything")
	groupID := session.Groups[0].ID
	env.authed(t, "POST", base+"/groups/"+groupID+"/topics/t1/toggle", nil)
	env.authed(t, "POST", base+"/groups/"+groupID+"/topics/t2/toggle", nil)
	env.authed(t, "PUT", base+"/groups/"+groupID+"/queries/pubmed", map[string]interface{}{
		"query_expression": "sepsis[tiab]",
		"enabled":          true,
	})

	rec = env.authed(t, "POST", base+"/finalize", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finalize failed with status %d: %s", rec.Code, rec.Body.String())
	}
	var activation domain.Activation
	decode(t, rec, &activation)
	if activation.SessionID != session.ID || len(activation.Groups) != 1 {
		t.Errorf("unexpected activation: %+v", activation)
	}
	if env.activations.Count() != 1 {
		t.Errorf("expected 1 stored activation, got %d", env.activations.Count())
	}

	// The session is now read-only.
	rec = env.authed(t, "POST", base+"/groups", map[string]string{"name": "late"})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 mutating a finalized session, got %d", rec.Code)
	}
}

func TestStoreFailureIsInternalError(t *testing.T) {
	env := newTestEnv(t)
	session := env.createSession(t)

	env.store.SaveErr = errors.New("write timeout")

	rec := env.authed(t, "POST", "/api/v1/sessions/"+session.ID+"/groups", map[string]string{"name": "Sepsis"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on a store failure, got %d: %s", rec.Code, rec.Body.String())
	}
}
