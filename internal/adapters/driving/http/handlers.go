package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// SourcesResponse lists literature sources and which support query testing
// @Description Known literature sources
type SourcesResponse struct {
	Sources  []string `json:"sources"`
	Testable []string `json:"testable"`
}

// SessionListResponse lists the caller's session IDs
// @Description Session ID list
type SessionListResponse struct {
	Sessions []string `json:"sessions"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      Editor login
// @Description  Exchange the shared access key for an editor token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Access key"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid access key"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "access key is required")
		case errors.Is(err, domain.ErrInvalidAccessKey):
			writeError(w, http.StatusUnauthorized, "invalid access key")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Source metadata

// handleListSources godoc
// @Summary      List literature sources
// @Description  Lists all known sources and which of them support live query testing
// @Tags         Sources
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SourcesResponse
// @Router       /sources [get]
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources := make([]string, 0)
	for _, src := range domain.KnownSources() {
		sources = append(sources, src.String())
	}
	resp := SourcesResponse{Sources: sources, Testable: []string{}}
	if s.supportedSources != nil {
		resp.Testable = s.supportedSources()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Session endpoints

// handleCreateSession godoc
// @Summary      Create configuration session
// @Description  Starts a configuration session over a semantic space
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreateSessionRequest  true  "Semantic space"
// @Success      201      {object}  domain.ConfigSession
// @Failure      400      {object}  ErrorResponse  "Invalid semantic space"
// @Router       /sessions [post]
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.sessionService.Create(r.Context(), s.editorID(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// handleListSessions godoc
// @Summary      List sessions
// @Description  Lists the caller's session IDs
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SessionListResponse
// @Router       /sessions [get]
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessionService.List(r.Context(), s.editorID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, SessionListResponse{Sessions: ids})
}

// handleGetSession godoc
// @Summary      Get session
// @Description  Retrieves a configuration session with its full group state
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {object}  domain.ConfigSession
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Router       /sessions/{id} [get]
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionService.Get(r.Context(), s.editorID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleDeleteSession godoc
// @Summary      Delete session
// @Description  Discards a session without activating anything
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Router       /sessions/{id} [delete]
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessionService.Delete(r.Context(), s.editorID(r), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleFinalizeSession godoc
// @Summary      Finalize session
// @Description  Validates the configuration and hands it off for activation
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {object}  domain.Activation
// @Failure      409  {object}  ErrorResponse  "Configuration not ready to activate"
// @Router       /sessions/{id}/finalize [post]
func (s *Server) handleFinalizeSession(w http.ResponseWriter, r *http.Request) {
	activation, err := s.sessionService.Finalize(r.Context(), s.editorID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activation)
}

// Group endpoints

// handleAddGroup godoc
// @Summary      Add group
// @Description  Adds a blank user-created retrieval group
// @Tags         Groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Session ID"
// @Param        request  body      driving.CreateGroupRequest  true  "Group fields"
// @Success      201      {object}  domain.ConfigSession
// @Router       /sessions/{id}/groups [post]
func (s *Server) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.groupService.Add(r.Context(), s.editorID(r), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// handleUpdateGroup godoc
// @Summary      Update group
// @Description  Patches a group's name, rationale, or covered topics
// @Tags         Groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Session ID"
// @Param        groupID  path      string                      true  "Group ID"
// @Param        request  body      driving.UpdateGroupRequest  true  "Fields to patch"
// @Success      200      {object}  domain.ConfigSession
// @Failure      404      {object}  ErrorResponse  "Group not found"
// @Router       /sessions/{id}/groups/{groupID} [patch]
func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.groupService.Update(r.Context(), s.editorID(r), r.PathValue("id"), r.PathValue("groupID"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleRemoveGroup godoc
// @Summary      Remove group
// @Description  Deletes a group; coverage may degrade to incomplete
// @Tags         Groups
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID"
// @Param        groupID  path      string  true  "Group ID"
// @Success      200      {object}  domain.ConfigSession
// @Failure      404      {object}  ErrorResponse  "Group not found"
// @Router       /sessions/{id}/groups/{groupID} [delete]
func (s *Server) handleRemoveGroup(w http.ResponseWriter, r *http.Request) {
	session, err := s.groupService.Remove(r.Context(), s.editorID(r), r.PathValue("id"), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleToggleTopic godoc
// @Summary      Toggle topic membership
// @Description  Adds the topic to the group's covered set if absent, removes it if present
// @Tags         Groups
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID"
// @Param        groupID  path      string  true  "Group ID"
// @Param        topicID  path      string  true  "Topic ID"
// @Success      200      {object}  domain.ConfigSession
// @Failure      400      {object}  ErrorResponse  "Topic not in the semantic space"
// @Router       /sessions/{id}/groups/{groupID}/topics/{topicID}/toggle [post]
func (s *Server) handleToggleTopic(w http.ResponseWriter, r *http.Request) {
	session, err := s.groupService.ToggleTopic(r.Context(), s.editorID(r),
		r.PathValue("id"), r.PathValue("groupID"), r.PathValue("topicID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Query and filter endpoints

// handleSetQuery godoc
// @Summary      Set source query
// @Description  Replaces the group's query for one source as a user edit
// @Tags         Queries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Session ID"
// @Param        groupID  path      string                   true  "Group ID"
// @Param        source   path      string                   true  "Source"
// @Param        request  body      driving.SetQueryRequest  true  "Query"
// @Success      200      {object}  domain.ConfigSession
// @Failure      400      {object}  ErrorResponse  "Unknown source"
// @Router       /sessions/{id}/groups/{groupID}/queries/{source} [put]
func (s *Server) handleSetQuery(w http.ResponseWriter, r *http.Request) {
	var req driving.SetQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.groupService.SetQuery(r.Context(), s.editorID(r),
		r.PathValue("id"), r.PathValue("groupID"), domain.SourceType(r.PathValue("source")), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleSetFilter godoc
// @Summary      Set semantic filter
// @Description  Replaces the group's filter; the threshold is clamped into [0,1]
// @Tags         Filters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Session ID"
// @Param        groupID  path      string                    true  "Group ID"
// @Param        request  body      driving.SetFilterRequest  true  "Filter"
// @Success      200      {object}  domain.ConfigSession
// @Router       /sessions/{id}/groups/{groupID}/filter [put]
func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req driving.SetFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.groupService.SetFilter(r.Context(), s.editorID(r),
		r.PathValue("id"), r.PathValue("groupID"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleDisableFilter godoc
// @Summary      Disable semantic filter
// @Description  Resets the group's filter to the inert value
// @Tags         Filters
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID"
// @Param        groupID  path      string  true  "Group ID"
// @Success      200      {object}  domain.ConfigSession
// @Router       /sessions/{id}/groups/{groupID}/filter [delete]
func (s *Server) handleDisableFilter(w http.ResponseWriter, r *http.Request) {
	session, err := s.groupService.DisableFilter(r.Context(), s.editorID(r),
		r.PathValue("id"), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Generation endpoints

// handlePropose godoc
// @Summary      Propose groups
// @Description  Asks the proposal service for groups covering the space and appends them
// @Tags         Generation
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {object}  domain.ConfigSession
// @Failure      409  {object}  ErrorResponse  "Proposal already in flight"
// @Failure      503  {object}  ErrorResponse  "Proposal service unavailable"
// @Router       /sessions/{id}/propose [post]
func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	session, err := s.groupService.Propose(r.Context(), s.editorID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleGenerateQuery godoc
// @Summary      Generate source query
// @Description  Generates and applies a query for one group and source
// @Tags         Generation
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID"
// @Param        groupID  path      string  true  "Group ID"
// @Param        source   path      string  true  "Source"
// @Success      200      {object}  domain.ConfigSession
// @Failure      409      {object}  ErrorResponse  "Generation already in flight"
// @Router       /sessions/{id}/groups/{groupID}/queries/{source}/generate [post]
func (s *Server) handleGenerateQuery(w http.ResponseWriter, r *http.Request) {
	session, err := s.groupService.GenerateQuery(r.Context(), s.editorID(r),
		r.PathValue("id"), r.PathValue("groupID"), domain.SourceType(r.PathValue("source")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleGenerateFilter godoc
// @Summary      Generate semantic filter
// @Description  Generates and applies filter criteria for one group
// @Tags         Generation
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Session ID"
// @Param        groupID  path      string  true  "Group ID"
// @Success      200      {object}  domain.ConfigSession
// @Failure      409      {object}  ErrorResponse  "Generation already in flight"
// @Router       /sessions/{id}/groups/{groupID}/filter/generate [post]
func (s *Server) handleGenerateFilter(w http.ResponseWriter, r *http.Request) {
	session, err := s.groupService.GenerateFilter(r.Context(), s.editorID(r),
		r.PathValue("id"), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Query testing

// handleTestQuery godoc
// @Summary      Test query
// @Description  Runs an expression against a live source and returns count plus samples
// @Tags         Queries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Session ID"
// @Param        source   path      string                    true  "Source"
// @Param        request  body      driving.TestQueryRequest  true  "Expression"
// @Success      200      {object}  domain.QueryTestResult
// @Failure      400      {object}  ErrorResponse  "Source does not support testing"
// @Router       /sessions/{id}/test-query/{source} [post]
func (s *Server) handleTestQuery(w http.ResponseWriter, r *http.Request) {
	var req driving.TestQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.groupService.TestQuery(r.Context(), s.editorID(r),
		r.PathValue("id"), domain.SourceType(r.PathValue("source")), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Analysis endpoints

// handleCoverage godoc
// @Summary      Coverage analysis
// @Description  Analyzes topic coverage for the session's groups
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {object}  domain.CoverageResult
// @Router       /sessions/{id}/coverage [get]
func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	result, err := s.analysisService.Coverage(r.Context(), s.editorID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleValidation godoc
// @Summary      Validation
// @Description  Runs the full readiness check for the session
// @Tags         Analysis
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {object}  domain.ValidationResult
// @Router       /sessions/{id}/validation [get]
func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	result, err := s.analysisService.Validate(r.Context(), s.editorID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Phase endpoints

// handlePhaseStates godoc
// @Summary      Phase states
// @Description  Evaluates every workflow phase against the session's current state
// @Tags         Phases
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {array}  domain.PhaseState
// @Router       /sessions/{id}/phases [get]
func (s *Server) handlePhaseStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.phaseService.States(r.Context(), s.editorID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

// handleAdvancePhase godoc
// @Summary      Advance phase
// @Description  Moves the session to the next phase if the current phase allows it
// @Tags         Phases
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {object}  domain.ConfigSession
// @Failure      409  {object}  ErrorResponse  "Phase predicate not satisfied"
// @Router       /sessions/{id}/phases/advance [post]
func (s *Server) handleAdvancePhase(w http.ResponseWriter, r *http.Request) {
	session, err := s.phaseService.Advance(r.Context(), s.editorID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleBackPhase godoc
// @Summary      Go back a phase
// @Description  Moves the session to the previous phase; always allowed
// @Tags         Phases
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Session ID"
// @Success      200  {object}  domain.ConfigSession
// @Router       /sessions/{id}/phases/back [post]
func (s *Server) handleBackPhase(w http.ResponseWriter, r *http.Request) {
	session, err := s.phaseService.Back(r.Context(), s.editorID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Helpers

func (s *Server) editorID(r *http.Request) string {
	if authCtx := GetAuthContext(r.Context()); authCtx != nil {
		return authCtx.EditorID
	}
	return ""
}

// writeServiceError maps domain errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnknownSource),
		errors.Is(err, domain.ErrUnknownTopic),
		errors.Is(err, domain.ErrSourceUnsupported):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrSessionFinalized),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrPhaseIncomplete),
		errors.Is(err, domain.ErrOperationInFlight),
		errors.Is(err, domain.ErrStaleResponse):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
