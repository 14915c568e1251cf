package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
)

// Ensure OpenAIProposer implements ProposalService
var _ driven.ProposalService = (*OpenAIProposer)(nil)

// OpenAIProposer implements ProposalService against an OpenAI-compatible
// chat completions API. Each generation call is one chat completion with
// a JSON response contract; malformed model output is an error, never a
// silently applied result.
type OpenAIProposer struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIProposer creates a new OpenAI-compatible proposal service
func NewOpenAIProposer(apiKey, model, baseURL string) (driven.ProposalService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIProposer{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// chatRequest is the request body for the chat completions API
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

// chatResponse is the response from the chat completions API
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// proposalPayload is the JSON contract for group proposals
type proposalPayload struct {
	Groups []struct {
		Name          string   `json:"name"`
		Rationale     string   `json:"rationale"`
		CoveredTopics []string `json:"covered_topics"`
		Reasoning     string   `json:"reasoning"`
		Confidence    *float64 `json:"confidence"`
	} `json:"groups"`
}

// queryPayload is the JSON contract for query generation
type queryPayload struct {
	Expression string `json:"query_expression"`
}

// filterPayload is the JSON contract for filter generation
type filterPayload struct {
	Criteria  string  `json:"criteria"`
	Threshold float64 `json:"threshold"`
}

const proposeSystemPrompt = `You are configuring literature retrieval for a research monitoring system.
Given a set of topics, propose retrieval groups: coherent bundles of topics that can share search queries.
Every topic should be covered by at least one group. Respond with JSON:
{"groups":[{"name":"...","rationale":"...","covered_topics":["topic-id"],"reasoning":"...","confidence":0.0}]}`

const querySystemPrompt = `You write search queries for scholarly literature databases.
Given a retrieval group and a target source, write one query expression in that source's native syntax.
Respond with JSON: {"query_expression":"..."}`

const filterSystemPrompt = `You write relevance criteria for filtering retrieved scholarly articles.
Given a retrieval group, describe in one or two sentences what makes an article relevant to it,
and pick a similarity threshold between 0 and 1. Respond with JSON: {"criteria":"...","threshold":0.7}`

// ProposeGroups suggests a group decomposition covering the space's topics
func (p *OpenAIProposer) ProposeGroups(ctx context.Context, space domain.SemanticSpace, existing []domain.RetrievalGroup) ([]driven.GroupProposal, error) {
	user, err := json.Marshal(map[string]interface{}{
		"topics":          space.Topics,
		"entities":        space.Entities,
		"existing_groups": existingSummary(existing),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal space: %w", err)
	}

	content, err := p.complete(ctx, proposeSystemPrompt, string(user))
	if err != nil {
		return nil, err
	}

	var payload proposalPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse proposal response: %w", err)
	}

	proposals := make([]driven.GroupProposal, 0, len(payload.Groups))
	for _, g := range payload.Groups {
		if g.Name == "" && len(g.CoveredTopics) == 0 {
			continue
		}
		proposals = append(proposals, driven.GroupProposal{
			Name:          g.Name,
			Rationale:     g.Rationale,
			CoveredTopics: g.CoveredTopics,
			Reasoning:     g.Reasoning,
			Confidence:    g.Confidence,
		})
	}
	return proposals, nil
}

// GenerateQuery produces a source-specific query expression for the group
func (p *OpenAIProposer) GenerateQuery(ctx context.Context, group domain.RetrievalGroup, source domain.SourceType, space domain.SemanticSpace) (string, error) {
	user, err := json.Marshal(map[string]interface{}{
		"source": source,
		"group": map[string]interface{}{
			"name":           group.Name,
			"rationale":      group.Rationale,
			"covered_topics": topicDetails(space, group.CoveredTopics),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal group: %w", err)
	}

	content, err := p.complete(ctx, querySystemPrompt, string(user))
	if err != nil {
		return "", err
	}

	var payload queryPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return "", fmt.Errorf("failed to parse query response: %w", err)
	}
	if strings.TrimSpace(payload.Expression) == "" {
		return "", fmt.Errorf("model returned an empty query expression")
	}
	return payload.Expression, nil
}

// GenerateFilter produces semantic filter criteria for the group
func (p *OpenAIProposer) GenerateFilter(ctx context.Context, group domain.RetrievalGroup, space domain.SemanticSpace) (domain.SemanticFilter, error) {
	user, err := json.Marshal(map[string]interface{}{
		"group": map[string]interface{}{
			"name":           group.Name,
			"rationale":      group.Rationale,
			"covered_topics": topicDetails(space, group.CoveredTopics),
		},
	})
	if err != nil {
		return domain.SemanticFilter{}, fmt.Errorf("failed to marshal group: %w", err)
	}

	content, err := p.complete(ctx, filterSystemPrompt, string(user))
	if err != nil {
		return domain.SemanticFilter{}, err
	}

	var payload filterPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return domain.SemanticFilter{}, fmt.Errorf("failed to parse filter response: %w", err)
	}
	if strings.TrimSpace(payload.Criteria) == "" {
		return domain.SemanticFilter{}, fmt.Errorf("model returned empty filter criteria")
	}
	return domain.SemanticFilter{
		Enabled:   true,
		Criteria:  payload.Criteria,
		Threshold: payload.Threshold,
	}, nil
}

// Model returns the model identifier stamped into group provenance
func (p *OpenAIProposer) Model() string {
	return p.model
}

// Ping verifies the proposal service is reachable
func (p *OpenAIProposer) Ping(ctx context.Context) error {
	_, err := p.complete(ctx, "Respond with JSON: {\"ok\":true}", "ping")
	return err
}

// complete makes one chat completion call and returns the message content
func (p *OpenAIProposer) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s (type: %s, code: %s)",
			chatResp.Error.Message, chatResp.Error.Type, chatResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("API returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// existingSummary reduces existing groups to what the model needs to
// avoid duplicating them
func existingSummary(groups []domain.RetrievalGroup) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		out = append(out, map[string]interface{}{
			"name":           g.Name,
			"covered_topics": g.CoveredTopics,
		})
	}
	return out
}

// topicDetails resolves covered-topic ids to full topic records.
// Stale ids with no topic in the space are passed through by id.
func topicDetails(space domain.SemanticSpace, ids []string) []interface{} {
	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, t := range space.Topics {
			if t.ID == id {
				out = append(out, t)
				found = true
				break
			}
		}
		if !found {
			out = append(out, map[string]string{"topic_id": id})
		}
	}
	return out
}
