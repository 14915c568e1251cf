package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.QueryTester = (*PubMedTester)(nil)

const defaultPubMedBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// sampleSize caps how many sample articles a test returns
const sampleSize = 5

// PubMedTester tests query expressions against PubMed via the NCBI
// E-utilities API (esearch for counts, esummary for samples).
type PubMedTester struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPubMedTester creates a PubMed query tester. apiKey is optional;
// NCBI grants higher rate limits when one is supplied.
func NewPubMedTester(baseURL, apiKey string) *PubMedTester {
	if baseURL == "" {
		baseURL = defaultPubMedBaseURL
	}
	return &PubMedTester{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Source returns the source this tester speaks to
func (t *PubMedTester) Source() domain.SourceType {
	return domain.SourcePubMed
}

// esearchResponse is the JSON envelope of an esearch call
type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// TestQuery runs the expression and returns the count plus sample articles
func (t *PubMedTester) TestQuery(ctx context.Context, expression string, dateRange domain.DateRange) (*domain.QueryTestResult, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", expression)
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(sampleSize))
	if t.apiKey != "" {
		params.Set("api_key", t.apiKey)
	}
	if dateRange.From != "" || dateRange.To != "" {
		params.Set("datetype", "pdat")
		if dateRange.From != "" {
			params.Set("mindate", dateRange.From)
		}
		if dateRange.To != "" {
			params.Set("maxdate", dateRange.To)
		}
	}

	var search esearchResponse
	if err := t.getJSON(ctx, t.baseURL+"/esearch.fcgi?"+params.Encode(), &search); err != nil {
		return nil, fmt.Errorf("pubmed search failed: %w", err)
	}

	count, err := strconv.Atoi(search.ESearchResult.Count)
	if err != nil {
		return nil, fmt.Errorf("pubmed returned a non-numeric count %q", search.ESearchResult.Count)
	}

	result := &domain.QueryTestResult{
		Source:         domain.SourcePubMed,
		ArticleCount:   count,
		SampleArticles: []domain.SampleArticle{},
	}

	if len(search.ESearchResult.IDList) > 0 {
		samples, err := t.fetchSummaries(ctx, search.ESearchResult.IDList)
		if err != nil {
			// Counts are the point of a test; sample fetch failures degrade
			// to an empty sample list.
			return result, nil
		}
		result.SampleArticles = samples
	}

	return result, nil
}

// esummaryResponse is the JSON envelope of an esummary call. Result holds
// one raw entry per uid plus a "uids" index array.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryEntry struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	PubDate string `json:"pubdate"`
}

func (t *PubMedTester) fetchSummaries(ctx context.Context, ids []string) ([]domain.SampleArticle, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")
	if t.apiKey != "" {
		params.Set("api_key", t.apiKey)
	}

	var summary esummaryResponse
	if err := t.getJSON(ctx, t.baseURL+"/esummary.fcgi?"+params.Encode(), &summary); err != nil {
		return nil, err
	}

	samples := make([]domain.SampleArticle, 0, len(ids))
	for _, id := range ids {
		raw, ok := summary.Result[id]
		if !ok {
			continue
		}
		var entry esummaryEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		samples = append(samples, domain.SampleArticle{
			ID:          id,
			Title:       entry.Title,
			PublishedAt: entry.PubDate,
			URL:         "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
		})
	}
	return samples, nil
}

func (t *PubMedTester) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
