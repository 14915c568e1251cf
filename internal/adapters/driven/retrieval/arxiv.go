package retrieval

import (
	"context"
	"encoding/xml"
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
var _ driven.QueryTester = (*ArXivTester)(nil)

const defaultArXivBaseURL = "https://export.arxiv.org/api"

// ArXivTester tests query expressions against the arXiv Atom API
type ArXivTester struct {
	baseURL string
	client  *http.Client
}

// NewArXivTester creates an arXiv query tester
func NewArXivTester(baseURL string) *ArXivTester {
	if baseURL == "" {
		baseURL = defaultArXivBaseURL
	}
	return &ArXivTester{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Source returns the source this tester speaks to
func (t *ArXivTester) Source() domain.SourceType {
	return domain.SourceArXiv
}

// atomFeed is the subset of the arXiv Atom response the tester reads
type atomFeed struct {
	XMLName      xml.Name    `xml:"feed"`
	TotalResults int         `xml:"totalResults"`
	Entries      []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
}

// TestQuery runs the expression and returns the count plus sample articles.
// A date range is folded into the query as a submittedDate constraint,
// arXiv has no separate date parameters.
func (t *ArXivTester) TestQuery(ctx context.Context, expression string, dateRange domain.DateRange) (*domain.QueryTestResult, error) {
	query := expression
	if constraint := submittedDateConstraint(dateRange); constraint != "" {
		query = "(" + query + ") AND " + constraint
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(sampleSize))

	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arxiv response: %w", err)
	}

	samples := make([]domain.SampleArticle, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		samples = append(samples, domain.SampleArticle{
			ID:          entry.ID,
			Title:       strings.TrimSpace(entry.Title),
			PublishedAt: entry.Published,
			URL:         entry.ID,
		})
	}

	return &domain.QueryTestResult{
		Source:         domain.SourceArXiv,
		ArticleCount:   feed.TotalResults,
		SampleArticles: samples,
	}, nil
}

// submittedDateConstraint builds arXiv's submittedDate range clause from a
// date range. Dates arrive as YYYY-MM-DD; arXiv wants YYYYMMDDHHMM.
func submittedDateConstraint(dr domain.DateRange) string {
	if dr.From == "" && dr.To == "" {
		return ""
	}
	from := "000001010000"
	to := "999912312359"
	if dr.From != "" {
		from = strings.ReplaceAll(dr.From, "-", "") + "0000"
	}
	if dr.To != "" {
		to = strings.ReplaceAll(dr.To, "-", "") + "2359"
	}
	return "submittedDate:[" + from + " TO " + to + "]"
}
