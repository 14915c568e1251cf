package domain

// SourceType identifies a literature source a retrieval group can query.
// The set of sources is fixed at build time; source_queries maps are keyed
// by this enumeration rather than free-form strings.
type SourceType string

const (
	SourcePubMed          SourceType = "pubmed"
	SourceArXiv           SourceType = "arxiv"
	SourceCrossref        SourceType = "crossref"
	SourceOpenAlex        SourceType = "openalex"
	SourceSemanticScholar SourceType = "semantic_scholar"
	SourceEuropePMC       SourceType = "europe_pmc"
)

// String returns the string representation of the source type
func (s SourceType) String() string {
	return string(s)
}

// IsValid returns true if the source type is a known literature source
func (s SourceType) IsValid() bool {
	switch s {
	case SourcePubMed, SourceArXiv, SourceCrossref,
		SourceOpenAlex, SourceSemanticScholar, SourceEuropePMC:
		return true
	default:
		return false
	}
}

// KnownSources returns all literature sources a group may configure
func KnownSources() []SourceType {
	return []SourceType{
		SourcePubMed,
		SourceArXiv,
		SourceCrossref,
		SourceOpenAlex,
		SourceSemanticScholar,
		SourceEuropePMC,
	}
}

// DateRange bounds a test query to a publication window
type DateRange struct {
	From string `json:"from,omitempty"` // YYYY-MM-DD
	To   string `json:"to,omitempty"`   // YYYY-MM-DD
}

// SampleArticle is a single result returned by a query test
type SampleArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at,omitempty"`
	URL         string `json:"url,omitempty"`
}

// QueryTestResult is the read-only feedback from sampling a query against
// a live source before committing it to a group
type QueryTestResult struct {
	Source         SourceType      `json:"source"`
	ArticleCount   int             `json:"article_count"`
	SampleArticles []SampleArticle `json:"sample_articles"`
}
