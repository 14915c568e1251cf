package driven

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
)

// QueryTester executes a query expression against one live literature source
// and reports the match count with a sample of results. Testing is advisory:
// failures and zero counts inform the editor but never gate anything.
type QueryTester interface {
	// Source returns the source this tester speaks to
	Source() domain.SourceType

	// TestQuery runs the expression and returns the count plus sample articles
	TestQuery(ctx context.Context, expression string, dateRange domain.DateRange) (*domain.QueryTestResult, error)
}

// QueryTestService routes test requests to the tester registered for a
// source. ErrSourceUnsupported is returned for sources without a tester.
type QueryTestService interface {
	// TestQuery tests an expression against the named source
	TestQuery(ctx context.Context, source domain.SourceType, expression string, dateRange domain.DateRange) (*domain.QueryTestResult, error)

	// SupportedSources lists sources that have a registered tester
	SupportedSources() []domain.SourceType
}
