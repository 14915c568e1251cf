// Package retrieval holds adapters that speak to live literature sources
// for query testing. Each tester covers one source; the registry routes
// test requests and reports which sources are testable at all.
package retrieval

import (
	"context"

	"github.com/lira-labs/lira-core/internal/core/domain"
	"github.com/lira-labs/lira-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.QueryTestService = (*Registry)(nil)

// Registry implements driven.QueryTestService over a fixed set of testers
type Registry struct {
	testers map[domain.SourceType]driven.QueryTester
}

// NewRegistry creates a registry from the given testers
func NewRegistry(testers ...driven.QueryTester) *Registry {
	m := make(map[domain.SourceType]driven.QueryTester, len(testers))
	for _, t := range testers {
		m[t.Source()] = t
	}
	return &Registry{testers: m}
}

// TestQuery routes the test to the tester registered for the source
func (r *Registry) TestQuery(ctx context.Context, source domain.SourceType, expression string, dateRange domain.DateRange) (*domain.QueryTestResult, error) {
	tester, ok := r.testers[source]
	if !ok {
		return nil, domain.ErrSourceUnsupported
	}
	return tester.TestQuery(ctx, expression, dateRange)
}

// SupportedSources lists sources with a registered tester, in the fixed
// source order
func (r *Registry) SupportedSources() []domain.SourceType {
	out := make([]domain.SourceType, 0, len(r.testers))
	for _, src := range domain.KnownSources() {
		if _, ok := r.testers[src]; ok {
			out = append(out, src)
		}
	}
	return out
}
