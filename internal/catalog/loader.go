// Package catalog provides the page loaders behind the selectors: a REST
// client for the POS backend and an in-memory source for demo mode and tests.
package catalog

import (
	"context"

	"posctl/internal/domain"
)

// Loader fetches one page of a collection
type Loader interface {
	Load(ctx context.Context, q domain.Query) (domain.ResultPage, error)
}

// LoaderFunc adapts a plain function to Loader
type LoaderFunc func(ctx context.Context, q domain.Query) (domain.ResultPage, error)

// Load calls f(ctx, q)
func (f LoaderFunc) Load(ctx context.Context, q domain.Query) (domain.ResultPage, error) {
	return f(ctx, q)
}

// WithFilters returns a Loader that merges fixed filters into every query.
// Filters already present on the query win.
func WithFilters(l Loader, fixed map[string]string) Loader {
	if len(fixed) == 0 {
		return l
	}
	return LoaderFunc(func(ctx context.Context, q domain.Query) (domain.ResultPage, error) {
		merged := make(map[string]string, len(fixed)+len(q.Filters))
		for k, v := range fixed {
			merged[k] = v
		}
		for k, v := range q.Filters {
			merged[k] = v
		}
		q.Filters = merged
		return l.Load(ctx, q)
	})
}
