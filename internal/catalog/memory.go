package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"posctl/internal/domain"
)

// MemorySource is an in-memory, ordered collection served page by page
type MemorySource struct {
	mu      sync.RWMutex
	options []domain.Option
	latency time.Duration
	calls   []domain.Query
}

// NewMemorySource creates a source over a copy of options, order preserved
func NewMemorySource(options []domain.Option) *MemorySource {
	return &MemorySource{
		options: append([]domain.Option(nil), options...),
	}
}

// SetLatency makes every Load wait d before answering
func (s *MemorySource) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Add appends an option
func (s *MemorySource) Add(o domain.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = append(s.options, o)
}

// Calls returns a copy of every query served so far
func (s *MemorySource) Calls() []domain.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Query(nil), s.calls...)
}

// Load implements Loader
func (s *MemorySource) Load(ctx context.Context, q domain.Query) (domain.ResultPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q)
	latency := s.latency
	s.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.ResultPage{}, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.ResultPage{}, err
	}

	s.mu.RLock()
	matches := make([]domain.Option, 0, len(s.options))
	for _, o := range s.options {
		if matchesQuery(o, q) {
			matches = append(matches, o)
		}
	}
	s.mu.RUnlock()

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(matches)
	}

	start := (page - 1) * limit
	if start > len(matches) {
		start = len(matches)
	}
	end := start + limit
	if end > len(matches) {
		end = len(matches)
	}

	return domain.ResultPage{
		Items:   append([]domain.Option(nil), matches[start:end]...),
		HasMore: end < len(matches),
		Total:   len(matches),
	}, nil
}

func matchesQuery(o domain.Option, q domain.Query) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(o.Name), strings.ToLower(q.Search)) {
		return false
	}
	for k, v := range q.Filters {
		if v == "" {
			continue
		}
		if o.Field(k) != v {
			return false
		}
	}
	return true
}
