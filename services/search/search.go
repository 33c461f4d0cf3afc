package search

import (
	"context"
	"fmt"

	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/logger"
)

// maxRawHits caps the number of hits fetched per query, ordered by the
// store's relevance score. Aggregated counts are counts over this capped
// set, not index-wide totals.
const maxRawHits = 100

// Searcher represents the record store operations needed for querying
type Searcher interface {
	Search(ctx context.Context, queryString string, typeFilter string, limit int) ([]searchdb.Hit, error)
}

type Service struct {
	logger logger.Logger
	store  Searcher
}

func New(logger logger.Logger, store Searcher) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

type Result struct {
	Query        string               `json:"query"`
	Type         string               `json:"type"`
	TotalResults int                  `json:"total_results"`
	ByType       map[string]TypeGroup `json:"results_by_type"`
}

// Search runs the query against the record store and groups the hits by
// category. Store failures surface to the caller as retryable; no retry
// happens here.
func (s *Service) Search(ctx context.Context, queryText string, typeFilter string) (*Result, error) {
	hits, err := s.store.Search(ctx, queryText, typeFilter, maxRawHits)
	if err != nil {
		return nil, fmt.Errorf("record store query failed: %w", err)
	}

	byType, total := aggregate(hits)

	resultType := typeFilter
	if resultType == "" {
		resultType = "all"
	}

	return &Result{
		Query:        queryText,
		Type:         resultType,
		TotalResults: total,
		ByType:       byType,
	}, nil
}
