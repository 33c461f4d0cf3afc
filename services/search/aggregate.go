package search

import (
	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/validation"
)

// maxResultsPerType bounds how many hits a category exposes; the count
// still reflects every hit in the capped raw set.
const maxResultsPerType = 10

type TypeGroup struct {
	Count   int            `json:"count"`
	Results []searchdb.Hit `json:"results"`
}

// aggregate groups hits by record type, preserving their relative order
// within each group. Every known category is present in the output even
// with no hits, so callers never distinguish "no matches" from "field
// absent". Hits of unknown types are dropped.
func aggregate(hits []searchdb.Hit) (map[string]TypeGroup, int) {
	grouped := make(map[string][]searchdb.Hit, len(validation.RecordTypes))
	for _, hit := range hits {
		grouped[hit.Type] = append(grouped[hit.Type], hit)
	}

	byType := make(map[string]TypeGroup, len(validation.RecordTypes))
	total := 0
	for _, recordType := range validation.RecordTypes {
		hitsForType := grouped[recordType]
		total += len(hitsForType)

		results := hitsForType
		if len(results) > maxResultsPerType {
			results = results[:maxResultsPerType]
		}
		if results == nil {
			results = []searchdb.Hit{}
		}

		byType[recordType] = TypeGroup{
			Count:   len(hitsForType),
			Results: results,
		}
	}

	return byType, total
}
