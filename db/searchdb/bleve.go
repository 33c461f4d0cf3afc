package searchdb

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/anveshk/osintdex/config"
	"github.com/anveshk/osintdex/logger"
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"
)

const fuzzinessEditDistance = 2

const (
	indexFieldType           = "type"
	indexFieldValue          = "value"
	indexFieldSource         = "source"
	indexFieldAdditionalInfo = "additional_info"
	indexFieldIndexedAt      = "indexed_at"
)

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

func New(logger logger.Logger, cfg *config.Config) (*BleveDB, error) {
	mapping := createIndexMapping()
	indexPath := filepath.Join(cfg.GetStoragePath(), cfg.GetIndexPath())
	index, err := bleve.New(indexPath, mapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "err", err.Error())
			return nil, err
		}
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

func createIndexMapping() mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// Type field - not analyzed (exact category filter)
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt(indexFieldType, typeFieldMapping)

	// Value field - analyzed for full-text and fuzzy matching
	valueFieldMapping := bleve.NewTextFieldMapping()
	valueFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(indexFieldValue, valueFieldMapping)

	// Source field - not analyzed (exact match)
	sourceFieldMapping := bleve.NewTextFieldMapping()
	sourceFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt(indexFieldSource, sourceFieldMapping)

	additionalInfoFieldMapping := bleve.NewTextFieldMapping()
	additionalInfoFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(indexFieldAdditionalInfo, additionalInfoFieldMapping)

	indexedAtFieldMapping := bleve.NewDateTimeFieldMapping()
	docMapping.AddFieldMappingsAt(indexFieldIndexedAt, indexedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// BulkWrite indexes one pre-chunked batch of records. The whole batch is
// committed in a single index operation, so the batch either lands fully
// or counts fully as failed.
func (b *BleveDB) BulkWrite(records []Record) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	batch := b.index.NewBatch()
	now := time.Now().UTC()

	for _, record := range records {
		if record.IndexedAt.IsZero() {
			record.IndexedAt = now
		}
		if err := batch.Index(uuid.NewString(), record); err != nil {
			b.logger.Error("could not add record to batch", "err", err.Error())
			return 0, len(records), err
		}
	}

	if err := b.index.Batch(batch); err != nil {
		b.logger.Error("could not index batch of records", "err", err.Error())
		return 0, len(records), err
	}

	return len(records), 0, nil
}

func (b *BleveDB) Search(ctx context.Context, queryString string, typeFilter string, limit int) ([]Hit, error) {

	searchQuery := buildSearchQuery(queryString, typeFilter)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)
	searchRequest.Fields = []string{indexFieldType, indexFieldValue, indexFieldSource, indexFieldAdditionalInfo}

	searchResult, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		result := Hit{
			Score: hit.Score,
		}

		if recordType, ok := hit.Fields[indexFieldType].(string); ok {
			result.Type = recordType
		}
		if value, ok := hit.Fields[indexFieldValue].(string); ok {
			result.Value = value
		}
		if source, ok := hit.Fields[indexFieldSource].(string); ok {
			result.Source = source
		}
		if additionalInfo, ok := hit.Fields[indexFieldAdditionalInfo].(string); ok {
			result.AdditionalInfo = additionalInfo
		}

		hits[i] = result
	}

	return hits, nil
}

// buildSearchQuery matches the value field three ways: exact phrase,
// substring (wildcarded both ends) and fuzzy within edit distance 2. Any
// one clause is enough. A type filter, when present, restricts hits to
// that category regardless of which clause matched.
func buildSearchQuery(queryString string, typeFilter string) query.Query {

	queryString = strings.ToLower(strings.TrimSpace(queryString))

	disjunctQuery := bleve.NewDisjunctionQuery()
	disjunctQuery.SetMin(1)

	phraseQuery := bleve.NewMatchPhraseQuery(queryString)
	phraseQuery.SetField(indexFieldValue)
	disjunctQuery.AddQuery(phraseQuery)

	wildcardQuery := bleve.NewWildcardQuery("*" + queryString + "*")
	wildcardQuery.SetField(indexFieldValue)
	disjunctQuery.AddQuery(wildcardQuery)

	fuzzyQuery := bleve.NewFuzzyQuery(queryString)
	fuzzyQuery.SetField(indexFieldValue)
	fuzzyQuery.SetFuzziness(fuzzinessEditDistance)
	disjunctQuery.AddQuery(fuzzyQuery)

	if typeFilter == "" {
		return disjunctQuery
	}

	termQuery := bleve.NewTermQuery(typeFilter)
	termQuery.SetField(indexFieldType)

	return bleve.NewConjunctionQuery(disjunctQuery, termQuery)
}

func (b *BleveDB) DocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
