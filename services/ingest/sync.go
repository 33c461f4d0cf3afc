package ingest

import (
	"github.com/anveshk/osintdex/logger"
)

// Import runs the validate, normalize and bulk-write sequence
// synchronously, without the job registry. It exists for the batch-load
// CLI; the HTTP path goes through Submit instead. Batch-level write
// errors are counted and the import carries on, mirroring the async
// loader.
func Import(logger logger.Logger, indexer Indexer, data []byte, filename string) (indexed int, failed int, err error) {
	parsed, err := parseDataset(data, filename)
	if err != nil {
		return 0, 0, err
	}

	records, skipped, err := parsed.normalize()
	if err != nil {
		return 0, 0, err
	}
	if skipped > 0 {
		logger.Warn("skipped rows with empty type or value", "skipped", skipped)
	}

	for start := 0; start < len(records); start += importBatchSize {
		end := min(start+importBatchSize, len(records))
		batchIndexed, batchFailed, err := indexer.BulkWrite(records[start:end])
		if err != nil {
			logger.Error("bulk write failed for batch", "batch_size", end-start, "err", err.Error())
		}
		indexed += batchIndexed
		failed += batchFailed
	}

	return indexed, failed, nil
}
