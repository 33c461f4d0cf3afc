package searchdb

import "context"

type DB interface {
	BulkWrite(records []Record) (indexed int, failed int, err error)
	Search(ctx context.Context, queryString string, typeFilter string, limit int) ([]Hit, error)
	DocCount() (uint64, error)
	Close() error
}
