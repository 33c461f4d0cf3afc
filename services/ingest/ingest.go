package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anveshk/osintdex/db/kvdb"
	"github.com/anveshk/osintdex/db/searchdb"
	"github.com/anveshk/osintdex/logger"
)

// Indexer represents the record store operations needed for bulk loading
type Indexer interface {
	BulkWrite(records []searchdb.Record) (indexed int, failed int, err error)
}

const importBatchSize = 1000

var (
	ErrQueueFull   = errors.New("import queue is full")
	ErrJobNotFound = errors.New("import job not found")
)

type importRequest struct {
	jobID    string
	data     []byte
	filename string
}

// HistoryRecord is the snapshot persisted when a job reaches a terminal
// state.
type HistoryRecord struct {
	Job
	Filename   string    `json:"filename"`
	FinishedAt time.Time `json:"finished_at"`
}

type Service struct {
	logger   logger.Logger
	indexer  Indexer
	history  kvdb.DB
	registry *Registry
	requests chan importRequest
}

// New starts a fixed pool of import workers fed by a bounded queue, so
// upload volume cannot grow the number of running goroutines. history may
// be nil when no audit trail is wanted.
func New(ctx context.Context, logger logger.Logger, indexer Indexer, history kvdb.DB, workers int, queueSize int) *Service {
	service := &Service{
		logger:   logger,
		indexer:  indexer,
		history:  history,
		registry: NewRegistry(),
		requests: make(chan importRequest, queueSize),
	}

	for i := range workers {
		go service.work(ctx, i)
	}

	return service
}

// Submit registers a job and enqueues the dataset for a worker. It never
// blocks on parsing or indexing; callers poll Status with the returned
// identifier.
func (s *Service) Submit(data []byte, filename string) (string, error) {
	jobID := s.registry.Create()

	select {
	case s.requests <- importRequest{jobID: jobID, data: data, filename: filename}:
		return jobID, nil
	default:
		s.logger.Warn("rejecting upload, import queue is full", "job_id", jobID, "filename", filename)
		s.registry.fail(jobID, ErrQueueFull.Error())
		return "", ErrQueueFull
	}
}

// Status returns a point-in-time copy of the job, or ErrJobNotFound for
// identifiers that were never issued.
func (s *Service) Status(jobID string) (Job, error) {
	job, ok := s.registry.Snapshot(jobID)
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

func (s *Service) work(ctx context.Context, workerID int) {
	for {
		select {
		case req := <-s.requests:
			s.runImport(req, workerID)
		case <-ctx.Done():
			s.logger.Info("import worker stopped", "worker_id", workerID, "reason", ctx.Err())
			return
		}
	}
}

func (s *Service) runImport(req importRequest, workerID int) {
	// A panic anywhere in the pipeline fails the job, never the process.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("import worker panicked", "job_id", req.jobID, "worker_id", workerID, "panic", fmt.Sprintf("%v", r))
			s.registry.fail(req.jobID, fmt.Sprintf("%v", r))
			s.writeHistory(req.jobID, req.filename)
		}
	}()

	s.logger.Info("starting import", "job_id", req.jobID, "worker_id", workerID, "filename", req.filename)

	records, err := s.prepare(req)
	if err != nil {
		s.logger.Error("import failed", "job_id", req.jobID, "err", err.Error())
		s.registry.fail(req.jobID, err.Error())
		s.writeHistory(req.jobID, req.filename)
		return
	}

	for start := 0; start < len(records); start += importBatchSize {
		end := min(start+importBatchSize, len(records))
		s.flush(req.jobID, records[start:end])
	}

	s.registry.complete(req.jobID)
	s.writeHistory(req.jobID, req.filename)

	job, _ := s.registry.Snapshot(req.jobID)
	s.logger.Info("import finished", "job_id", req.jobID, "processed", job.Processed, "failed_batches", job.FailedBatches)
}

func (s *Service) prepare(req importRequest) ([]searchdb.Record, error) {
	parsed, err := parseDataset(req.data, req.filename)
	if err != nil {
		return nil, err
	}

	records, skipped, err := parsed.normalize()
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn("skipped rows with empty type or value", "job_id", req.jobID, "skipped", skipped)
	}

	// Total becomes known only once the whole dataset has been parsed.
	s.registry.setTotal(req.jobID, len(records))

	return records, nil
}

// flush writes one batch and advances the processed counter whether or
// not the write succeeded. A transient store error must not abort the
// whole job; the failed-batch counter keeps the loss observable.
func (s *Service) flush(jobID string, batch []searchdb.Record) {
	if _, failed, err := s.indexer.BulkWrite(batch); err != nil {
		s.logger.Error("bulk write failed for batch", "job_id", jobID, "batch_size", len(batch), "failed", failed, "err", err.Error())
		s.registry.addFailedBatch(jobID)
	}
	s.registry.addProcessed(jobID, len(batch))
}

func (s *Service) writeHistory(jobID string, filename string) {
	if s.history == nil {
		return
	}

	job, ok := s.registry.Snapshot(jobID)
	if !ok {
		return
	}

	record := HistoryRecord{
		Job:        job,
		Filename:   filename,
		FinishedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("failed to marshal import history record", "job_id", jobID, "err", err.Error())
		return
	}

	if err := s.history.Set(jobID, string(data)); err != nil {
		s.logger.Error("failed to persist import history record", "job_id", jobID, "err", err.Error())
	}
}
