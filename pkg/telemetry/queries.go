package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// QueryRecord captures one hybrid search execution for offline analysis of
// strategy contribution and latency.
type QueryRecord struct {
	ID             string    `parquet:"id"`
	Timestamp      time.Time `parquet:"timestamp"`
	Query          string    `parquet:"query"`
	Modality       string    `parquet:"modality"`
	TopK           int       `parquet:"top_k"`
	VectorResults  int       `parquet:"vector_results"`
	GraphResults   int       `parquet:"graph_results"`
	KeywordResults int       `parquet:"keyword_results"`
	FusedResults   int       `parquet:"fused_results"`
	DurationMillis int64     `parquet:"duration_millis"`
}

// QueryRecorder buffers query records and writes them to Parquet files in
// batches.
type QueryRecorder struct {
	outputDir string
	mu        sync.Mutex
	buffer    []QueryRecord
	batchSize int
}

// NewQueryRecorder creates a recorder writing to outputDir.
func NewQueryRecorder(outputDir string) (*QueryRecorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	return &QueryRecorder{
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make([]QueryRecord, 0, 100),
	}, nil
}

// Record buffers one query execution. Missing IDs and timestamps are filled
// in.
func (r *QueryRecorder) Record(record QueryRecord) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, record)
	if len(r.buffer) >= r.batchSize {
		r.flush()
	}
}

// Flush writes any buffered records immediately.
func (r *QueryRecorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// Close flushes remaining records.
func (r *QueryRecorder) Close() error {
	return r.Flush()
}

// flush writes the current buffer to a new Parquet file.
// Caller must hold the lock.
func (r *QueryRecorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("search_queries_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write query telemetry file: %v\n", err)
		return err
	}

	r.buffer = r.buffer[:0]
	return nil
}
