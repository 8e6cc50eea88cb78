package handlers

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"mismatch-predictor/internal/services/batch"
	"mismatch-predictor/internal/utils"
)

// ResultsPrefix is where batch results are written in the bucket.
const ResultsPrefix = "results/"

// maxReportedErrors caps the row errors returned in a result.
const maxReportedErrors = 10

// ObjectStore is the subset of the S3 service used by the batch processor.
type ObjectStore interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	UploadFile(ctx context.Context, key string, data []byte, contentType string) error
	Bucket() string
}

// BatchProcessorHandler evaluates operator files uploaded to S3.
type BatchProcessorHandler struct {
	store  ObjectStore
	runner *batch.Runner
}

// NewBatchProcessorHandler creates a new batch processor handler.
func NewBatchProcessorHandler(store ObjectStore, runner *batch.Runner) *BatchProcessorHandler {
	return &BatchProcessorHandler{store: store, runner: runner}
}

// BatchProcessResult is the result of processing one uploaded file.
type BatchProcessResult struct {
	Message    string   `json:"message"`
	SourceKey  string   `json:"source_key,omitempty"`
	ResultKey  string   `json:"result_key,omitempty"`
	Total      int      `json:"total"`
	Mismatches int      `json:"mismatches"`
	Matches    int      `json:"matches"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded batch files.
func (h *BatchProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (BatchProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return BatchProcessResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	bucket := record.S3.Bucket.Name
	if bucket != h.store.Bucket() {
		return BatchProcessResult{}, fmt.Errorf("event bucket %q does not match configured bucket %q", bucket, h.store.Bucket())
	}

	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return BatchProcessResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	if strings.HasPrefix(key, ResultsPrefix) {
		return BatchProcessResult{Message: "Skipping results file", SourceKey: key}, nil
	}

	logger.Info("Processing batch file",
		utils.String("bucket", bucket),
		utils.String("key", key))

	content, err := h.store.DownloadFile(ctx, key)
	if err != nil {
		return BatchProcessResult{}, fmt.Errorf("failed to download batch file: %w", err)
	}

	rows, rowErrors, err := batch.Parse(key, content)
	if err != nil {
		logger.Warn("Batch file rejected", utils.String("key", key), utils.Error(err))
		return BatchProcessResult{
			Message:   "Batch file could not be parsed",
			SourceKey: key,
			Errors:    []string{err.Error()},
		}, nil
	}

	result := h.runner.Run(ctx, rows, rowErrors)

	resultKey := ResultKey(key)
	encoded, err := result.Encode(resultKey)
	if err != nil {
		return BatchProcessResult{}, fmt.Errorf("failed to encode results: %w", err)
	}
	if err := h.store.UploadFile(ctx, resultKey, encoded, contentType(resultKey)); err != nil {
		return BatchProcessResult{}, fmt.Errorf("failed to upload results: %w", err)
	}

	logger.Info("Batch results written",
		utils.String("result_key", resultKey),
		utils.Int("total", result.Total),
		utils.Int("failed", result.Failed))

	var errMsgs []string
	for _, row := range result.Rows {
		if row.Err == nil {
			continue
		}
		if len(errMsgs) == maxReportedErrors {
			break
		}
		errMsgs = append(errMsgs, fmt.Sprintf("line %d: %s", row.Line, row.Error))
	}

	return BatchProcessResult{
		Message:    "Batch processed successfully",
		SourceKey:  key,
		ResultKey:  resultKey,
		Total:      result.Total,
		Mismatches: result.Mismatches,
		Matches:    result.Matches,
		Failed:     result.Failed,
		Errors:     errMsgs,
	}, nil
}

// ResultKey returns the object key the results of key are written to.
// The results keep the input format.
func ResultKey(key string) string {
	base := path.Base(key)
	ext := path.Ext(base)
	return ResultsPrefix + strings.TrimSuffix(base, ext) + ".results" + strings.ToLower(ext)
}

func contentType(key string) string {
	if strings.HasSuffix(key, ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
