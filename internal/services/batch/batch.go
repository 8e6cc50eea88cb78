// Package batch evaluates every row of a CSV or XLSX file independently.
package batch

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/decision"
	"mismatch-predictor/internal/utils"
)

// Supported file formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported batch file format")

// ResultColumns is the header of the results file.
var ResultColumns = append(append([]string{"line"}, utils.RequiredColumns...),
	"skill_gap", "outcome", "label", "rationale", "source", "triggered_rules", "annotation", "error")

// RowResult is the outcome of one row. Exactly one of Evaluation and Err is set.
type RowResult struct {
	Line       int                      `json:"line"`
	Input      *models.OperatorJobInput `json:"input,omitempty"`
	Evaluation *models.Evaluation       `json:"evaluation,omitempty"`
	Err        error                    `json:"-"`
	Error      string                   `json:"error,omitempty"`
}

// Result summarizes a batch run.
type Result struct {
	Rows       []RowResult `json:"rows"`
	Total      int         `json:"total"`
	Mismatches int         `json:"mismatches"`
	Matches    int         `json:"matches"`
	Failed     int         `json:"failed"`
}

// Runner evaluates batches with a shared evaluator.
type Runner struct {
	evaluator *decision.Evaluator
}

// NewRunner creates a batch runner.
func NewRunner(evaluator *decision.Evaluator) *Runner {
	return &Runner{evaluator: evaluator}
}

// DetectFormat picks the format from the file name.
func DetectFormat(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Parse reads the rows of a batch file. A returned error means no row could be read.
func Parse(name string, data []byte) ([]utils.OperatorRow, []error, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, nil, err
	}

	parser := utils.NewCSVParser()
	var rows []utils.OperatorRow
	var rowErrors []error

	switch format {
	case FormatXLSX:
		records, err := utils.ReadXLSXRecords(data)
		if err != nil {
			return nil, nil, err
		}
		rows, rowErrors = parser.ParseRecords(records)
	default:
		content := string(data)
		if err := checkCSVStructure(content); err != nil {
			return nil, nil, err
		}
		rows, rowErrors = parser.ParseRows(content)
	}

	if len(rows) == 0 && len(rowErrors) > 0 {
		var rowErr *utils.RowError
		if !errors.As(rowErrors[0], &rowErr) && !errors.Is(rowErrors[0], utils.ErrNoDataRows) {
			return nil, nil, rowErrors[0]
		}
	}
	return rows, rowErrors, nil
}

// checkCSVStructure rejects a CSV file whose header lacks required columns or
// that has no data rows. Unreadable content is left to the parser.
func checkCSVStructure(content string) error {
	structure, err := utils.ValidateCSVStructure(content)
	if err != nil {
		return err
	}
	if len(structure.MissingColumns) > 0 {
		return fmt.Errorf("%w: %s", utils.ErrMissingColumns, strings.Join(structure.MissingColumns, ", "))
	}
	if structure.RowCount == 0 && len(structure.Errors) == 0 {
		return utils.ErrNoDataRows
	}
	return nil
}

// Run evaluates each row independently. Parse errors are reported as failed rows,
// as are the rows left when ctx is done.
func (r *Runner) Run(ctx context.Context, rows []utils.OperatorRow, parseErrors []error) *Result {
	logger := utils.GetLogger()
	result := &Result{}

	for _, err := range parseErrors {
		var rowErr *utils.RowError
		if !errors.As(err, &rowErr) {
			continue
		}
		result.Rows = append(result.Rows, RowResult{Line: rowErr.Line, Err: rowErr.Err, Error: rowErr.Err.Error()})
		result.Failed++
	}

	for _, row := range rows {
		input := row.Input
		if err := ctx.Err(); err != nil {
			result.Rows = append(result.Rows, RowResult{Line: row.Line, Input: &input, Err: err, Error: err.Error()})
			result.Failed++
			continue
		}

		evaluation, err := r.evaluator.Evaluate(ctx, input)
		if err != nil {
			result.Rows = append(result.Rows, RowResult{Line: row.Line, Input: &input, Err: err, Error: err.Error()})
			result.Failed++
			continue
		}

		result.Rows = append(result.Rows, RowResult{Line: row.Line, Input: &input, Evaluation: evaluation})
		if evaluation.Verdict.IsMismatch() {
			result.Mismatches++
		} else {
			result.Matches++
		}
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].Line < result.Rows[j].Line
	})
	result.Total = len(result.Rows)

	logger.Info("Batch evaluated",
		zap.Int("total", result.Total),
		zap.Int("mismatches", result.Mismatches),
		zap.Int("matches", result.Matches),
		zap.Int("failed", result.Failed),
	)

	return result
}

// Record flattens a row result into the ResultColumns layout.
func (rr *RowResult) Record() []string {
	record := make([]string, 0, len(ResultColumns))
	record = append(record, strconv.Itoa(rr.Line))

	for _, field := range models.InputFields {
		if rr.Input == nil {
			record = append(record, "")
			continue
		}
		v, _ := rr.Input.Get(field.Name)
		record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
	}

	if rr.Evaluation == nil {
		record = append(record, "", "", "", "", "", "", "", rr.Error)
		return record
	}

	ev := rr.Evaluation
	annotation := ""
	if ev.Explanation.Annotation != nil {
		annotation = ev.Explanation.Annotation.Message
	}

	return append(record,
		strconv.Itoa(ev.Features.SkillGap),
		string(ev.Verdict.Outcome),
		ev.Verdict.Label,
		ev.Verdict.Rationale,
		string(ev.Verdict.Source),
		strings.Join(ev.Verdict.TriggeredRules, ";"),
		annotation,
		"",
	)
}

// WriteCSV renders the results as CSV.
func (res *Result) WriteCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ResultColumns); err != nil {
		return nil, err
	}
	for i := range res.Rows {
		if err := w.Write(res.Rows[i].Record()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders the results as a workbook.
func (res *Result) WriteXLSX() ([]byte, error) {
	rows := make([][]interface{}, len(res.Rows))
	for i := range res.Rows {
		record := res.Rows[i].Record()
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		rows[i] = row
	}
	return utils.WriteXLSX("Results", ResultColumns, rows)
}

// Encode renders the results in the format matching name.
func (res *Result) Encode(name string) ([]byte, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return res.WriteXLSX()
	}
	return res.WriteCSV()
}
