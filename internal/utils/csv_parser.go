// Package utils provides utility functions for the mismatch predictor.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mismatch-predictor/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrInvalidRowData = errors.New("invalid row data")
)

// RequiredColumns defines the columns that must be present in a batch file.
var RequiredColumns = []string{
	"skill_level",
	"job_skill_required",
	"safety_incidents",
	"product_quality_score",
	"rework_cost",
	"operational_efficiency",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// skill_level aliases
	"skilllevel":           "skill_level",
	"skill level":          "skill_level",
	"skill":                "skill_level",
	"operator_skill":       "skill_level",
	"operator skill level": "skill_level",
	"operator_skill_level": "skill_level",

	// job_skill_required aliases
	"jobskillrequired":   "job_skill_required",
	"job skill required": "job_skill_required",
	"required_skill":     "job_skill_required",
	"required skill":     "job_skill_required",
	"job_skill":          "job_skill_required",

	// safety_incidents aliases
	"safetyincidents":       "safety_incidents",
	"safety incidents":      "safety_incidents",
	"incidents":             "safety_incidents",
	"past safety incidents": "safety_incidents",
	"past_safety_incidents": "safety_incidents",

	// product_quality_score aliases
	"productqualityscore":   "product_quality_score",
	"product quality score": "product_quality_score",
	"quality":               "product_quality_score",
	"quality_score":         "product_quality_score",
	"quality score":         "product_quality_score",

	// rework_cost aliases
	"reworkcost":  "rework_cost",
	"rework cost": "rework_cost",
	"rework":      "rework_cost",

	// operational_efficiency aliases
	"operationalefficiency":  "operational_efficiency",
	"operational efficiency": "operational_efficiency",
	"efficiency":             "operational_efficiency",
}

// OperatorRow is one parsed data row and the line it came from.
type OperatorRow struct {
	Line  int
	Input models.OperatorJobInput
}

// RowError reports a row that could not be parsed.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// CSVParser handles parsing of operator-job batch files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseRows parses CSV content into operator rows.
// Row errors do not stop parsing; a header problem does.
func (p *CSVParser) ParseRows(content string) ([]OperatorRow, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var rows []OperatorRow
	var parseErrors []error

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			parseErrors = append(parseErrors, &RowError{Line: line, Err: err})
			continue
		}

		// Blank lines are skipped by the reader, so take the line from the record itself
		lineNum, _ := reader.FieldPos(0)
		row, err := p.parseRecord(record, lineNum)
		if err != nil {
			parseErrors = append(parseErrors, err)
			continue
		}
		if row != nil {
			rows = append(rows, *row)
		}
	}

	if len(rows) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return rows, parseErrors
}

// ParseRecords parses already split records, header first, as read from a spreadsheet.
func (p *CSVParser) ParseRecords(records [][]string) ([]OperatorRow, []error) {
	if len(records) == 0 {
		return nil, []error{ErrEmptyCSV}
	}

	if err := p.buildColumnMapping(records[0]); err != nil {
		return nil, []error{err}
	}

	var rows []OperatorRow
	var parseErrors []error
	for i, record := range records[1:] {
		row, err := p.parseRecord(record, i+2)
		if err != nil {
			parseErrors = append(parseErrors, err)
			continue
		}
		if row != nil {
			rows = append(rows, *row)
		}
	}

	if len(rows) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return rows, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := normalizeColumn(col)
		if _, seen := p.columnMapping[normalized]; !seen {
			p.columnMapping[normalized] = i
		}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRecord parses a single record. Blank records yield neither a row nor an error.
func (p *CSVParser) parseRecord(record []string, line int) (*OperatorRow, error) {
	if isBlank(record) {
		return nil, nil
	}

	var input models.OperatorJobInput
	for _, field := range models.InputFields {
		idx := p.columnMapping[field.Name]
		if idx >= len(record) {
			return nil, &RowError{Line: line, Err: fmt.Errorf("%w: column %s is missing", ErrInvalidRowData, field.Name)}
		}

		raw := strings.TrimSpace(record[idx])
		if field.Integer {
			v, err := parseInt(raw)
			if err != nil {
				return nil, &RowError{Line: line, Err: fmt.Errorf("%w: invalid %s: %v", ErrInvalidRowData, field.Name, err)}
			}
			input.Set(field.Name, float64(v))
			continue
		}

		v, err := parseFloat(raw, field.Percent)
		if err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("%w: invalid %s: %v", ErrInvalidRowData, field.Name, err)}
		}
		input.Set(field.Name, v)
	}

	return &OperatorRow{Line: line, Input: input}, nil
}

func normalizeColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	normalized = strings.TrimPrefix(normalized, "\ufeff")
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseFloat parses a string to float64, handling common formats.
// A trailing percent sign is accepted only when percent is set.
func parseFloat(s string, percent bool) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove thousands separators and currency symbols
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, "%") {
		if !percent {
			return 0, fmt.Errorf("%q: percent values are not allowed here", s)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return 0, err
		}
		return f / 100, nil
	}

	return strconv.ParseFloat(s, 64)
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Handle float strings (e.g., "3.0") written by spreadsheets
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		if f != float64(int(f)) {
			return 0, fmt.Errorf("%q is not a whole number", s)
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Valid:          false,
		RowCount:       0,
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalizedColumns[normalizeColumn(col)] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
