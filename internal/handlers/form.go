package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"mismatch-predictor/internal/metrics"
	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/decision"
	"mismatch-predictor/internal/utils"
)

const formTemplateText = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Operator-Job Mismatch Predictor</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; }
label { display: block; margin-top: 0.8rem; }
.result { margin-top: 1.5rem; padding: 1rem; border-radius: 4px; }
.mismatch { background: #fde2e1; }
.match { background: #e1f5e4; }
.warning { color: #8a5a00; }
.info { color: #1d4f91; }
.error { color: #a00; }
</style>
</head>
<body>
<h1>Operator-Job Mismatch Predictor</h1>
<form method="post" action="/">
{{range .Fields}}
<label for="{{.Name}}">{{.Label}}</label>
<input type="number" id="{{.Name}}" name="{{.Name}}" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Value}}" required>
{{end}}
<p><button type="submit">Predict Mismatch</button></p>
</form>
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{with .Evaluation}}
<div class="result {{.Verdict.Outcome}}">
<h2>{{.Verdict.Label}}</h2>
<p>{{.Verdict.Rationale}}</p>
<p><strong>Skill Gap:</strong> <code>{{.Explanation.SkillGapSummary}}</code></p>
{{with .Explanation.Annotation}}<p class="{{.Kind}}">{{.Message}}</p>{{end}}
</div>
{{end}}
</body>
</html>
`

var formTemplate = template.Must(template.New("form").Parse(formTemplateText))

// formField is one rendered input control.
type formField struct {
	models.InputField
	Value string
}

type formPage struct {
	Fields     []formField
	Error      string
	Evaluation *models.Evaluation
}

// FormServer serves the interactive form and the operational endpoints.
type FormServer struct {
	evaluator *decision.Evaluator
	health    *HealthHandler
	metrics   *metrics.Metrics
	mux       *http.ServeMux
}

// NewFormServer wires the routes. m may be nil, in which case /metrics is not served.
func NewFormServer(evaluator *decision.Evaluator, health *HealthHandler, m *metrics.Metrics) *FormServer {
	s := &FormServer{
		evaluator: evaluator,
		health:    health,
		metrics:   m,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("/", s.formHandler)
	s.mux.Handle("/health", health)
	if m != nil {
		s.mux.Handle("/metrics", m.Handler())
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *FormServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.Middleware(s.mux).ServeHTTP(w, r)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *FormServer) formHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.render(w, http.StatusOK, models.DefaultOperatorJobInput(), nil, "")
	case http.MethodPost:
		s.submit(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *FormServer) submit(w http.ResponseWriter, r *http.Request) {
	logger := utils.GetLogger()

	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, models.DefaultOperatorJobInput(), nil, "Failed to parse form")
		return
	}

	input, err := ParseFormInput(r)
	if err != nil {
		s.render(w, http.StatusBadRequest, input, nil, err.Error())
		return
	}

	evaluation, err := s.evaluator.Evaluate(r.Context(), input)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			s.render(w, http.StatusBadRequest, input, nil, err.Error())
			return
		}
		logger.Error("Form evaluation failed", utils.Error(err))
		s.render(w, http.StatusInternalServerError, input, nil, "Evaluation failed. Please try again.")
		return
	}

	s.render(w, http.StatusOK, input, evaluation, "")
}

// ParseFormInput reads the six fields from a parsed form. Every field is required.
// On error the returned input holds the values read so far over the defaults.
func ParseFormInput(r *http.Request) (models.OperatorJobInput, error) {
	input := models.DefaultOperatorJobInput()

	for _, field := range models.InputFields {
		raw := strings.TrimSpace(r.PostFormValue(field.Name))
		if raw == "" {
			return input, fmt.Errorf("%w: %s is required", models.ErrInvalidInput, field.Label)
		}

		if field.Integer {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return input, fmt.Errorf("%w: %s must be a whole number", models.ErrInvalidInput, field.Label)
			}
			input.Set(field.Name, float64(v))
			continue
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return input, fmt.Errorf("%w: %s must be a number", models.ErrInvalidInput, field.Label)
		}
		input.Set(field.Name, v)
	}

	return input, nil
}

func (s *FormServer) render(w http.ResponseWriter, status int, input models.OperatorJobInput, evaluation *models.Evaluation, message string) {
	page := formPage{
		Fields:     make([]formField, 0, len(models.InputFields)),
		Error:      message,
		Evaluation: evaluation,
	}
	for _, field := range models.InputFields {
		value, _ := input.Get(field.Name)
		page.Fields = append(page.Fields, formField{
			InputField: field,
			Value:      strconv.FormatFloat(value, 'f', -1, 64),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, page); err != nil {
		utils.GetLogger().Error("Failed to render form", utils.Error(err))
	}
}
