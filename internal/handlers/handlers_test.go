package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mismatch-predictor/internal/metrics"
	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/artifacts"
	"mismatch-predictor/internal/services/decision"
)

func loadSet(t *testing.T) *artifacts.Set {
	t.Helper()
	set, err := artifacts.Load(context.Background(), &artifacts.FileSource{
		ClassifierPath: "../../artifacts/mismatch_classifier.json",
		ScalerPath:     "../../artifacts/mismatch_scaler.json",
	})
	require.NoError(t, err)
	return set
}

func newEvaluator(t *testing.T, set *artifacts.Set, m *metrics.Metrics) *decision.Evaluator {
	t.Helper()
	engine, err := decision.NewEngine(set)
	require.NoError(t, err)
	return decision.NewEvaluator(engine, decision.WithMetrics(m))
}

func newFormServer(t *testing.T) *FormServer {
	t.Helper()
	set := loadSet(t)
	m := metrics.New()
	m.SetArtifactsLoaded(true)
	return NewFormServer(newEvaluator(t, set, m), NewHealthHandler(set, "test"), m)
}

func postForm(t *testing.T, server http.Handler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

// formValues returns a complete form with the defaults, overridden by overrides.
func formValues(overrides map[string]string) url.Values {
	defaults := models.DefaultOperatorJobInput()
	values := url.Values{}
	for _, field := range models.InputFields {
		v, _ := defaults.Get(field.Name)
		values.Set(field.Name, strconv.FormatFloat(v, 'f', -1, 64))
	}
	for name, v := range overrides {
		values.Set(name, v)
	}
	return values
}

func TestFormServer_GetRendersDefaults(t *testing.T) {
	server := newFormServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, field := range models.InputFields {
		assert.Contains(t, body, field.Label)
	}
	assert.Contains(t, body, `name="rework_cost" min="0" max="10000" step="100" value="2500"`)
	assert.Contains(t, body, `value="0.75"`)
	assert.NotContains(t, body, "Likely")
}

func TestFormServer_PostOverride(t *testing.T) {
	server := newFormServer(t)

	rec := postForm(t, server, url.Values{
		"skill_level":            {"3"},
		"job_skill_required":     {"3"},
		"safety_incidents":       {"8"},
		"product_quality_score":  {"80"},
		"rework_cost":            {"1000"},
		"operational_efficiency": {"0.9"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mismatch Likely")
	assert.Contains(t, body, models.RationaleOverride)
	assert.Contains(t, body, "<code>3 - 3 = 0</code>")
}

func TestFormServer_PostShowsAnnotation(t *testing.T) {
	server := newFormServer(t)

	rec := postForm(t, server, url.Values{
		"skill_level":            {"5"},
		"job_skill_required":     {"1"},
		"safety_incidents":       {"0"},
		"product_quality_score":  {"80"},
		"rework_cost":            {"500"},
		"operational_efficiency": {"0.9"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Match Likely")
	assert.Contains(t, body, models.AnnotationOverqualified)
}

func TestFormServer_PostInvalid(t *testing.T) {
	server := newFormServer(t)

	tests := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"not a number", formValues(map[string]string{"skill_level": "three"}), "Operator Skill Level must be a whole number"},
		{"out of range", formValues(map[string]string{"operational_efficiency": "1.5"}), "operational_efficiency must be between 0 and 1"},
		{"blank field", formValues(map[string]string{"rework_cost": " "}), "Rework Cost is required"},
		{"missing field", url.Values{"skill_level": {"3"}}, "Job Skill Required is required"},
		{"empty body", url.Values{}, "Operator Skill Level is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, server, tt.values)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestFormServer_UnknownPathAndMethod(t *testing.T) {
	server := newFormServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFormServer_HealthAndMetrics(t *testing.T) {
	server := newFormServer(t)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "gbtree", health.ClassifierFormat)
	assert.Equal(t, "standard", health.ScalerFormat)

	postForm(t, server, formValues(map[string]string{"rework_cost": "5000"}))

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `mismatch_override_rules_total{rule="rework_cost"} 1`)
	assert.Contains(t, body, "mismatch_artifacts_loaded 1")
}

func TestHealthHandler_Degraded(t *testing.T) {
	resp, err := NewHealthHandler(nil, "test").Handle(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, resp.Body, `"artifacts":"not loaded"`)
}

func TestEvaluateHandler(t *testing.T) {
	handler := NewEvaluateHandler(newEvaluator(t, loadSet(t), metrics.New()))

	valid := `{"skill_level":1,"job_skill_required":4,"safety_incidents":0,` +
		`"product_quality_score":50,"rework_cost":500,"operational_efficiency":0.9}`

	tests := []struct {
		name    string
		request events.APIGatewayProxyRequest
		status  int
		check   func(t *testing.T, body string)
	}{
		{
			name:    "valid request",
			request: events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: valid},
			status:  http.StatusOK,
			check: func(t *testing.T, body string) {
				var evaluation models.Evaluation
				require.NoError(t, json.Unmarshal([]byte(body), &evaluation))
				assert.Equal(t, 3, evaluation.Features.SkillGap)
				assert.Equal(t, models.OutcomeMismatch, evaluation.Verdict.Outcome)
				require.NotNil(t, evaluation.Explanation.Annotation)
				assert.Equal(t, models.AnnotationLargeGap, evaluation.Explanation.Annotation.Message)
			},
		},
		{
			name: "base64 body",
			request: events.APIGatewayProxyRequest{
				HTTPMethod:      http.MethodPost,
				Body:            base64.StdEncoding.EncodeToString([]byte(valid)),
				IsBase64Encoded: true,
			},
			status: http.StatusOK,
		},
		{
			name: "whole-valued float for integer field",
			request: events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: strings.Replace(valid,
				`"skill_level":1`, `"skill_level":1.0`, 1)},
			status: http.StatusOK,
			check: func(t *testing.T, body string) {
				var evaluation models.Evaluation
				require.NoError(t, json.Unmarshal([]byte(body), &evaluation))
				assert.Equal(t, 1, evaluation.Input.SkillLevel)
				assert.Equal(t, 3, evaluation.Features.SkillGap)
			},
		},
		{
			name: "fractional integer field",
			request: events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: strings.Replace(valid,
				`"skill_level":1`, `"skill_level":1.5`, 1)},
			status: http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				var errBody ErrorBody
				require.NoError(t, json.Unmarshal([]byte(body), &errBody))
				require.NotEmpty(t, errBody.Fields)
				assert.Equal(t, "skill_level", errBody.Fields[0].Field)
			},
		},
		{
			name:    "preflight",
			request: events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions},
			status:  http.StatusOK,
		},
		{
			name:    "malformed json",
			request: events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: "{"},
			status:  http.StatusBadRequest,
		},
		{
			name:    "missing field",
			request: events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: `{"skill_level":3}`},
			status:  http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				var errBody ErrorBody
				require.NoError(t, json.Unmarshal([]byte(body), &errBody))
				assert.NotEmpty(t, errBody.Fields)
			},
		},
		{
			name: "out of range",
			request: events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Body: strings.Replace(valid,
				`"skill_level":1`, `"skill_level":9`, 1)},
			status: http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				assert.Contains(t, body, "skill_level must be between 1 and 5")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := handler.Handle(context.Background(), tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
			if tt.check != nil {
				tt.check(t, resp.Body)
			}
		})
	}
}
