package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"mismatch-predictor/internal/services/artifacts"
)

// ServiceName identifies this service in health responses.
const ServiceName = "mismatch-predictor"

// HealthHandler handles health check requests.
type HealthHandler struct {
	set   *artifacts.Set
	stage string
}

// NewHealthHandler creates a new health handler. A nil set reports the service as degraded.
func NewHealthHandler(set *artifacts.Set, stage string) *HealthHandler {
	return &HealthHandler{set: set, stage: stage}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	Service          string `json:"service"`
	Version          string `json:"version"`
	Stage            string `json:"stage"`
	Artifacts        string `json:"artifacts"`
	ArtifactSource   string `json:"artifact_source,omitempty"`
	ClassifierFormat string `json:"classifier_format,omitempty"`
	ScalerFormat     string `json:"scaler_format,omitempty"`
}

// Status reports the current health.
func (h *HealthHandler) Status() HealthResponse {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     h.stage,
	}

	if h.set == nil {
		response.Status = "degraded"
		response.Artifacts = "not loaded"
		return response
	}

	response.Artifacts = "loaded"
	response.ArtifactSource = h.set.Source
	response.ClassifierFormat = h.set.Classifier.Format()
	response.ScalerFormat = h.set.Scaler.Format()
	return response
}

// Handle processes health check requests from API Gateway.
func (h *HealthHandler) Handle(_ context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response := h.Status()

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return jsonResponse(lambdaHeaders("GET,OPTIONS"), statusCode, response)
}

// ServeHTTP serves the same report over plain HTTP.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	response := h.Status()

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, response)
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
