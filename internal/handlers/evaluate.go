package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"mismatch-predictor/internal/models"
	"mismatch-predictor/internal/services/decision"
	"mismatch-predictor/internal/utils"
	"mismatch-predictor/internal/validation"
)

const evaluateRequestSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": [
		"skill_level",
		"job_skill_required",
		"safety_incidents",
		"product_quality_score",
		"rework_cost",
		"operational_efficiency"
	],
	"additionalProperties": false,
	"properties": {
		"skill_level": {"type": "integer"},
		"job_skill_required": {"type": "integer"},
		"safety_incidents": {"type": "integer"},
		"product_quality_score": {"type": "number"},
		"rework_cost": {"type": "number"},
		"operational_efficiency": {"type": "number"}
	}
}`

var evaluateRequestSchema = validation.MustSchema("evaluate request", evaluateRequestSchemaJSON)

// EvaluateHandler serves single evaluations over API Gateway.
type EvaluateHandler struct {
	evaluator *decision.Evaluator
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(evaluator *decision.Evaluator) *EvaluateHandler {
	return &EvaluateHandler{evaluator: evaluator}
}

// ErrorBody is the payload of a failed request.
type ErrorBody struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// Handle evaluates the operator-job pair in the request body.
func (h *EvaluateHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := lambdaHeaders("POST,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return errorResponse(headers, http.StatusBadRequest, "Request body is not valid base64")
		}
		body = decoded
	}

	input, err := decodeEvaluateRequest(body)
	if err != nil {
		var schemaErr *validation.Error
		if errors.As(err, &schemaErr) {
			return jsonResponse(headers, http.StatusBadRequest, ErrorBody{
				Error:   http.StatusText(http.StatusBadRequest),
				Message: "Request body does not match the expected shape",
				Fields:  schemaErr.Errors,
			})
		}
		return errorResponse(headers, http.StatusBadRequest, "Invalid JSON in request body")
	}

	evaluation, err := h.evaluator.Evaluate(ctx, input)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return errorResponse(headers, http.StatusBadRequest, err.Error())
		}
		logger.Error("Evaluation request failed", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Evaluation failed")
	}

	return jsonResponse(headers, http.StatusOK, evaluation)
}

// decodeEvaluateRequest validates the body against the request schema and decodes it.
// Integer fields accept whole-valued numbers such as 3.0, as the schema does.
func decodeEvaluateRequest(body []byte) (models.OperatorJobInput, error) {
	var input models.OperatorJobInput

	if err := evaluateRequestSchema.Validate(body); err != nil {
		return input, err
	}

	var values map[string]float64
	if err := json.Unmarshal(body, &values); err != nil {
		return input, err
	}
	for _, field := range models.InputFields {
		input.Set(field.Name, values[field.Name])
	}
	return input, nil
}
