package model

const classifierSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["kind", "format", "feature_names"],
	"properties": {
		"kind": {"const": "classifier"},
		"format": {"enum": ["gbtree", "logistic"]},
		"version": {"type": "string"},
		"feature_names": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string"}
		},
		"threshold": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
		"base_score": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
		"trees": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["nodes"],
				"properties": {
					"nodes": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["nodeid"],
							"properties": {
								"nodeid": {"type": "integer", "minimum": 0},
								"split": {"type": "integer", "minimum": 0},
								"split_condition": {"type": "number"},
								"yes": {"type": "integer", "minimum": 0},
								"no": {"type": "integer", "minimum": 0},
								"missing": {"type": "integer", "minimum": 0},
								"leaf": {"type": "number"}
							}
						}
					}
				}
			}
		},
		"coefficients": {"type": "array", "items": {"type": "number"}},
		"intercept": {"type": "number"}
	},
	"allOf": [
		{
			"if": {"properties": {"format": {"const": "gbtree"}}},
			"then": {"required": ["trees"]}
		},
		{
			"if": {"properties": {"format": {"const": "logistic"}}},
			"then": {"required": ["coefficients", "intercept"]}
		}
	]
}`

const scalerSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["kind", "format", "feature_names"],
	"properties": {
		"kind": {"const": "scaler"},
		"format": {"enum": ["standard", "minmax"]},
		"version": {"type": "string"},
		"feature_names": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string"}
		},
		"mean": {"type": "array", "items": {"type": "number"}},
		"scale": {"type": "array", "items": {"type": "number"}},
		"data_min": {"type": "array", "items": {"type": "number"}},
		"data_max": {"type": "array", "items": {"type": "number"}},
		"feature_range": {
			"type": "array",
			"minItems": 2,
			"maxItems": 2,
			"items": {"type": "number"}
		}
	},
	"allOf": [
		{
			"if": {"properties": {"format": {"const": "standard"}}},
			"then": {"required": ["mean", "scale"]}
		},
		{
			"if": {"properties": {"format": {"const": "minmax"}}},
			"then": {"required": ["data_min", "data_max"]}
		}
	]
}`
