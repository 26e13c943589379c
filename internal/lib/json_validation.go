package lib

import (
	"context"
	"encoding/json"

	"github.com/qri-io/jsonschema"
)

// ValidateJSON validates a JSON raw message against a given JSON schema.
// It returns a list of validation errors if the JSON is invalid.
func ValidateJSON(content json.RawMessage, schemaString string) ([]jsonschema.KeyError, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(schemaString), rs); err != nil {
		return nil, err
	}

	return rs.ValidateBytes(context.Background(), content)
}

// CreatePostSchema is the schema a create-post request body must satisfy.
// Skills and image URLs are optional; everything a posting card displays is
// required.
func CreatePostSchema() string {
	return `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 200},
			"description": {"type": "string", "minLength": 1},
			"rate": {"type": "string", "minLength": 1},
			"location": {"type": "string", "minLength": 1},
			"skills": {"type": "array", "items": {"type": "string"}},
			"image_urls": {"type": "array", "items": {"type": "string", "format": "uri"}}
		},
		"required": ["title", "description", "rate", "location"]
	}`
}
