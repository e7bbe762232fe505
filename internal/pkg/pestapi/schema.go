package pestapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const serviceItemSchema = `{
	"type": "object",
	"required": ["id", "title"],
	"properties": {
		"id": {"type": ["string", "integer"]},
		"title": {"type": "string"},
		"description": {"type": ["string", "null"]},
		"price": {"anyOf": [
			{"type": ["number", "null"]},
			{"type": "string", "pattern": "^\\s*-?[0-9]+(\\.[0-9]+)?\\s*$"}
		]},
		"service_type": {"type": ["string", "null"]},
		"pest_types": {"type": ["array", "null"], "items": {"type": "string"}},
		"image": {"type": ["string", "null"]},
		"is_active": {"type": ["boolean", "null"]}
	}
}`

const bookingItemSchema = `{
	"type": "object",
	"required": ["id", "status"],
	"properties": {
		"id": {"type": ["string", "integer"]},
		"status": {"enum": ["pending", "approved", "cancelled"]},
		"booking_notes": {"type": ["string", "null"]},
		"created_at": {"type": ["string", "null"]},
		"service": {
			"type": ["object", "null"],
			"properties": {"title": {"type": ["string", "null"]}}
		},
		"user": {
			"type": ["object", "null"],
			"properties": {"name": {"type": ["string", "null"]}}
		}
	}
}`

var (
	serviceListSchema = mustCompile("service-list.json", `{
		"oneOf": [
			{"type": "array", "items": `+serviceItemSchema+`},
			{
				"type": "object",
				"required": ["services"],
				"properties": {"services": {"type": "array", "items": `+serviceItemSchema+`}}
			}
		]
	}`)

	bookingListSchema = mustCompile("booking-list.json", `{
		"type": "object",
		"required": ["bookings"],
		"properties": {"bookings": {"type": "array", "items": `+bookingItemSchema+`}}
	}`)

	suggestionSchema = mustCompile("suggestions.json", `{
		"type": "object",
		"required": ["services"],
		"properties": {"services": {"type": "array", "items": `+serviceItemSchema+`}}
	}`)

	analysisSchema = mustCompile("analysis.json", `{
		"type": "object",
		"required": ["prediction"],
		"properties": {
			"prediction": {"type": "string"},
			"details": {
				"type": ["array", "null"],
				"items": {
					"type": "object",
					"required": ["description", "score"],
					"properties": {
						"description": {"type": "string"},
						"score": {"type": "number"}
					}
				}
			}
		}
	}`)
)

func mustCompile(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

// decodeValidated checks body against schema before decoding it into out.
func decodeValidated(op string, body []byte, schema *jsonschema.Schema, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var instance interface{}
	if err := dec.Decode(&instance); err != nil {
		return &SchemaError{Op: op, Err: err}
	}

	if err := schema.Validate(instance); err != nil {
		return &SchemaError{Op: op, Issues: schemaIssues(err), Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &SchemaError{Op: op, Err: err}
	}
	return nil
}

func schemaIssues(err error) []string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}

	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			location := strings.TrimSpace(node.InstanceLocation)
			if location == "" {
				location = "/"
			}
			issues = append(issues, location+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}
