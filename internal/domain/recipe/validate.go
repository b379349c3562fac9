package recipe

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/kailas-cloud/recipeq/internal/domain"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
)

const digitsPattern = "^[0-9]+$"

// Validator checks raw records against a JSON Schema derived from the field table.
type Validator struct {
	fields   schema.Schema
	compiled *gojsonschema.Schema
}

// NewValidator compiles the record schema for the given field table.
func NewValidator(s schema.Schema) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(jsonSchemaFor(s)))
	if err != nil {
		return nil, fmt.Errorf("compile recipe schema: %w", err)
	}
	return &Validator{fields: s, compiled: compiled}, nil
}

// Validate checks that every value is a string or list of strings and that
// numeric-kind fields hold digit strings. Unknown fields pass validation.
func (v *Validator) Validate(raw map[string]any) (Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("content of json is not a dict: %w", domain.ErrInvalidRecipe)
	}

	res, err := v.compiled.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w: %w", domain.ErrInvalidRecipe, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, desc := range res.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("incorrect value type in json (%s): %w",
			strings.Join(msgs, "; "), domain.ErrInvalidRecipe)
	}

	doc, err := FromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRecipe, err)
	}
	return doc, nil
}

// Known returns a copy of doc holding only recognized, non-empty fields.
func (v *Validator) Known(doc Document) Document {
	out := make(Document, len(doc))
	for k, val := range doc {
		if !v.fields.HasField(k) || doc.IsEmpty(k) {
			continue
		}
		out[k] = val
	}
	return out.Clone()
}

func jsonSchemaFor(s schema.Schema) map[string]any {
	stringOrList := map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
	props := make(map[string]any, len(s.Fields()))
	for _, f := range s.Fields() {
		if s.IsNumeric(f) {
			props[f] = map[string]any{"type": "string", "pattern": digitsPattern}
			continue
		}
		props[f] = stringOrList
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": stringOrList,
	}
}
