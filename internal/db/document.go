package db

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/recipeq/internal/domain/recipe"
)

// PrepareInsert checks the document id and stamps a fresh internal id.
// The returned document is a copy; the input is not modified.
func PrepareInsert(doc recipe.Document) (recipe.Document, error) {
	if doc.ID() == "" {
		return nil, ErrMissingDocumentID
	}
	out := doc.Clone()
	out[InternalIDField] = uuid.NewString()
	return out, nil
}

// ApplySet merges set into doc with $set semantics: listed fields are
// replaced, others kept. The id and the internal id never change.
func ApplySet(doc, set recipe.Document) recipe.Document {
	out := doc.Clone()
	for k, v := range set.Clone() {
		if k == InternalIDField || k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// EncodeDocument serializes a document for storage.
func EncodeDocument(doc recipe.Document) ([]byte, error) {
	data, err := json.Marshal(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a stored document.
func DecodeDocument(data []byte) (recipe.Document, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc, err := recipe.FromMap(m)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
