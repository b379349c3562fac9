// Package schema holds the read-only table of scopes and recognized fields.
package schema

import (
	"fmt"
	"sort"
)

// Kind is the content kind of a field.
type Kind string

// Field kinds.
const (
	Text    Kind = "text"
	Numeric Kind = "numeric"
)

// Scope names a queryable object bound to one document collection.
type Scope string

// Built-in scopes.
const (
	All       Scope = "all"
	Favourite Scope = "fav"
)

// Collection names bound to the built-in scopes.
const (
	AllRecipesCollection = "all_recipes"
	FavouritesCollection = "favourites"
)

// IDField is the field that identifies a recipe within a collection.
const IDField = "id"

// Schema is an immutable table of scopes and fields. Build it once and share it.
type Schema struct {
	scopes map[Scope]string
	fields map[string]Kind
}

// New validates and creates a Schema.
// scopes maps each scope to its collection; fields maps each recognized field to its kind.
func New(scopes map[Scope]string, fields map[string]Kind) (Schema, error) {
	if len(scopes) == 0 {
		return Schema{}, fmt.Errorf("at least one scope is required")
	}
	if len(fields) == 0 {
		return Schema{}, fmt.Errorf("at least one field is required")
	}
	if _, ok := fields[IDField]; !ok {
		return Schema{}, fmt.Errorf("field %q is required", IDField)
	}

	s := Schema{
		scopes: make(map[Scope]string, len(scopes)),
		fields: make(map[string]Kind, len(fields)),
	}
	for sc, coll := range scopes {
		if sc == "" {
			return Schema{}, fmt.Errorf("scope name is required")
		}
		if coll == "" {
			return Schema{}, fmt.Errorf("collection for scope %q is required", sc)
		}
		s.scopes[sc] = coll
	}
	for name, k := range fields {
		if name == "" {
			return Schema{}, fmt.Errorf("field name is required")
		}
		if k != Text && k != Numeric {
			return Schema{}, fmt.Errorf("invalid kind %q for field %q", k, name)
		}
		s.fields[name] = k
	}
	return s, nil
}

// Default returns the recipe schema: scopes all/fav and the eleven recipe attributes.
func Default() Schema {
	s, err := New(
		map[Scope]string{
			All:       AllRecipesCollection,
			Favourite: FavouritesCollection,
		},
		map[string]Kind{
			"id":           Numeric,
			"image url":    Text,
			"yields":       Numeric,
			"prep time":    Numeric,
			"cook time":    Numeric,
			"meal types":   Text,
			"name":         Text,
			"description":  Text,
			"ingredients":  Text,
			"instructions": Text,
			"popularity":   Numeric,
		},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// Collection returns the collection bound to a scope.
func (s Schema) Collection(sc Scope) (string, bool) {
	c, ok := s.scopes[sc]
	return c, ok
}

// HasScope reports whether the scope is recognized.
func (s Schema) HasScope(sc Scope) bool {
	_, ok := s.scopes[sc]
	return ok
}

// Kind returns the kind of a recognized field.
func (s Schema) Kind(field string) (Kind, bool) {
	k, ok := s.fields[field]
	return k, ok
}

// HasField reports whether the field is recognized.
func (s Schema) HasField(field string) bool {
	_, ok := s.fields[field]
	return ok
}

// IsNumeric reports whether the field is recognized and numeric-kind.
func (s Schema) IsNumeric(field string) bool {
	return s.fields[field] == Numeric
}

// Fields returns the recognized field names, sorted.
func (s Schema) Fields() []string {
	out := make([]string, 0, len(s.fields))
	for f := range s.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// NumericFields returns the numeric-kind field names, sorted.
func (s Schema) NumericFields() []string {
	var out []string
	for f, k := range s.fields {
		if k == Numeric {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// Scopes returns the recognized scopes, sorted.
func (s Schema) Scopes() []Scope {
	out := make([]Scope, 0, len(s.scopes))
	for sc := range s.scopes {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
