package recipe

import (
	"fmt"
	"sort"
)

// Document is a flat recipe record keyed by field name.
// Every value is either a string or a []string.
type Document map[string]any

// FromMap normalizes decoded JSON into a Document.
// Lists of strings are converted from []any; any other value type is rejected.
func FromMap(m map[string]any) (Document, error) {
	doc := make(Document, len(m))
	for k, v := range m {
		switch tv := v.(type) {
		case string:
			doc[k] = tv
		case []string:
			doc[k] = append([]string(nil), tv...)
		case []any:
			list := make([]string, 0, len(tv))
			for i, item := range tv {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("field %q item %d: expected string, got %T", k, i, item)
				}
				list = append(list, s)
			}
			doc[k] = list
		default:
			return nil, fmt.Errorf("field %q: expected string or list, got %T", k, v)
		}
	}
	return doc, nil
}

// ID returns the recipe id, or "" if absent.
func (d Document) ID() string {
	s, _ := d.Scalar("id")
	return s
}

// Scalar returns the string value of a field. Lists are not scalars.
func (d Document) Scalar(field string) (string, bool) {
	s, ok := d[field].(string)
	return s, ok
}

// Values returns the field as a list: a scalar yields one element.
func (d Document) Values(field string) ([]string, bool) {
	switch v := d[field].(type) {
	case string:
		return []string{v}, true
	case []string:
		return v, true
	default:
		return nil, false
	}
}

// IsEmpty reports whether the field is absent, "" or an empty list.
func (d Document) IsEmpty(field string) bool {
	switch v := d[field].(type) {
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	default:
		return true
	}
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	c := make(Document, len(d))
	for k, v := range d {
		if list, ok := v.([]string); ok {
			c[k] = append([]string(nil), list...)
			continue
		}
		c[k] = v
	}
	return c
}

// Without returns a copy lacking the given fields.
func (d Document) Without(fields ...string) Document {
	c := d.Clone()
	for _, f := range fields {
		delete(c, f)
	}
	return c
}

// Keys returns the field names, sorted.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
