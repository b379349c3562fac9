package schema

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()

	if got := len(s.Fields()); got != 11 {
		t.Errorf("fields = %d, want 11", got)
	}
	wantNumeric := []string{"cook time", "id", "popularity", "prep time", "yields"}
	got := s.NumericFields()
	if strings.Join(got, ",") != strings.Join(wantNumeric, ",") {
		t.Errorf("NumericFields() = %v, want %v", got, wantNumeric)
	}

	coll, ok := s.Collection(All)
	if !ok || coll != AllRecipesCollection {
		t.Errorf("Collection(all) = %q, %v", coll, ok)
	}
	coll, ok = s.Collection(Favourite)
	if !ok || coll != FavouritesCollection {
		t.Errorf("Collection(fav) = %q, %v", coll, ok)
	}
}

func TestKinds(t *testing.T) {
	s := Default()
	tests := []struct {
		field   string
		known   bool
		numeric bool
	}{
		{"id", true, true},
		{"cook time", true, true},
		{"name", true, false},
		{"meal types", true, false},
		{"what", false, false},
		{"cooktime", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if s.HasField(tt.field) != tt.known {
				t.Errorf("HasField = %v, want %v", !tt.known, tt.known)
			}
			if s.IsNumeric(tt.field) != tt.numeric {
				t.Errorf("IsNumeric = %v, want %v", !tt.numeric, tt.numeric)
			}
		})
	}
}

func TestHasScope(t *testing.T) {
	s := Default()
	if !s.HasScope("all") || !s.HasScope("fav") {
		t.Error("built-in scopes should be recognized")
	}
	if s.HasScope("all recipe") || s.HasScope("ALL") {
		t.Error("unexpected scope recognized")
	}
}

func TestNew_Invalid(t *testing.T) {
	scopes := map[Scope]string{All: "a"}
	tests := []struct {
		name   string
		scopes map[Scope]string
		fields map[string]Kind
		errSub string
	}{
		{"no scopes", nil, map[string]Kind{"id": Numeric}, "scope"},
		{"no fields", scopes, nil, "field"},
		{"no id", scopes, map[string]Kind{"name": Text}, `"id"`},
		{"empty collection", map[Scope]string{All: ""}, map[string]Kind{"id": Numeric}, "collection"},
		{"bad kind", scopes, map[string]Kind{"id": "float"}, "invalid kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.scopes, tt.fields)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error = %q, want substring %q", err, tt.errSub)
			}
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	fields := map[string]Kind{"id": Numeric}
	s, err := New(map[Scope]string{All: "a"}, fields)
	if err != nil {
		t.Fatal(err)
	}
	fields["name"] = Text
	if s.HasField("name") {
		t.Error("schema must not alias the caller's map")
	}
}
