package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/recipeq/internal/db/memory"
	"github.com/kailas-cloud/recipeq/internal/domain"
	"github.com/kailas-cloud/recipeq/internal/domain/batch"
	domrecipe "github.com/kailas-cloud/recipeq/internal/domain/recipe"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
	reciperepo "github.com/kailas-cloud/recipeq/internal/repository/recipe"
)

// --- Mocks ---

type mockRepo struct {
	getResult domrecipe.Document
	getErr    error
	createErr error
	updateErr error
	deleteErr error
	listDocs  []domrecipe.Document
	listErr   error

	created    []domrecipe.Document
	updatedSet domrecipe.Document
	updated    bool
}

func (m *mockRepo) Get(_ context.Context, _, _ string) (domrecipe.Document, error) {
	return m.getResult, m.getErr
}
func (m *mockRepo) Create(_ context.Context, _ string, doc domrecipe.Document) error {
	m.created = append(m.created, doc)
	return m.createErr
}
func (m *mockRepo) Update(_ context.Context, _, _ string, set domrecipe.Document) error {
	m.updated = true
	m.updatedSet = set
	return m.updateErr
}
func (m *mockRepo) Delete(_ context.Context, _, _ string) error {
	return m.deleteErr
}
func (m *mockRepo) List(_ context.Context, _ string) ([]domrecipe.Document, error) {
	return m.listDocs, m.listErr
}

func newService(t *testing.T, repo Repository) *Service {
	t.Helper()
	v, err := domrecipe.NewValidator(schema.Default())
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	return New(repo, schema.Default(), v)
}

// --- Tests ---

func TestGet_EmptyID(t *testing.T) {
	_, err := newService(t, &mockRepo{}).Get(context.Background(), schema.All, "")
	if !errors.Is(err, domain.ErrInvalidRecipe) {
		t.Fatalf("expected ErrInvalidRecipe, got %v", err)
	}
}

func TestGet_UnknownScope(t *testing.T) {
	_, err := newService(t, &mockRepo{}).Get(context.Background(), schema.Scope("menu"), "1")
	if !errors.Is(err, domain.ErrObjectNotExist) {
		t.Fatalf("expected ErrObjectNotExist, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{getErr: domain.ErrRecipeNotFound}
	_, err := newService(t, repo).Get(context.Background(), schema.Favourite, "1")
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"nil body", nil},
		{"no id", map[string]any{"name": "Tea"}},
		{"empty id", map[string]any{"id": ""}},
		{"numeric field not digits", map[string]any{"id": "1", "yields": "two"}},
		{"number value", map[string]any{"id": "1", "name": 5}},
		{"nested object", map[string]any{"id": "1", "extra": map[string]any{"a": "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			_, err := newService(t, repo).Create(context.Background(), schema.All, tt.raw)
			if !errors.Is(err, domain.ErrInvalidRecipe) {
				t.Fatalf("expected ErrInvalidRecipe, got %v", err)
			}
			if len(repo.created) != 0 {
				t.Error("invalid record reached the repository")
			}
		})
	}
}

func TestCreate_DropsUnknownAndEmpty(t *testing.T) {
	repo := &mockRepo{}
	id, err := newService(t, repo).Create(context.Background(), schema.All, map[string]any{
		"id":          "42",
		"name":        "Tea",
		"description": "",
		"colour":      "green",
		"ingredients": []any{"water", "leaves"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "42" {
		t.Errorf("id = %q", id)
	}
	got := repo.created[0]
	if _, ok := got["colour"]; ok {
		t.Error("unknown attribute kept")
	}
	if _, ok := got["description"]; ok {
		t.Error("empty attribute kept")
	}
	if list, _ := got.Values("ingredients"); len(list) != 2 {
		t.Errorf("ingredients = %v", list)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo := &mockRepo{createErr: domain.ErrRecipeExists}
	_, err := newService(t, repo).Create(context.Background(), schema.All, map[string]any{"id": "1"})
	if !errors.Is(err, domain.ErrRecipeExists) {
		t.Fatalf("expected ErrRecipeExists, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		raw     map[string]any
		repo    *mockRepo
		wantErr error
		wantSet domrecipe.Document
	}{
		{
			name:    "non-numeric id",
			id:      "abc",
			raw:     map[string]any{"name": "x"},
			repo:    &mockRepo{},
			wantErr: domain.ErrInvalidRecipe,
		},
		{
			name:    "missing recipe",
			id:      "1",
			raw:     map[string]any{"name": "x"},
			repo:    &mockRepo{getErr: domain.ErrRecipeNotFound},
			wantErr: domain.ErrRecipeNotFound,
		},
		{
			name:    "invalid body",
			id:      "1",
			raw:     map[string]any{"cook time": "soon"},
			repo:    &mockRepo{getResult: domrecipe.Document{"id": "1"}},
			wantErr: domain.ErrInvalidRecipe,
		},
		{
			name:    "body id ignored",
			id:      "1",
			raw:     map[string]any{"id": "not-a-number", "name": "New", "bogus": "x", "description": ""},
			repo:    &mockRepo{getResult: domrecipe.Document{"id": "1"}},
			wantSet: domrecipe.Document{"name": "New"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newService(t, tt.repo).Update(context.Background(), schema.All, tt.id, tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				if tt.repo.updated {
					t.Error("repository updated on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tt.repo.updatedSet) != len(tt.wantSet) {
				t.Fatalf("set = %v, want %v", tt.repo.updatedSet, tt.wantSet)
			}
			for k, v := range tt.wantSet {
				if tt.repo.updatedSet[k] != v {
					t.Errorf("set[%q] = %v, want %v", k, tt.repo.updatedSet[k], v)
				}
			}
		})
	}
}

func TestUpdate_NothingToSet(t *testing.T) {
	repo := &mockRepo{getResult: domrecipe.Document{"id": "1"}}
	if err := newService(t, repo).Update(context.Background(), schema.All, "1", map[string]any{"other": "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updated {
		t.Error("empty set should not reach the repository")
	}
}

func TestDelete(t *testing.T) {
	if err := newService(t, &mockRepo{}).Delete(context.Background(), schema.Favourite, "x1"); !errors.Is(err, domain.ErrInvalidRecipe) {
		t.Errorf("expected ErrInvalidRecipe, got %v", err)
	}
	repo := &mockRepo{deleteErr: domain.ErrRecipeNotFound}
	if err := newService(t, repo).Delete(context.Background(), schema.Favourite, "1"); !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestImportExport_WithMemoryStore(t *testing.T) {
	svc := newService(t, reciperepo.New(memory.NewStore()))
	ctx := context.Background()

	res, err := svc.Import(ctx, schema.All, []map[string]any{
		{"id": "1", "name": "Tea"},
		{"id": "2", "name": "Soup", "cook time": "30"},
		{"id": "1", "name": "Tea again"},
		{"name": "no id"},
	})
	if !errors.Is(err, domain.ErrInvalidRecipe) {
		t.Fatalf("expected joined ErrInvalidRecipe, got %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 1 {
		t.Errorf("result = %+v", res)
	}
	wantStatus := []batch.ItemStatus{batch.StatusOK, batch.StatusOK, batch.StatusSkipped, batch.StatusError}
	if len(res.Items) != len(wantStatus) {
		t.Fatalf("items = %d, want %d", len(res.Items), len(wantStatus))
	}
	for i, want := range wantStatus {
		if got := res.Items[i].Status(); got != want {
			t.Errorf("item %d status = %q, want %q", i, got, want)
		}
	}
	if res.Items[2].ID() != "1" || res.Items[3].ID() != "" {
		t.Errorf("item ids = %q, %q", res.Items[2].ID(), res.Items[3].ID())
	}

	if _, err := svc.Create(ctx, schema.Favourite, map[string]any{"id": "2", "name": "Soup"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(out[schema.All]) != 2 || len(out[schema.Favourite]) != 1 {
		t.Errorf("export = %v", out)
	}
	if name, _ := out[schema.All][0].Scalar("name"); name != "Tea" {
		t.Errorf("first recipe name = %q, duplicate must not overwrite", name)
	}
}

func TestExport_EmptyCollectionsAreEmptyLists(t *testing.T) {
	out, err := newService(t, &mockRepo{}).Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, sc := range []schema.Scope{schema.All, schema.Favourite} {
		if out[sc] == nil {
			t.Errorf("scope %s: nil list", sc)
		}
	}
}

func TestImport_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService(t, &mockRepo{}).Import(ctx, schema.All, []map[string]any{{"id": "1"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
