package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recipeq/internal/domain/batch"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
	logpkg "github.com/kailas-cloud/recipeq/internal/logger"
)

var importFlags struct {
	scope string
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load recipes from a JSON file",
	Long: `Load recipes from a JSON file into a scope.

The file holds one recipe object, an array of them, or a dump written by
"recipectl export"; a dump restores every section to its own scope and
ignores --scope. Duplicate ids are skipped.

Examples:
  recipectl import pancakes.json --scope fav
  recipectl import recipes.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFlags.scope, "scope", "s", string(schema.All), "target scope")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := logpkg.ContextWithLogger(cmd.Context(), a.Logger)

	batches := splitImport(v, schema.Scope(importFlags.scope), a.Schema.Scopes())
	for sc := range batches {
		if !a.Schema.HasScope(sc) {
			return fmt.Errorf("unknown scope %q", sc)
		}
	}
	for _, sc := range a.Schema.Scopes() {
		raws, ok := batches[sc]
		if !ok {
			continue
		}
		res, err := a.Recipes.Import(ctx, sc, raws)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: inserted %d, skipped %d\n", sc, res.Inserted, res.Skipped)
		rejected := 0
		for _, item := range res.Items {
			if item.Status() != batch.StatusError {
				continue
			}
			rejected++
			fmt.Fprintf(cmd.ErrOrStderr(), "  record %d (id %q): %v\n", item.Index(), item.ID(), item.Err())
		}
		if rejected > 0 {
			return fmt.Errorf("import into %s: %d records rejected", sc, rejected)
		}
		if err != nil {
			return fmt.Errorf("import into %s: %w", sc, err)
		}
	}
	return nil
}

// splitImport groups the decoded file by target scope.
// Entries that are not objects stay as nil maps so validation reports them.
func splitImport(v any, scope schema.Scope, scopes []schema.Scope) map[schema.Scope][]map[string]any {
	if obj, ok := v.(map[string]any); ok && isDump(obj, scopes) {
		out := make(map[schema.Scope][]map[string]any, len(obj))
		for _, sc := range scopes {
			if section, ok := obj[sectionName(sc)]; ok {
				out[sc] = records(section)
			}
		}
		return out
	}
	return map[schema.Scope][]map[string]any{scope: records(v)}
}

func isDump(obj map[string]any, scopes []schema.Scope) bool {
	if len(obj) == 0 {
		return false
	}
	names := make(map[string]struct{}, len(scopes))
	for _, sc := range scopes {
		names[sectionName(sc)] = struct{}{}
	}
	for k, v := range obj {
		if _, ok := names[k]; !ok {
			return false
		}
		if _, isList := v.([]any); !isList {
			return false
		}
	}
	return true
}

func records(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		list = []any{v}
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m, _ := item.(map[string]any)
		out = append(out, m)
	}
	return out
}
