package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	domrecipe "github.com/kailas-cloud/recipeq/internal/domain/recipe"
	"github.com/kailas-cloud/recipeq/internal/domain/schema"
	logpkg "github.com/kailas-cloud/recipeq/internal/logger"
)

// dumpSections names the top-level keys of a dump file per scope.
var dumpSections = map[schema.Scope]string{
	schema.All:       "all recipes",
	schema.Favourite: "favourites",
}

func sectionName(sc schema.Scope) string {
	if name, ok := dumpSections[sc]; ok {
		return name
	}
	return string(sc)
}

var exportFlags struct {
	out string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every collection to a JSON dump",
	Long: `Write all recipes of every scope to one JSON object:

  {"all recipes": [...], "favourites": [...]}

The dump can be loaded back with "recipectl import".`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := logpkg.ContextWithLogger(cmd.Context(), a.Logger)

	byScope, err := a.Recipes.Export(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	dump := make(map[string][]domrecipe.Document, len(byScope))
	total := 0
	for sc, docs := range byScope {
		dump[sectionName(sc)] = docs
		total += len(docs)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportFlags.out != "" {
		f, err := os.Create(exportFlags.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	if exportFlags.out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d recipes to %s\n", total, exportFlags.out)
	}
	return nil
}
