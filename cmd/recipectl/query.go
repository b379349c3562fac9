package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	logpkg "github.com/kailas-cloud/recipeq/internal/logger"
)

var errNoMatches = errors.New("result is not found in database")

var queryCmd = &cobra.Command{
	Use:   "query <query>",
	Short: "Evaluate a recipe query",
	Long: `Evaluate a query and print the matching recipes as a JSON array.

A query is one or more clauses "<scope>.<field>: <value>" joined by AND or OR.
Numeric fields accept NOT, > and < before the value.

Examples:
  recipectl query "all.name: chocolate"
  recipectl query "fav.cook time: < 30 OR fav.prep time: < 10"

Exits non-zero when nothing matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := logpkg.ContextWithLogger(cmd.Context(), a.Logger)

	docs, err := a.Search.Search(ctx, args[0])
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if len(docs) == 0 {
		return errNoMatches
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
