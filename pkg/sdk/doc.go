// Package recipeq embeds the recipe store and query engine in a Go program.
//
//	client, _ := recipeq.New(ctx, recipeq.WithSQLite("recipes.db"))
//	defer client.Close()
//
//	_, _ = client.Recipes(recipeq.All).Create(ctx, recipeq.Recipe{
//	    "id": "101", "name": "Tomato Soup", "cook time": "25",
//	})
//	soups, _ := client.Query(ctx, "all.name: soup AND all.cook time: < 30")
//
// Queries use the same syntax as the HTTP API; failures wrap one of the
// exported Err* values and can be checked with errors.Is.
package recipeq
