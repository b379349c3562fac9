// recipectl queries, imports and exports recipes without going through the HTTP API.
//
// Usage:
//
//	recipectl query "all.cook time: < 30 AND all.name: soup"
//	recipectl import recipes.json --scope fav
//	recipectl export --out recipes.json
package main

func main() {
	Execute()
}
