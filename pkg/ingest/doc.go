// Package ingest builds the initial movie dataset from OMDB search pages.
//
// The pipeline walks a fixed number of search pages for a fixed term, and for
// every identifier on a page performs one detail lookup. Calls are strictly
// sequential: detail lookups for a page follow that page's search call, in the
// order the provider listed them.
//
// Example usage:
//
//	client, _ := omdb.New(omdb.DefaultConfig(apiKey))
//	movies, err := ingest.New(client, ingest.DefaultConfig()).Run(ctx)
//
// The run is all or nothing: the first failed search or detail lookup aborts it
// and no partial list is returned. Persisting the result, and deciding whether
// a run is needed at all, is left to the caller.
package ingest
