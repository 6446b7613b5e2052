// Package fetch provides the fetch collaborators the pipeline uses to
// retrieve raw item bytes: an HTTP client, a local file reader that holds a
// shared advisory lock while reading, and a Router that picks one by locator
// scheme.
//
// Fetchers block for the whole retrieval; the pipeline checks cancellation
// before and after each call. Failures are tagged with services.ErrFetch.
package fetch
