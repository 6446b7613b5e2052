// Package preflight provides readiness checks for the filesystem paths,
// listing source and collaborators Lightbox depends on.
//
// These checks run in two contexts:
//   - `lightbox run` calls RunAll before loading the listing and refuses to
//     start when a required check fails.
//   - `lightbox check` prints every result as a table.
//
// Checks for disabled features (file logging, listing watch) are skipped.
package preflight
