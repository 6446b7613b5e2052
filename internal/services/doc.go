// Package services defines shared utilities consumed by the pipeline
// coordinator and the fetch, transform, and listing collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp item keys, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (fetch, transform, listing) so the coordinator and CLI can tell them
//     apart with errors.Is.
//
// Use these helpers when wiring new collaborators so failure reporting and
// observability stay uniform across the pipeline.
package services
