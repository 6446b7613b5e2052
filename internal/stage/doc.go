// Package stage defines the contracts the pipeline needs from its external
// collaborators, the fetch primitive and the transform primitive, plus a
// small readiness report used by `lightbox check`.
//
// The pipeline depends only on these interfaces; concrete HTTP/file fetchers
// and the sepia filter live in their own packages.
package stage
