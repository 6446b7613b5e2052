// Package api serves a read-only HTTP view of a running pipeline.
//
// The router exposes item snapshots, aggregate stats and finished artifacts so
// a browser or script can watch progress while `lightbox run --listen` drives
// the viewport. Nothing here mutates the coordinator.
package api
