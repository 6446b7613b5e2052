// Package main hosts the Lightbox CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, builds the listing loader
// and stage collaborators, and drives the pipeline coordinator with a
// simulated scrolling viewport. It also exposes listing inspection,
// environment checks and configuration scaffolding.
//
// Keep this package lean: pipeline behaviour lives in internal/pipeline and
// the collaborators in their own packages; commands here only wire and
// render.
package main
