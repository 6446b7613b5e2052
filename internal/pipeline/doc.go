// Package pipeline coordinates the two-stage fetch/transform flow that sits
// behind a scrolling viewport.
//
// Items are loaded once into a Store and addressed by position key. Each
// stage has its own serialized Queue, so at most one fetch and one transform
// execute at a time. A Tracker records the in-flight unit for every
// (stage, key) pair and is the single-writer guard for item fields: only the
// unit that still owns its tracker entry may commit a result.
//
// The Coordinator owns all of it behind one mutex. The presentation layer
// drives it with Reconcile (visible set changed or viewport settled) and the
// InteractionBegan/InteractionEnded pair, and receives row-changed callbacks
// on a dedicated notification lane that never runs under the coordinator
// lock, so callbacks may call back into the Coordinator.
//
// Cancellation is cooperative. Units check their cancelled flag before and
// after the blocking collaborator call, and the coordinator re-checks it when
// committing, so a cancelled unit never mutates an item or notifies.
package pipeline
