// Package store holds the authoritative client-side chat snapshot: rooms,
// friends, and the current selection cursors.
//
// The snapshot is mutated in exactly three places, Apply (driven by inbound
// server events) and the two selection setters, and every mutation publishes
// a classified change on the trigger bus. All other methods are pure derived
// queries that return copies; the view layer never touches the snapshot
// directly.
//
// Methods are synchronous and guarded by one mutex: a query issued after a
// mutating call observes the fully mutated snapshot. Events must be applied
// in transport arrival order; the store performs no reordering of its own,
// so a room's message list is exactly the received sequence.
package store
