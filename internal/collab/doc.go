// Package collab holds the in-memory state components of the real-time
// collaboration coordinator.
//
// The package implements:
//   - Registry: live sessions and the identity bound to each
//   - Rooms: workflow ID to session-set membership
//   - Presence: derived distinct-user view per room
//   - Cursors: last-write-wins pointer positions per (workflow, user)
//   - Locks: exclusive per-node edit locks with holder identity
//   - Coordinator: one handle bundling the components above
//
// Each registry is owned exclusively by its component and guarded by its
// own mutex; cross-component effects happen only through the exported
// operations, which keeps invariant enforcement (one lock per node,
// leave reverses join) centralized. State lives only in process memory;
// nothing here touches the network or a database.
package collab
