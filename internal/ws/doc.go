// Package ws provides the WebSocket transport for the collaboration
// coordinator.
//
// The package implements:
//   - Message: the closed, tagged set of inbound and outbound wire events
//   - Client: one connection with a buffered send channel and write pump
//   - Router: fan-out to a room's live membership or to all of a user's
//     sessions
//   - Gateway: handshake authentication, per-connection event dispatch,
//     and disconnect cleanup across the collaboration components
//
// Inbound events for one connection are handled sequentially by its read
// pump, so a client's own sequence of lock and cursor events is applied in
// the order sent. Cross-connection interleaving is made safe by the
// collaboration components' own locks.
package ws
