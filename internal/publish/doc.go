// Package publish builds and transmits the wire payloads a PlantLink
// node emits: telemetry documents and Home Assistant discovery-config
// documents.
//
// Payloads are insertion-ordered JSON objects. Serialization follows a
// measure-then-allocate discipline: every value is encoded once, the
// exact payload size is computed from the encoded parts, and the buffer
// is allocated at that size. There is no guessed or fixed-size buffer
// anywhere on the publish path.
//
// The Publisher borrows the active broker session from a SessionProvider
// (in practice conn.Manager) for the duration of one publish call and
// never owns or closes it. Publishing while the connection is inactive
// is a deliberate silent no-op: sequencing mistakes in the caller's loop
// are tolerated, not escalated.
package publish
