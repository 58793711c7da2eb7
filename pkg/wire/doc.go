// Package wire defines the chat wire contract: the two closed event unions
// exchanged between client and server, their request/response payloads, and
// the field-level validation rules applied before anything is transmitted.
//
// # Wire Format
//
// Every WebSocket binary frame carries exactly one event, serialized as an
// externally tagged JSON value:
//
//   - unit variants are a bare JSON string:
//
//     "Initialization"
//
//   - payload variants are a single-key object, keyed by the variant tag:
//
//     {"SendMessage":{"room_id":1,"content":"hi","kind":"text"}}
//
//   - the server Close variant carries a bare string reason:
//
//     {"Close":"session expired"}
//
// Field names are snake_case and timestamps are RFC 3339 UTC. The format is
// fixed by the deployed server; do not change tags or field names.
//
// # Validation
//
// Request payloads are validated locally with Validate before send. A payload
// that fails validation is a caller error and must never reach the transport.
// String bounds count runes, not bytes; id lists must be positive and
// duplicate-free.
package wire
