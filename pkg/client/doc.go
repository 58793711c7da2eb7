// Package client maintains the persistent WebSocket session with the chat
// server.
//
// A Manager owns the connection lifecycle: it dials, hands every decoded
// server event to the store in arrival order, and queues outbound client
// events on a bounded channel drained by a writer goroutine. Transport
// failures reconnect with a backoff delay up to a consecutive-failure limit;
// hitting the limit, or a server-initiated Close event, tears the session
// down and fires the force-logout hook.
package client
