// Package transport implements the board client: the HTTP face of the
// append-only announcement log and the addressable message-board slots.
package transport
