// Command boardd is a minimal in-memory board server for local development:
// an append-only announcement log, addressable message slots, and a public
// key directory. Nothing is persisted.
package main
