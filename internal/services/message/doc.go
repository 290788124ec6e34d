// Package message is the steady-state message path once a session exists.
//
// It encrypts and publishes outgoing messages, queues sends that race ahead
// of session establishment as WAITING_SESSION, flushes that queue when a
// session becomes active, and deduplicates the redelivered incoming messages
// a best-effort transport is expected to produce.
package message
