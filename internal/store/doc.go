// Package store persists the delivery layer's entities in a local sqlite
// database and keeps session-engine state in passphrase-encrypted blobs on
// disk. The database is the single source of truth; there is no cache layer
// in front of it.
package store
