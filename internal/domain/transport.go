package domain

import "context"

// AnnouncementRecord is one entry of the public append-only announcement log.
type AnnouncementRecord struct {
	Counter uint64 `json:"counter"`
	Data    []byte `json:"data"`
}

// Transport is how we talk to the store-and-forward network, all with
// context. Every operation is fallible; callers catch and report failures
// rather than letting them propagate unhandled. Retry/backoff is the
// transport implementation's concern, not the caller's.
type Transport interface {
	// FetchAnnouncements returns log entries with counters greater than since.
	FetchAnnouncements(ctx context.Context, since uint64) ([]AnnouncementRecord, error)

	// SendAnnouncement appends to the log and returns the assigned counter.
	SendAnnouncement(ctx context.Context, data []byte) (uint64, error)

	// FetchMessage reads the board slot addressed by seeker. The second
	// return is false when the slot is empty.
	FetchMessage(ctx context.Context, seeker Seeker) ([]byte, bool, error)

	// SendMessage writes an encrypted payload into the slot addressed by
	// seeker.
	SendMessage(ctx context.Context, seeker Seeker, data []byte) error

	// FetchPublicKey looks up a participant's published key material.
	FetchPublicKey(ctx context.Context, user UserID) (PublicKeys, error)

	// PostPublicKey publishes our key material under our user id.
	PostPublicKey(ctx context.Context, user UserID, keys PublicKeys) error
}
