package domain

import "context"

// SendOutcome is the result of an announcement publish attempt. The
// announcement path never returns raw errors to its callers; failures are
// captured here so the caller can decide between retry and escalation.
type SendOutcome struct {
	Success bool
	Counter uint64
	Err     error
}

// AnnouncementService drives session establishment and renewal through the
// announcement log.
type AnnouncementService interface {
	// SendAnnouncement produces and publishes an announcement for the
	// contact's discussion. It never returns an error; failures are captured
	// in the outcome and the discussion is marked SEND_FAILED with the
	// announcement bytes retained for retry.
	SendAnnouncement(ctx context.Context, owner, contact UserID, userData string) SendOutcome

	// ResendAnnouncements retries the retained announcement of each
	// SEND_FAILED discussion, escalating to the renewal-needed callback once
	// a discussion has been failing longer than the broken threshold.
	ResendAnnouncements(ctx context.Context, owner UserID, discussions []Discussion)

	// FetchAndProcessAnnouncements pulls new log entries past the stored
	// cursor, persists them as pending, and applies the pending queue in
	// counter order.
	FetchAndProcessAnnouncements(ctx context.Context, owner UserID) error
}

// MessageService is the steady-state message path plus the waiting-session
// queue.
type MessageService interface {
	// SendMessage encrypts and publishes msg when the peer session is
	// Active. When it is not, the message is persisted WAITING_SESSION and
	// that status is returned with a nil error: queuing is a deliberate
	// non-error outcome.
	SendMessage(ctx context.Context, msg *Message) (MessageStatus, error)

	// ProcessWaitingMessages flushes the peer's WAITING_SESSION queue in
	// original order and returns how many messages reached SENT. It is the
	// required response to the session-became-active event.
	ProcessWaitingMessages(ctx context.Context, owner, peer UserID) (int, error)

	// FindMessageBySeeker resolves a reply reference. It returns nil when the
	// original message is absent; callers degrade gracefully.
	FindMessageBySeeker(owner UserID, seeker Seeker) (*Message, error)

	// ProcessBoardRead decrypts and applies a ciphertext fetched from the
	// board. Authentication failure and duplicate deliveries both yield
	// (nil, nil).
	ProcessBoardRead(ctx context.Context, owner UserID, seeker Seeker, ciphertext []byte) (*Message, error)

	// MarkRead flips the pair's unread incoming messages to READ and clears
	// the discussion's unread counter.
	MarkRead(owner, contact UserID) error
}

// RefreshService is the periodic liveness sweep over ACTIVE discussions.
type RefreshService interface {
	Sweep(ctx context.Context, owner UserID) error
}

// DiscussionService composes the announcement and message services behind
// the user-facing discussion operations.
type DiscussionService interface {
	Initialize(ctx context.Context, owner UserID, contact Contact, message string) (*Discussion, error)
	Accept(ctx context.Context, d *Discussion) error
	Refuse(ctx context.Context, d *Discussion) error
	Remove(ctx context.Context, d *Discussion) error
	IsStableState(d *Discussion) bool
}
