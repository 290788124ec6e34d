package domain

import "time"

// DiscussionStore persists per-peer discussion state.
type DiscussionStore interface {
	SaveDiscussion(d *Discussion) error
	DiscussionByPeer(owner, contact UserID) (*Discussion, bool, error)
	DiscussionsByStatus(owner UserID, status DiscussionStatus) ([]Discussion, error)
	DeleteDiscussion(owner, contact UserID) error
}

// ContactStore persists known peers.
type ContactStore interface {
	SaveContact(c *Contact) error
	ContactByUserID(owner, user UserID) (*Contact, bool, error)
	Contacts(owner UserID) ([]Contact, error)
	CountContactsWithNamePrefix(owner UserID, prefix string) (int64, error)
	DeleteContact(owner, user UserID) error
}

// MessageStore persists messages and answers the delivery-layer queries.
type MessageStore interface {
	SaveMessage(m *Message) error
	MessageBySeeker(owner UserID, seeker Seeker) (*Message, bool, error)

	// MessagesByStatus returns the owner's messages to contact in the given
	// status, ordered by timestamp ascending (original send order).
	MessagesByStatus(owner, contact UserID, status MessageStatus) ([]Message, error)

	// HasRecentIncoming reports whether an INCOMING message with identical
	// content exists for the pair with a timestamp within +-window of around.
	HasRecentIncoming(owner, contact UserID, content string, around time.Time, window time.Duration) (bool, error)

	// MarkDelivered flips the owner's SENT messages addressed under the given
	// seekers to DELIVERED and returns how many rows changed.
	MarkDelivered(owner UserID, seekers []Seeker) (int64, error)

	// MarkRead flips the pair's unread INCOMING messages to READ.
	MarkRead(owner, contact UserID) error

	DeleteMessages(owner, contact UserID) error
}

// AnnouncementStore persists the fetched-but-unprocessed announcement queue
// and the per-owner transport cursor.
type AnnouncementStore interface {
	// SavePendingAnnouncement upserts by (owner, counter) so a re-fetch of an
	// already-stored entry is idempotent.
	SavePendingAnnouncement(p *PendingAnnouncement) error

	// PendingAnnouncements returns the owner's queue ordered by counter
	// ascending.
	PendingAnnouncements(owner UserID) ([]PendingAnnouncement, error)

	DeletePendingAnnouncement(id uint) error

	// MarkAnnouncementProcessed flags an applied entry retained above a
	// pinned cursor so it is never re-fed to the engine.
	MarkAnnouncementProcessed(id uint) error

	Cursor(owner UserID) (uint64, error)

	// AdvanceCursor moves the cursor forward; a counter at or below the
	// stored one is a no-op.
	AdvanceCursor(owner UserID, counter uint64) error
}

// StateStore keeps encrypted-at-rest engine state blobs, one per named
// owner session, each under its own password-derived key. Independent
// password-keyed sessions coexist in one physical store.
type StateStore interface {
	// CreateState seals raw under passphrase for a new named session. It
	// fails if the name is already taken.
	CreateState(name, passphrase string, raw []byte) error

	// UnlockState opens the named blob. A wrong passphrase or corrupted blob
	// is an error, never garbage plaintext.
	UnlockState(name, passphrase string) ([]byte, error)

	// SaveState reseals raw over an existing named session.
	SaveState(name, passphrase string, raw []byte) error
}
