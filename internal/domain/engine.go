package domain

import "time"

// AnnouncementResult is what the engine yields for an applicable incoming
// announcement.
type AnnouncementResult struct {
	PeerUserID UserID
	PeerKeys   PublicKeys
	Timestamp  time.Time
	UserData   string
}

// OutboundPayload is an encrypted message ready for the board, addressed
// under its seeker.
type OutboundPayload struct {
	Seeker Seeker
	Data   []byte
}

// BoardRead is a successfully decrypted message-board read. AckedSeekers
// lists our prior sends the peer has just confirmed receiving.
type BoardRead struct {
	Content      string
	Timestamp    time.Time
	SenderUserID UserID
	AckedSeekers []Seeker
}

// EngineConfig is accepted by the session engine at construction.
type EngineConfig struct {
	MaxAnnouncementAge  time.Duration
	MaxAnnouncementSkew time.Duration
	MaxMessageAge       time.Duration
	MaxMessageSkew      time.Duration
	MaxInactivity       time.Duration
	KeepAliveInterval   time.Duration
	MaxSessionLag       int
}

// SessionEngine is the opaque, stateful cryptographic session object for one
// owner. It is not safe for concurrent use; callers must serialize all calls
// for a given owner (see engine.Guard).
//
// Methods that can find no applicable result return (nil, nil) rather than an
// error: a stale or tampered announcement, a send with no active session, and
// a board read that fails authentication are all expected protocol outcomes,
// not failures.
type SessionEngine interface {
	// EstablishOutgoing produces announcement bytes that request or renew a
	// session with the peer identified by its public keys. userData rides
	// along as the announcement's free-text payload.
	EstablishOutgoing(peer PublicKeys, userData string) ([]byte, error)

	// FeedIncomingAnnouncement decodes and applies an announcement fetched
	// from the transport. Announcements outside the configured age/skew
	// window yield (nil, nil).
	FeedIncomingAnnouncement(data []byte) (*AnnouncementResult, error)

	// SendMessage encrypts plaintext for the peer. Yields (nil, nil) when no
	// active session exists.
	SendMessage(peer UserID, plaintext string) (*OutboundPayload, error)

	// FeedIncomingBoardRead decrypts a ciphertext fetched from the board.
	// Authentication failure yields (nil, nil); the caller must drop the
	// bytes and never retry them.
	FeedIncomingBoardRead(seeker Seeker, ciphertext []byte) (*BoardRead, error)

	// PeerStatus reports the coarse session state for the peer.
	PeerStatus(peer UserID) SessionStatus

	// DiscardPeer drops all session state for the peer.
	DiscardPeer(peer UserID)

	// Refresh returns the peers whose outstanding unacknowledged sends have
	// exceeded the keep-alive interval as of now.
	Refresh(now time.Time) []UserID

	// Serialize snapshots the full engine state for encrypted persistence.
	Serialize() ([]byte, error)
}
