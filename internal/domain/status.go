package domain

// DiscussionDirection records which side initiated a discussion.
type DiscussionDirection string

const (
	DirectionInitiated DiscussionDirection = "INITIATED"
	DirectionReceived  DiscussionDirection = "RECEIVED"
)

// DiscussionStatus is the lifecycle state of a discussion.
type DiscussionStatus string

const (
	DiscussionPending    DiscussionStatus = "PENDING"
	DiscussionActive     DiscussionStatus = "ACTIVE"
	DiscussionSendFailed DiscussionStatus = "SEND_FAILED"
	DiscussionClosed     DiscussionStatus = "CLOSED"
)

// MessageType distinguishes user text from protocol keep-alives.
type MessageType string

const (
	MessageTypeText      MessageType = "TEXT"
	MessageTypeKeepAlive MessageType = "KEEP_ALIVE"
)

// MessageDirection records whether a message was sent or received locally.
type MessageDirection string

const (
	MessageIncoming MessageDirection = "INCOMING"
	MessageOutgoing MessageDirection = "OUTGOING"
)

// MessageStatus is the delivery state of a message.
//
// Outgoing messages move SENDING -> (WAITING_SESSION | SENT | FAILED).
// WAITING_SESSION -> SENT is the only resumption path, driven by the
// session-became-active event or an explicit sweep.
type MessageStatus string

const (
	MessageSending        MessageStatus = "SENDING"
	MessageWaitingSession MessageStatus = "WAITING_SESSION"
	MessageSent           MessageStatus = "SENT"
	MessageDelivered      MessageStatus = "DELIVERED"
	MessageRead           MessageStatus = "READ"
	MessageFailed         MessageStatus = "FAILED"
)

// SessionStatus is the coarse per-peer state reported by the session engine.
type SessionStatus string

const (
	SessionActive        SessionStatus = "Active"
	SessionUnknownPeer   SessionStatus = "UnknownPeer"
	SessionNone          SessionStatus = "NoSession"
	SessionPeerRequested SessionStatus = "PeerRequested"
	SessionSelfRequested SessionStatus = "SelfRequested"
	SessionKilled        SessionStatus = "Killed"
	SessionSaturated     SessionStatus = "Saturated"
)
