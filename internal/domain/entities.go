package domain

import "time"

// Discussion is the conversational state for one (owner, contact) pair.
//
// InitiationAnnouncement holds the retained raw announcement bytes and is
// populated only while Status is PENDING or SEND_FAILED; it allows a retry
// without re-deriving the announcement.
type Discussion struct {
	ID                     uint                `gorm:"primaryKey" json:"id"`
	OwnerUserID            UserID              `gorm:"uniqueIndex:idx_discussion_owner_contact" json:"owner_user_id"`
	ContactUserID          UserID              `gorm:"uniqueIndex:idx_discussion_owner_contact" json:"contact_user_id"`
	Direction              DiscussionDirection `json:"direction"`
	Status                 DiscussionStatus    `gorm:"index" json:"status"`
	UnreadCount            int                 `json:"unread_count"`
	InitiationAnnouncement []byte              `json:"initiation_announcement,omitempty"`
	AnnouncementMessage    string              `json:"announcement_message,omitempty"`
	CustomName             string              `json:"custom_name,omitempty"`
	LastMessageAt          time.Time           `json:"last_message_at"`
	CreatedAt              time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// Contact is a known peer, created on the first announcement exchanged with
// its user id.
type Contact struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OwnerUserID UserID     `gorm:"uniqueIndex:idx_contact_owner_user" json:"owner_user_id"`
	UserID      UserID     `gorm:"uniqueIndex:idx_contact_owner_user" json:"user_id"`
	Name        string     `json:"name"`
	PublicKeys  PublicKeys `json:"public_keys"`
	IsOnline    bool       `json:"is_online"`
	LastSeen    time.Time  `json:"last_seen"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Message is a single conversational message, user text or keep-alive.
type Message struct {
	ID             string           `gorm:"primaryKey" json:"id"`
	OwnerUserID    UserID           `gorm:"index:idx_message_owner_contact" json:"owner_user_id"`
	ContactUserID  UserID           `gorm:"index:idx_message_owner_contact" json:"contact_user_id"`
	Content        string           `json:"content"`
	Type           MessageType      `json:"type"`
	Direction      MessageDirection `json:"direction"`
	Status         MessageStatus    `gorm:"index" json:"status"`
	Timestamp      time.Time        `json:"timestamp"`
	Seeker         Seeker           `gorm:"index" json:"seeker,omitempty"`
	ReplyToSeeker  Seeker           `json:"reply_to_seeker,omitempty"`
	ReplyToContent string           `json:"reply_to_content,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// PendingAnnouncement is a fetched-but-not-yet-applied announcement. A row is
// deleted only after successful processing so a crash or processing failure
// never loses announcement data.
//
// Processed marks an entry whose effects are already applied but whose
// counter sits above a pinned cursor; it is retained so the entry is not fed
// to the engine again, and deleted once the cursor can pass it.
type PendingAnnouncement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerUserID UserID    `gorm:"uniqueIndex:idx_pending_owner_counter" json:"owner_user_id"`
	Counter     uint64    `gorm:"uniqueIndex:idx_pending_owner_counter" json:"counter"`
	Data        []byte    `json:"data"`
	Processed   bool      `json:"processed"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// AnnouncementCursor is the per-owner last-processed transport counter. It
// advances monotonically and only past announcements that were durably
// processed.
type AnnouncementCursor struct {
	OwnerUserID UserID    `gorm:"primaryKey" json:"owner_user_id"`
	Counter     uint64    `json:"counter"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
