package store

import (
	"errors"
	"fmt"
	stdlog "log"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"boardline/internal/domain"
)

// Store is the sqlite-backed implementation of the entity store interfaces.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}

	gl := gormlogger.New(
		stdlog.New(log.Logger, "", 0),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(
		&domain.Discussion{},
		&domain.Contact{},
		&domain.Message{},
		&domain.PendingAnnouncement{},
		&domain.AnnouncementCursor{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// ---------- Discussions ----------

// SaveDiscussion creates or updates a discussion record.
func (s *Store) SaveDiscussion(d *domain.Discussion) error {
	return s.db.Save(d).Error
}

// DiscussionByPeer loads the discussion for the (owner, contact) pair.
func (s *Store) DiscussionByPeer(owner, contact domain.UserID) (*domain.Discussion, bool, error) {
	var d domain.Discussion
	err := s.db.
		Where("owner_user_id = ? AND contact_user_id = ?", owner, contact).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

// DiscussionsByStatus lists the owner's discussions in the given status.
func (s *Store) DiscussionsByStatus(owner domain.UserID, status domain.DiscussionStatus) ([]domain.Discussion, error) {
	var out []domain.Discussion
	err := s.db.
		Where("owner_user_id = ? AND status = ?", owner, status).
		Order("updated_at ASC").
		Find(&out).Error
	return out, err
}

// DeleteDiscussion removes the pair's discussion record.
func (s *Store) DeleteDiscussion(owner, contact domain.UserID) error {
	return s.db.
		Where("owner_user_id = ? AND contact_user_id = ?", owner, contact).
		Delete(&domain.Discussion{}).Error
}

// ---------- Contacts ----------

// SaveContact creates or updates a contact record.
func (s *Store) SaveContact(c *domain.Contact) error {
	return s.db.Save(c).Error
}

// ContactByUserID loads the owner's contact with the given user id.
func (s *Store) ContactByUserID(owner, user domain.UserID) (*domain.Contact, bool, error) {
	var c domain.Contact
	err := s.db.
		Where("owner_user_id = ? AND user_id = ?", owner, user).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

// Contacts lists all of the owner's contacts.
func (s *Store) Contacts(owner domain.UserID) ([]domain.Contact, error) {
	var out []domain.Contact
	err := s.db.
		Where("owner_user_id = ?", owner).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// CountContactsWithNamePrefix counts the owner's contacts whose name starts
// with prefix. Used for "New Request <n>" placeholder numbering.
func (s *Store) CountContactsWithNamePrefix(owner domain.UserID, prefix string) (int64, error) {
	var n int64
	err := s.db.Model(&domain.Contact{}).
		Where("owner_user_id = ? AND name LIKE ?", owner, prefix+"%").
		Count(&n).Error
	return n, err
}

// DeleteContact removes the owner's contact record.
func (s *Store) DeleteContact(owner, user domain.UserID) error {
	return s.db.
		Where("owner_user_id = ? AND user_id = ?", owner, user).
		Delete(&domain.Contact{}).Error
}

// ---------- Messages ----------

// SaveMessage creates or updates a message record.
func (s *Store) SaveMessage(m *domain.Message) error {
	return s.db.Save(m).Error
}

// MessageBySeeker looks up the owner's message addressed under seeker.
func (s *Store) MessageBySeeker(owner domain.UserID, seeker domain.Seeker) (*domain.Message, bool, error) {
	var m domain.Message
	err := s.db.
		Where("owner_user_id = ? AND seeker = ?", owner, seeker).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

// MessagesByStatus lists the pair's messages in the given status in original
// send order.
func (s *Store) MessagesByStatus(owner, contact domain.UserID, status domain.MessageStatus) ([]domain.Message, error) {
	var out []domain.Message
	err := s.db.
		Where("owner_user_id = ? AND contact_user_id = ? AND status = ?", owner, contact, status).
		Order("timestamp ASC, created_at ASC").
		Find(&out).Error
	return out, err
}

// HasRecentIncoming reports whether an INCOMING message with identical
// content already exists for the pair within +-window of around. Outgoing
// messages are never considered.
func (s *Store) HasRecentIncoming(owner, contact domain.UserID, content string, around time.Time, window time.Duration) (bool, error) {
	var n int64
	err := s.db.Model(&domain.Message{}).
		Where("owner_user_id = ? AND contact_user_id = ? AND direction = ? AND content = ?",
			owner, contact, domain.MessageIncoming, content).
		Where("timestamp BETWEEN ? AND ?", around.Add(-window), around.Add(window)).
		Count(&n).Error
	return n > 0, err
}

// MarkDelivered flips the owner's SENT messages under the given seekers to
// DELIVERED.
func (s *Store) MarkDelivered(owner domain.UserID, seekers []domain.Seeker) (int64, error) {
	if len(seekers) == 0 {
		return 0, nil
	}
	res := s.db.Model(&domain.Message{}).
		Where("owner_user_id = ? AND status = ? AND seeker IN ?", owner, domain.MessageSent, seekers).
		Update("status", domain.MessageDelivered)
	return res.RowsAffected, res.Error
}

// MarkRead flips the pair's unread INCOMING messages to READ and zeroes the
// discussion's unread counter.
func (s *Store) MarkRead(owner, contact domain.UserID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Message{}).
			Where("owner_user_id = ? AND contact_user_id = ? AND direction = ? AND status <> ?",
				owner, contact, domain.MessageIncoming, domain.MessageRead).
			Update("status", domain.MessageRead).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Discussion{}).
			Where("owner_user_id = ? AND contact_user_id = ?", owner, contact).
			Update("unread_count", 0).Error
	})
}

// DeleteMessages removes all of the pair's messages.
func (s *Store) DeleteMessages(owner, contact domain.UserID) error {
	return s.db.
		Where("owner_user_id = ? AND contact_user_id = ?", owner, contact).
		Delete(&domain.Message{}).Error
}

// ---------- Announcements ----------

// SavePendingAnnouncement upserts by (owner, counter); re-fetching an entry
// that is already queued is a no-op.
func (s *Store) SavePendingAnnouncement(p *domain.PendingAnnouncement) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_user_id"}, {Name: "counter"}},
		DoNothing: true,
	}).Create(p).Error
}

// PendingAnnouncements returns the owner's unprocessed queue in counter
// order.
func (s *Store) PendingAnnouncements(owner domain.UserID) ([]domain.PendingAnnouncement, error) {
	var out []domain.PendingAnnouncement
	err := s.db.
		Where("owner_user_id = ?", owner).
		Order("counter ASC").
		Find(&out).Error
	return out, err
}

// DeletePendingAnnouncement removes a processed queue entry.
func (s *Store) DeletePendingAnnouncement(id uint) error {
	return s.db.Delete(&domain.PendingAnnouncement{}, id).Error
}

// MarkAnnouncementProcessed flags an applied entry retained above a pinned
// cursor.
func (s *Store) MarkAnnouncementProcessed(id uint) error {
	return s.db.Model(&domain.PendingAnnouncement{}).
		Where("id = ?", id).
		Update("processed", true).Error
}

// Cursor returns the owner's last durably processed transport counter, zero
// when none is stored yet.
func (s *Store) Cursor(owner domain.UserID) (uint64, error) {
	var c domain.AnnouncementCursor
	err := s.db.Where("owner_user_id = ?", owner).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.Counter, nil
}

// AdvanceCursor moves the owner's cursor forward, never backward.
func (s *Store) AdvanceCursor(owner domain.UserID, counter uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var c domain.AnnouncementCursor
		err := tx.Where("owner_user_id = ?", owner).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&domain.AnnouncementCursor{OwnerUserID: owner, Counter: counter}).Error
		}
		if err != nil {
			return err
		}
		if counter <= c.Counter {
			return nil
		}
		return tx.Model(&domain.AnnouncementCursor{}).
			Where("owner_user_id = ?", owner).
			Update("counter", counter).Error
	})
}

// Compile-time assertions that Store implements the store interfaces.
var (
	_ domain.DiscussionStore   = (*Store)(nil)
	_ domain.ContactStore      = (*Store)(nil)
	_ domain.MessageStore      = (*Store)(nil)
	_ domain.AnnouncementStore = (*Store)(nil)
)
