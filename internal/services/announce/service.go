package announce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"boardline/internal/domain"
)

// placeholderPrefix starts auto-generated contact names for announcements
// that carry no username.
const placeholderPrefix = "New Request "

// defaultBrokenThreshold is how long a discussion may keep failing retries
// before a renewed failure escalates to the renewal-needed callback.
const defaultBrokenThreshold = 24 * time.Hour

// Config tunes the announcement service.
type Config struct {
	// BrokenThreshold is the escalation window for failing retries.
	BrokenThreshold time.Duration

	// Now is the clock; injectable for deterministic tests.
	Now func() time.Time
}

// Service drives session establishment and renewal over the announcement
// log.
type Service struct {
	discussions   domain.DiscussionStore
	contacts      domain.ContactStore
	announcements domain.AnnouncementStore
	engine        domain.SessionEngine
	transport     domain.Transport
	events        domain.Events
	cfg           Config
}

// New constructs an announcement Service.
func New(
	discussions domain.DiscussionStore,
	contacts domain.ContactStore,
	announcements domain.AnnouncementStore,
	engine domain.SessionEngine,
	transport domain.Transport,
	events domain.Events,
	cfg Config,
) *Service {
	if cfg.BrokenThreshold <= 0 {
		cfg.BrokenThreshold = defaultBrokenThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		discussions:   discussions,
		contacts:      contacts,
		announcements: announcements,
		engine:        engine,
		transport:     transport,
		events:        events,
		cfg:           cfg,
	}
}

// SendAnnouncement produces announcement bytes for the contact and publishes
// them. It never returns an error; failures are captured in the outcome, the
// discussion is marked SEND_FAILED, and the bytes are retained for retry.
func (s *Service) SendAnnouncement(ctx context.Context, owner, contact domain.UserID, userData string) domain.SendOutcome {
	d, found, err := s.discussions.DiscussionByPeer(owner, contact)
	if err != nil {
		return domain.SendOutcome{Err: err}
	}
	if !found {
		return domain.SendOutcome{Err: fmt.Errorf("no discussion with %s", contact)}
	}
	c, found, err := s.contacts.ContactByUserID(owner, contact)
	if err != nil {
		return domain.SendOutcome{Err: err}
	}
	if !found {
		return domain.SendOutcome{Err: fmt.Errorf("no contact %s", contact)}
	}

	bytes, err := s.engine.EstablishOutgoing(c.PublicKeys, userData)
	if err != nil {
		log.Error().Err(err).Str("contactID", contact.String()).Msg("announcement derivation failed")
		s.markSendFailed(d)
		return domain.SendOutcome{Err: err}
	}
	d.InitiationAnnouncement = bytes

	counter, err := s.transport.SendAnnouncement(ctx, bytes)
	if err != nil {
		log.Warn().Err(err).Str("contactID", contact.String()).Msg("announcement publish failed")
		s.markSendFailed(d)
		return domain.SendOutcome{Err: err}
	}

	if err := s.settle(d); err != nil {
		return domain.SendOutcome{Err: err}
	}
	return domain.SendOutcome{Success: true, Counter: counter}
}

// ResendAnnouncements retries each SEND_FAILED discussion's retained
// announcement. A renewed failure within the broken threshold leaves the
// discussion SEND_FAILED for further retries; past the threshold it
// escalates to the renewal-needed callback instead.
func (s *Service) ResendAnnouncements(ctx context.Context, owner domain.UserID, discussions []domain.Discussion) {
	now := s.cfg.Now()
	for i := range discussions {
		d := discussions[i]
		if d.Status != domain.DiscussionSendFailed || len(d.InitiationAnnouncement) == 0 {
			continue
		}
		if _, err := s.transport.SendAnnouncement(ctx, d.InitiationAnnouncement); err != nil {
			if now.Sub(d.UpdatedAt) > s.cfg.BrokenThreshold {
				log.Warn().Err(err).
					Str("contactID", d.ContactUserID.String()).
					Msg("announcement retry past broken threshold, session renewal needed")
				s.events.EmitSessionRenewalNeeded(d.ContactUserID)
			} else {
				// Leave the record untouched: its updated_at keeps measuring
				// the length of the outage.
				log.Warn().Err(err).
					Str("contactID", d.ContactUserID.String()).
					Msg("announcement retry failed, will retry on next sweep")
			}
			continue
		}
		if err := s.settle(&d); err != nil {
			log.Error().Err(err).Str("contactID", d.ContactUserID.String()).Msg("settle after resend failed")
			s.events.EmitError(err)
		}
	}
}

// markSendFailed records a publish failure, keeping the retained bytes.
func (s *Service) markSendFailed(d *domain.Discussion) {
	d.Status = domain.DiscussionSendFailed
	if err := s.discussions.SaveDiscussion(d); err != nil {
		log.Error().Err(err).Str("contactID", d.ContactUserID.String()).Msg("persisting SEND_FAILED discussion failed")
		s.events.EmitError(err)
	}
}

// settle moves a discussion to ACTIVE or PENDING after a successful publish,
// depending on whether the peer session is up yet.
func (s *Service) settle(d *domain.Discussion) error {
	if s.engine.PeerStatus(d.ContactUserID) == domain.SessionActive {
		became := d.Status != domain.DiscussionActive
		d.Status = domain.DiscussionActive
		d.InitiationAnnouncement = nil
		if err := s.discussions.SaveDiscussion(d); err != nil {
			return err
		}
		if became {
			s.events.EmitSessionBecameActive(d.ContactUserID)
		}
		return nil
	}
	d.Status = domain.DiscussionPending
	return s.discussions.SaveDiscussion(d)
}

// FetchAndProcessAnnouncements pulls new log entries past the stored cursor,
// persists each as a pending announcement, then applies the pending queue in
// counter order. A failing entry stays queued and pins the cursor; entries
// after it are still applied, retained with the processed flag, and dequeued
// once the pin clears.
func (s *Service) FetchAndProcessAnnouncements(ctx context.Context, owner domain.UserID) error {
	cursor, err := s.announcements.Cursor(owner)
	if err != nil {
		return err
	}
	recs, err := s.transport.FetchAnnouncements(ctx, cursor)
	if err != nil {
		return fmt.Errorf("fetch announcements: %w", err)
	}
	now := s.cfg.Now()
	for _, r := range recs {
		p := domain.PendingAnnouncement{
			OwnerUserID: owner,
			Counter:     r.Counter,
			Data:        r.Data,
			FetchedAt:   now,
		}
		if err := s.announcements.SavePendingAnnouncement(&p); err != nil {
			return fmt.Errorf("persist pending announcement %d: %w", r.Counter, err)
		}
	}

	pending, err := s.announcements.PendingAnnouncements(owner)
	if err != nil {
		return err
	}

	var advance uint64
	pinned := false
	for i := range pending {
		p := pending[i]
		if !p.Processed {
			if err := s.applyAnnouncement(owner, &p); err != nil {
				// Retained for the next sweep; later entries still get a chance.
				log.Error().Err(err).
					Uint64("counter", p.Counter).
					Str("ownerID", owner.String()).
					Msg("processing pending announcement failed")
				pinned = true
				continue
			}
		}
		if pinned {
			// Applied but stuck above the pinned cursor. The row stays, flagged
			// so the next sweep never feeds it to the engine again.
			if !p.Processed {
				if err := s.announcements.MarkAnnouncementProcessed(p.ID); err != nil {
					return fmt.Errorf("flag announcement %d: %w", p.Counter, err)
				}
			}
			continue
		}
		if err := s.announcements.DeletePendingAnnouncement(p.ID); err != nil {
			return fmt.Errorf("dequeue announcement %d: %w", p.Counter, err)
		}
		if p.Counter > advance {
			advance = p.Counter
		}
	}
	if advance > cursor {
		if err := s.announcements.AdvanceCursor(owner, advance); err != nil {
			return fmt.Errorf("advance cursor: %w", err)
		}
	}
	return nil
}

// applyAnnouncement feeds one pending announcement to the engine and updates
// contact and discussion state from the result.
func (s *Service) applyAnnouncement(owner domain.UserID, p *domain.PendingAnnouncement) error {
	res, err := s.engine.FeedIncomingAnnouncement(p.Data)
	if err != nil {
		return fmt.Errorf("feed announcement: %w", err)
	}
	if res == nil {
		// Stale, skewed, or not addressed to us. Processed with no effect.
		log.Debug().Uint64("counter", p.Counter).Msg("announcement not applicable, dropping")
		return nil
	}

	name, message := parseUserData(res.UserData)

	contact, found, err := s.contacts.ContactByUserID(owner, res.PeerUserID)
	if err != nil {
		return err
	}
	if !found {
		if name == "" {
			name, err = s.placeholderName(owner)
			if err != nil {
				return err
			}
		}
		contact = &domain.Contact{
			OwnerUserID: owner,
			UserID:      res.PeerUserID,
			Name:        name,
			PublicKeys:  res.PeerKeys,
			IsOnline:    true,
			LastSeen:    res.Timestamp,
		}
	} else {
		contact.PublicKeys = res.PeerKeys
		contact.IsOnline = true
		contact.LastSeen = res.Timestamp
	}
	if err := s.contacts.SaveContact(contact); err != nil {
		return err
	}

	d, found, err := s.discussions.DiscussionByPeer(owner, res.PeerUserID)
	if err != nil {
		return err
	}
	if !found {
		d = &domain.Discussion{
			OwnerUserID:            owner,
			ContactUserID:          res.PeerUserID,
			Direction:              domain.DirectionReceived,
			Status:                 domain.DiscussionPending,
			AnnouncementMessage:    message,
			InitiationAnnouncement: p.Data,
			LastMessageAt:          res.Timestamp,
		}
		if err := s.discussions.SaveDiscussion(d); err != nil {
			return err
		}
		log.Info().
			Str("contactID", res.PeerUserID.String()).
			Str("contactName", contact.Name).
			Msg("new discussion request received")
		return nil
	}

	if s.engine.PeerStatus(res.PeerUserID) == domain.SessionActive && d.Status != domain.DiscussionActive {
		d.Status = domain.DiscussionActive
		d.InitiationAnnouncement = nil
		if err := s.discussions.SaveDiscussion(d); err != nil {
			return err
		}
		log.Info().Str("contactID", res.PeerUserID.String()).Msg("session became active")
		s.events.EmitSessionBecameActive(res.PeerUserID)
		return nil
	}

	if message != "" && d.AnnouncementMessage != message {
		d.AnnouncementMessage = message
		return s.discussions.SaveDiscussion(d)
	}
	return nil
}

// parseUserData splits an announcement payload into its proposed contact
// name and message. The substring up to the first colon is the name; without
// a colon the whole payload is the message.
func parseUserData(payload string) (name, message string) {
	idx := strings.Index(payload, ":")
	if idx < 0 {
		return "", payload
	}
	return payload[:idx], payload[idx+1:]
}

// placeholderName generates a per-owner unique "New Request <n>" contact
// name. n starts past the count of existing placeholder-named contacts and
// increments until free.
func (s *Service) placeholderName(owner domain.UserID) (string, error) {
	n, err := s.contacts.CountContactsWithNamePrefix(owner, placeholderPrefix)
	if err != nil {
		return "", err
	}
	existing, err := s.contacts.Contacts(owner)
	if err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		taken[c.Name] = struct{}{}
	}
	for i := n + 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", placeholderPrefix, i)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

// Compile-time assertion that Service implements domain.AnnouncementService.
var _ domain.AnnouncementService = (*Service)(nil)
