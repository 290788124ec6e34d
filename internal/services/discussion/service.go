package discussion

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"boardline/internal/domain"
)

// ErrInitializationFailed is the generic error surfaced to callers when any
// part of establishing a new discussion fails. Detail goes to the log, not
// to the caller.
var ErrInitializationFailed = errors.New("discussion initialization failed")

// Config tunes the discussion service.
type Config struct {
	// SelfName is the display name offered to peers in announcement
	// payloads. Optional; without it the payload carries the message alone.
	SelfName string
}

// Service is the thin orchestration layer over the announcement service.
type Service struct {
	discussions domain.DiscussionStore
	contacts    domain.ContactStore
	messages    domain.MessageStore
	announce    domain.AnnouncementService
	engine      domain.SessionEngine
	cfg         Config
}

// New constructs a discussion Service.
func New(
	discussions domain.DiscussionStore,
	contacts domain.ContactStore,
	messages domain.MessageStore,
	announce domain.AnnouncementService,
	engine domain.SessionEngine,
	cfg Config,
) *Service {
	return &Service{
		discussions: discussions,
		contacts:    contacts,
		messages:    messages,
		announce:    announce,
		engine:      engine,
		cfg:         cfg,
	}
}

// Initialize creates a PENDING/INITIATED discussion with the contact and
// publishes the first announcement. Any underlying failure surfaces as the
// generic ErrInitializationFailed; the detail is logged.
func (s *Service) Initialize(ctx context.Context, owner domain.UserID, contact domain.Contact, message string) (*domain.Discussion, error) {
	contact.OwnerUserID = owner
	if existing, found, err := s.contacts.ContactByUserID(owner, contact.UserID); err != nil {
		log.Error().Err(err).Str("contactID", contact.UserID.String()).Msg("contact lookup failed")
		return nil, ErrInitializationFailed
	} else if found {
		existing.Name = contact.Name
		existing.PublicKeys = contact.PublicKeys
		contact = *existing
	}
	if err := s.contacts.SaveContact(&contact); err != nil {
		log.Error().Err(err).Str("contactID", contact.UserID.String()).Msg("saving contact failed")
		return nil, ErrInitializationFailed
	}

	d, found, err := s.discussions.DiscussionByPeer(owner, contact.UserID)
	if err != nil {
		log.Error().Err(err).Str("contactID", contact.UserID.String()).Msg("discussion lookup failed")
		return nil, ErrInitializationFailed
	}
	if !found {
		d = &domain.Discussion{
			OwnerUserID:   owner,
			ContactUserID: contact.UserID,
			Direction:     domain.DirectionInitiated,
			Status:        domain.DiscussionPending,
		}
	} else {
		d.Status = domain.DiscussionPending
	}
	d.AnnouncementMessage = message
	if err := s.discussions.SaveDiscussion(d); err != nil {
		log.Error().Err(err).Str("contactID", contact.UserID.String()).Msg("saving discussion failed")
		return nil, ErrInitializationFailed
	}

	outcome := s.announce.SendAnnouncement(ctx, owner, contact.UserID, s.userData(message))
	if !outcome.Success {
		log.Error().Err(outcome.Err).
			Str("contactID", contact.UserID.String()).
			Msg("first announcement failed")
		return nil, ErrInitializationFailed
	}

	refreshed, _, err := s.discussions.DiscussionByPeer(owner, contact.UserID)
	if err != nil {
		log.Error().Err(err).Str("contactID", contact.UserID.String()).Msg("reloading discussion failed")
		return nil, ErrInitializationFailed
	}
	return refreshed, nil
}

// Accept answers a received discussion request with a reciprocal
// announcement, moving it toward ACTIVE.
func (s *Service) Accept(ctx context.Context, d *domain.Discussion) error {
	if d.Direction != domain.DirectionReceived {
		return fmt.Errorf("cannot accept a discussion we initiated")
	}
	if d.Status != domain.DiscussionPending && d.Status != domain.DiscussionSendFailed {
		return fmt.Errorf("cannot accept discussion in status %s", d.Status)
	}
	outcome := s.announce.SendAnnouncement(ctx, d.OwnerUserID, d.ContactUserID, s.userData(""))
	if !outcome.Success {
		return fmt.Errorf("accept discussion: %w", outcome.Err)
	}
	return nil
}

// Refuse closes a received discussion request and discards its session
// state.
func (s *Service) Refuse(ctx context.Context, d *domain.Discussion) error {
	d.Status = domain.DiscussionClosed
	d.InitiationAnnouncement = nil
	if err := s.discussions.SaveDiscussion(d); err != nil {
		return err
	}
	s.engine.DiscardPeer(d.ContactUserID)
	log.Info().Str("contactID", d.ContactUserID.String()).Msg("discussion refused")
	return nil
}

// Remove deletes a discussion together with its contact and messages.
func (s *Service) Remove(ctx context.Context, d *domain.Discussion) error {
	if err := s.messages.DeleteMessages(d.OwnerUserID, d.ContactUserID); err != nil {
		return err
	}
	if err := s.discussions.DeleteDiscussion(d.OwnerUserID, d.ContactUserID); err != nil {
		return err
	}
	if err := s.contacts.DeleteContact(d.OwnerUserID, d.ContactUserID); err != nil {
		return err
	}
	s.engine.DiscardPeer(d.ContactUserID)
	return nil
}

// IsStableState reports whether the discussion is terminal-for-now (ACTIVE
// or CLOSED) rather than transient (PENDING, SEND_FAILED).
func (s *Service) IsStableState(d *domain.Discussion) bool {
	return d.Status == domain.DiscussionActive || d.Status == domain.DiscussionClosed
}

// userData composes the announcement payload, prefixing our display name
// when configured.
func (s *Service) userData(message string) string {
	if s.cfg.SelfName == "" {
		return message
	}
	return s.cfg.SelfName + ":" + message
}

// Compile-time assertion that Service implements domain.DiscussionService.
var _ domain.DiscussionService = (*Service)(nil)
