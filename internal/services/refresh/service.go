package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"boardline/internal/domain"
)

// ErrStateDesync reports an ACTIVE discussion whose peer session is still
// PeerRequested. Local and remote state have diverged; this is fatal and
// must propagate, never be corrected silently.
var ErrStateDesync = errors.New("active discussion with peer-requested session")

// Config tunes the refresh service.
type Config struct {
	// Now is the clock; injectable for deterministic tests.
	Now func() time.Time
}

// Service sweeps the owner's active discussions for liveness.
type Service struct {
	discussions domain.DiscussionStore
	engine      domain.SessionEngine
	messages    domain.MessageService
	events      domain.Events
	cfg         Config
}

// New constructs a refresh Service.
func New(
	discussions domain.DiscussionStore,
	engine domain.SessionEngine,
	messages domain.MessageService,
	events domain.Events,
	cfg Config,
) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		discussions: discussions,
		engine:      engine,
		messages:    messages,
		events:      events,
		cfg:         cfg,
	}
}

// Sweep checks every ACTIVE discussion's session once.
//
// PeerRequested on an active discussion returns ErrStateDesync. Killed and
// NoSession surface the renewal-needed callback. For the rest, peers the
// engine reports as quiet past the keep-alive interval get a KEEP_ALIVE
// message through the message service. Saturated is a backpressure signal
// acted on by senders, not by the sweep.
func (s *Service) Sweep(ctx context.Context, owner domain.UserID) error {
	active, err := s.discussions.DiscussionsByStatus(owner, domain.DiscussionActive)
	if err != nil {
		return err
	}

	alive := make(map[domain.UserID]bool, len(active))
	for _, d := range active {
		switch s.engine.PeerStatus(d.ContactUserID) {
		case domain.SessionPeerRequested:
			return fmt.Errorf("%w: contact %s", ErrStateDesync, d.ContactUserID)
		case domain.SessionKilled, domain.SessionNone:
			log.Warn().
				Str("contactID", d.ContactUserID.String()).
				Msg("session dead, renewal needed")
			s.events.EmitSessionRenewalNeeded(d.ContactUserID)
		case domain.SessionActive:
			alive[d.ContactUserID] = true
		default:
			// SelfRequested, Saturated, UnknownPeer: nothing to do here.
		}
	}

	for _, peer := range s.engine.Refresh(s.cfg.Now()) {
		if !alive[peer] {
			continue
		}
		keepAlive := &domain.Message{
			OwnerUserID:   owner,
			ContactUserID: peer,
			Type:          domain.MessageTypeKeepAlive,
		}
		if _, err := s.messages.SendMessage(ctx, keepAlive); err != nil {
			log.Warn().Err(err).
				Str("contactID", peer.String()).
				Msg("keep-alive send failed")
			continue
		}
		log.Debug().Str("contactID", peer.String()).Msg("keep-alive sent")
	}
	return nil
}

// Compile-time assertion that Service implements domain.RefreshService.
var _ domain.RefreshService = (*Service)(nil)
