package message

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"boardline/internal/domain"
)

// defaultDedupWindow is the symmetric timestamp window inside which an
// identical incoming message is considered a transport-level redelivery.
const defaultDedupWindow = 30 * time.Second

// Config tunes the message service.
type Config struct {
	// DedupWindow is the +-window for incoming-message deduplication.
	DedupWindow time.Duration

	// Now is the clock; injectable for deterministic tests.
	Now func() time.Time
}

// Service sends and receives messages through the board once a session is
// up, and owns the waiting-session queue for sends that arrive before it is.
type Service struct {
	messages    domain.MessageStore
	discussions domain.DiscussionStore
	contacts    domain.ContactStore
	engine      domain.SessionEngine
	transport   domain.Transport
	events      domain.Events
	cfg         Config
}

// New constructs a message Service.
func New(
	messages domain.MessageStore,
	discussions domain.DiscussionStore,
	contacts domain.ContactStore,
	engine domain.SessionEngine,
	transport domain.Transport,
	events domain.Events,
	cfg Config,
) *Service {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = defaultDedupWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		messages:    messages,
		discussions: discussions,
		contacts:    contacts,
		engine:      engine,
		transport:   transport,
		events:      events,
		cfg:         cfg,
	}
}

// SendMessage encrypts and publishes msg when the peer session is Active.
// When the session is not Active the message is persisted WAITING_SESSION
// and that status is returned with a nil error: queuing until the peer
// accepts is a deliberate non-error outcome. Engine and transport failures
// mark the message FAILED.
func (s *Service) SendMessage(ctx context.Context, msg *domain.Message) (domain.MessageStatus, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.cfg.Now()
	}
	msg.Direction = domain.MessageOutgoing
	if msg.Type == "" {
		msg.Type = domain.MessageTypeText
	}
	msg.Status = domain.MessageSending

	if s.engine.PeerStatus(msg.ContactUserID) != domain.SessionActive {
		msg.Status = domain.MessageWaitingSession
		if err := s.messages.SaveMessage(msg); err != nil {
			return "", err
		}
		log.Debug().
			Str("contactID", msg.ContactUserID.String()).
			Msg("no active session, message queued")
		return domain.MessageWaitingSession, nil
	}

	status, err := s.publish(ctx, msg)
	if err != nil {
		return status, err
	}
	if err := s.touchDiscussion(msg); err != nil {
		log.Error().Err(err).Str("contactID", msg.ContactUserID.String()).Msg("updating discussion after send failed")
		s.events.EmitError(err)
	}
	return status, nil
}

// publish runs the encrypt-and-post path for one message and persists the
// resulting status.
func (s *Service) publish(ctx context.Context, msg *domain.Message) (domain.MessageStatus, error) {
	out, err := s.engine.SendMessage(msg.ContactUserID, msg.Content)
	if err != nil {
		msg.Status = domain.MessageFailed
		if saveErr := s.messages.SaveMessage(msg); saveErr != nil {
			s.events.EmitError(saveErr)
		}
		return domain.MessageFailed, fmt.Errorf("encrypt message: %w", err)
	}
	if out == nil {
		// The session dropped between the status check and the send.
		msg.Status = domain.MessageWaitingSession
		if err := s.messages.SaveMessage(msg); err != nil {
			return "", err
		}
		return domain.MessageWaitingSession, nil
	}

	msg.Seeker = out.Seeker
	if err := s.transport.SendMessage(ctx, out.Seeker, out.Data); err != nil {
		msg.Status = domain.MessageFailed
		if saveErr := s.messages.SaveMessage(msg); saveErr != nil {
			s.events.EmitError(saveErr)
		}
		return domain.MessageFailed, fmt.Errorf("publish message: %w", err)
	}

	msg.Status = domain.MessageSent
	if err := s.messages.SaveMessage(msg); err != nil {
		return "", err
	}
	return domain.MessageSent, nil
}

// ProcessWaitingMessages flushes the peer's WAITING_SESSION queue in original
// send order and returns how many messages reached SENT. An engine error on
// one message marks it FAILED; the remainder is still attempted. This is the
// required response to the session-became-active event.
func (s *Service) ProcessWaitingMessages(ctx context.Context, owner, peer domain.UserID) (int, error) {
	waiting, err := s.messages.MessagesByStatus(owner, peer, domain.MessageWaitingSession)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range waiting {
		msg := waiting[i]
		status, err := s.publish(ctx, &msg)
		if err != nil {
			log.Warn().Err(err).
				Str("messageID", msg.ID).
				Str("contactID", peer.String()).
				Msg("flushing waiting message failed")
			continue
		}
		if status == domain.MessageSent {
			sent++
		}
	}
	if sent > 0 {
		log.Info().
			Int("count", sent).
			Str("contactID", peer.String()).
			Msg("flushed waiting messages")
	}
	return sent, nil
}

// FindMessageBySeeker resolves a reply reference. It returns nil when the
// original message is absent so callers can degrade gracefully.
func (s *Service) FindMessageBySeeker(owner domain.UserID, seeker domain.Seeker) (*domain.Message, error) {
	m, found, err := s.messages.MessageBySeeker(owner, seeker)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return m, nil
}

// ProcessBoardRead decrypts a ciphertext fetched from the board and persists
// the result. An authentication failure yields (nil, nil): the caller logs
// and drops, and must never retry the same bytes. Newly acknowledged seekers
// are merged into delivery bookkeeping before deduplication, so an otherwise
// duplicate delivery still confirms our sends.
func (s *Service) ProcessBoardRead(ctx context.Context, owner domain.UserID, seeker domain.Seeker, ciphertext []byte) (*domain.Message, error) {
	res, err := s.engine.FeedIncomingBoardRead(seeker, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("feed board read: %w", err)
	}
	if res == nil {
		log.Debug().Str("seeker", seeker.String()).Msg("board read not decryptable, dropping")
		return nil, nil
	}

	if n, err := s.messages.MarkDelivered(owner, res.AckedSeekers); err != nil {
		log.Error().Err(err).Str("ownerID", owner.String()).Msg("merging acknowledged seekers failed")
		s.events.EmitError(err)
	} else if n > 0 {
		log.Debug().Int64("count", n).Msg("peer acknowledged sent messages")
	}

	dup, err := s.messages.HasRecentIncoming(owner, res.SenderUserID, res.Content, res.Timestamp, s.cfg.DedupWindow)
	if err != nil {
		return nil, err
	}
	if dup {
		log.Debug().
			Str("contactID", res.SenderUserID.String()).
			Time("timestamp", res.Timestamp).
			Msg("duplicate incoming message suppressed")
		return nil, nil
	}

	msgType := domain.MessageTypeText
	if res.Content == "" {
		msgType = domain.MessageTypeKeepAlive
	}
	msg := &domain.Message{
		ID:            uuid.NewString(),
		OwnerUserID:   owner,
		ContactUserID: res.SenderUserID,
		Content:       res.Content,
		Type:          msgType,
		Direction:     domain.MessageIncoming,
		Status:        domain.MessageDelivered,
		Timestamp:     res.Timestamp,
		Seeker:        seeker,
	}
	if err := s.messages.SaveMessage(msg); err != nil {
		return nil, err
	}

	if msgType == domain.MessageTypeText {
		if err := s.recordIncoming(msg); err != nil {
			log.Error().Err(err).Str("contactID", res.SenderUserID.String()).Msg("updating discussion after receive failed")
			s.events.EmitError(err)
		}
	}
	return msg, nil
}

// MarkRead flips the pair's unread incoming messages to READ and clears the
// discussion's unread counter.
func (s *Service) MarkRead(owner, contact domain.UserID) error {
	return s.messages.MarkRead(owner, contact)
}

// touchDiscussion refreshes the discussion's last-message stamp after an
// outgoing text send.
func (s *Service) touchDiscussion(msg *domain.Message) error {
	if msg.Type != domain.MessageTypeText {
		return nil
	}
	d, found, err := s.discussions.DiscussionByPeer(msg.OwnerUserID, msg.ContactUserID)
	if err != nil || !found {
		return err
	}
	d.LastMessageAt = msg.Timestamp
	return s.discussions.SaveDiscussion(d)
}

// recordIncoming bumps unread state and peer liveness for a received text
// message.
func (s *Service) recordIncoming(msg *domain.Message) error {
	d, found, err := s.discussions.DiscussionByPeer(msg.OwnerUserID, msg.ContactUserID)
	if err != nil {
		return err
	}
	if found {
		d.UnreadCount++
		d.LastMessageAt = msg.Timestamp
		if err := s.discussions.SaveDiscussion(d); err != nil {
			return err
		}
	}
	c, found, err := s.contacts.ContactByUserID(msg.OwnerUserID, msg.ContactUserID)
	if err != nil || !found {
		return err
	}
	c.IsOnline = true
	c.LastSeen = msg.Timestamp
	return s.contacts.SaveContact(c)
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
