package engine

import (
	"fmt"
	"sync"
	"time"

	"boardline/internal/domain"
)

// Guard wraps a session engine with single-writer access and durable state.
// It implements domain.SessionEngine itself, so services never see the
// unguarded engine.
type Guard struct {
	mu         sync.Mutex
	inner      domain.SessionEngine
	states     domain.StateStore
	name       string
	passphrase string
}

// NewGuard wraps inner, persisting its state under name in states.
func NewGuard(inner domain.SessionEngine, states domain.StateStore, name, passphrase string) *Guard {
	return &Guard{
		inner:      inner,
		states:     states,
		name:       name,
		passphrase: passphrase,
	}
}

// persist snapshots the engine into the encrypted blob store. Called with the
// mutex held, after every mutating operation.
func (g *Guard) persist() error {
	raw, err := g.inner.Serialize()
	if err != nil {
		return fmt.Errorf("serialize engine state: %w", err)
	}
	if err := g.states.SaveState(g.name, g.passphrase, raw); err != nil {
		return fmt.Errorf("persist engine state: %w", err)
	}
	return nil
}

// EstablishOutgoing produces announcement bytes for the peer.
func (g *Guard) EstablishOutgoing(peer domain.PublicKeys, userData string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out, err := g.inner.EstablishOutgoing(peer, userData)
	if err != nil {
		return nil, err
	}
	if err := g.persist(); err != nil {
		return nil, err
	}
	return out, nil
}

// FeedIncomingAnnouncement applies an announcement. State is persisted only
// when the announcement was applicable.
func (g *Guard) FeedIncomingAnnouncement(data []byte) (*domain.AnnouncementResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.inner.FeedIncomingAnnouncement(data)
	if err != nil || res == nil {
		return res, err
	}
	if err := g.persist(); err != nil {
		return nil, err
	}
	return res, nil
}

// SendMessage encrypts plaintext for the peer.
func (g *Guard) SendMessage(peer domain.UserID, plaintext string) (*domain.OutboundPayload, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out, err := g.inner.SendMessage(peer, plaintext)
	if err != nil || out == nil {
		return out, err
	}
	if err := g.persist(); err != nil {
		return nil, err
	}
	return out, nil
}

// FeedIncomingBoardRead decrypts a board ciphertext.
func (g *Guard) FeedIncomingBoardRead(seeker domain.Seeker, ciphertext []byte) (*domain.BoardRead, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.inner.FeedIncomingBoardRead(seeker, ciphertext)
	if err != nil || res == nil {
		return res, err
	}
	if err := g.persist(); err != nil {
		return nil, err
	}
	return res, nil
}

// PeerStatus reports the peer's session state.
func (g *Guard) PeerStatus(peer domain.UserID) domain.SessionStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.PeerStatus(peer)
}

// DiscardPeer drops the peer's session state.
func (g *Guard) DiscardPeer(peer domain.UserID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inner.DiscardPeer(peer)
	// Discard has no error path on the engine; persistence failures here are
	// recoverable on the next mutating call.
	_ = g.persist()
}

// Refresh returns the peers that need a keep-alive as of now.
func (g *Guard) Refresh(now time.Time) []domain.UserID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Refresh(now)
}

// Serialize snapshots the engine state.
func (g *Guard) Serialize() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Serialize()
}

// Compile-time assertion that Guard implements domain.SessionEngine.
var _ domain.SessionEngine = (*Guard)(nil)
