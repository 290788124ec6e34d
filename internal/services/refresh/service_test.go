package refresh

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardline/internal/domain"
	"boardline/internal/store"
)

// fakeEngine scripts per-peer status and the set of quiet peers.
type fakeEngine struct {
	status map[domain.UserID]domain.SessionStatus
	quiet  []domain.UserID
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{status: map[domain.UserID]domain.SessionStatus{}}
}

func (f *fakeEngine) EstablishOutgoing(peer domain.PublicKeys, userData string) ([]byte, error) {
	return nil, nil
}

func (f *fakeEngine) FeedIncomingAnnouncement(data []byte) (*domain.AnnouncementResult, error) {
	return nil, nil
}

func (f *fakeEngine) SendMessage(peer domain.UserID, plaintext string) (*domain.OutboundPayload, error) {
	return nil, nil
}

func (f *fakeEngine) FeedIncomingBoardRead(seeker domain.Seeker, ciphertext []byte) (*domain.BoardRead, error) {
	return nil, nil
}

func (f *fakeEngine) PeerStatus(peer domain.UserID) domain.SessionStatus {
	if s, ok := f.status[peer]; ok {
		return s
	}
	return domain.SessionNone
}

func (f *fakeEngine) DiscardPeer(peer domain.UserID)        {}
func (f *fakeEngine) Refresh(now time.Time) []domain.UserID { return f.quiet }
func (f *fakeEngine) Serialize() ([]byte, error)            { return []byte("state"), nil }

// fakeMessages records keep-alive sends.
type fakeMessages struct {
	sent    []domain.UserID
	sendErr map[domain.UserID]error
}

func (f *fakeMessages) SendMessage(ctx context.Context, msg *domain.Message) (domain.MessageStatus, error) {
	if err := f.sendErr[msg.ContactUserID]; err != nil {
		return domain.MessageFailed, err
	}
	f.sent = append(f.sent, msg.ContactUserID)
	return domain.MessageSent, nil
}

func (f *fakeMessages) ProcessWaitingMessages(ctx context.Context, owner, peer domain.UserID) (int, error) {
	return 0, nil
}

func (f *fakeMessages) FindMessageBySeeker(owner domain.UserID, seeker domain.Seeker) (*domain.Message, error) {
	return nil, nil
}

func (f *fakeMessages) ProcessBoardRead(ctx context.Context, owner domain.UserID, seeker domain.Seeker, ciphertext []byte) (*domain.Message, error) {
	return nil, nil
}

func (f *fakeMessages) MarkRead(owner, contact domain.UserID) error { return nil }

type fixture struct {
	store    *store.Store
	engine   *fakeEngine
	messages *fakeMessages
	svc      *Service
	renewal  []domain.UserID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	f := &fixture{
		store:    st,
		engine:   newFakeEngine(),
		messages: &fakeMessages{sendErr: map[domain.UserID]error{}},
	}
	events := domain.Events{
		OnSessionRenewalNeeded: func(p domain.UserID) { f.renewal = append(f.renewal, p) },
	}
	f.svc = New(st, f.engine, f.messages, events, Config{
		Now: func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	return f
}

func (f *fixture) seedActive(t *testing.T, peer domain.UserID) {
	t.Helper()
	require.NoError(t, f.store.SaveDiscussion(&domain.Discussion{
		OwnerUserID: "owner", ContactUserID: peer,
		Status: domain.DiscussionActive, Direction: domain.DirectionInitiated,
	}))
}

func TestSweep_PeerRequestedOnActiveIsFatal(t *testing.T) {
	f := newFixture(t)
	f.seedActive(t, "peer")
	f.engine.status["peer"] = domain.SessionPeerRequested

	err := f.svc.Sweep(context.Background(), "owner")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStateDesync))
}

func TestSweep_DeadSessionTriggersRenewal(t *testing.T) {
	f := newFixture(t)
	f.seedActive(t, "killed")
	f.seedActive(t, "gone")
	f.engine.status["killed"] = domain.SessionKilled
	f.engine.status["gone"] = domain.SessionNone

	require.NoError(t, f.svc.Sweep(context.Background(), "owner"))
	assert.ElementsMatch(t, []domain.UserID{"killed", "gone"}, f.renewal)
	assert.Empty(t, f.messages.sent)
}

func TestSweep_QuietActivePeerGetsKeepAlive(t *testing.T) {
	f := newFixture(t)
	f.seedActive(t, "peer")
	f.engine.status["peer"] = domain.SessionActive
	f.engine.quiet = []domain.UserID{"peer"}

	require.NoError(t, f.svc.Sweep(context.Background(), "owner"))
	assert.Equal(t, []domain.UserID{"peer"}, f.messages.sent)
}

func TestSweep_QuietPeerWithoutActiveDiscussionSkipped(t *testing.T) {
	f := newFixture(t)
	f.engine.quiet = []domain.UserID{"stranger"}

	require.NoError(t, f.svc.Sweep(context.Background(), "owner"))
	assert.Empty(t, f.messages.sent)
}

func TestSweep_SaturatedAndSelfRequestedIgnored(t *testing.T) {
	f := newFixture(t)
	f.seedActive(t, "busy")
	f.seedActive(t, "waiting")
	f.engine.status["busy"] = domain.SessionSaturated
	f.engine.status["waiting"] = domain.SessionSelfRequested

	require.NoError(t, f.svc.Sweep(context.Background(), "owner"))
	assert.Empty(t, f.renewal)
	assert.Empty(t, f.messages.sent)
}

func TestSweep_KeepAliveFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	f.seedActive(t, "a")
	f.seedActive(t, "b")
	f.engine.status["a"] = domain.SessionActive
	f.engine.status["b"] = domain.SessionActive
	f.engine.quiet = []domain.UserID{"a", "b"}
	f.messages.sendErr["a"] = errors.New("board unreachable")

	require.NoError(t, f.svc.Sweep(context.Background(), "owner"))
	assert.Equal(t, []domain.UserID{"b"}, f.messages.sent)
}
