package discussion

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

// fakeAnnounce scripts announcement publish outcomes and records payloads.
type fakeAnnounce struct {
	outcome  domain.SendOutcome
	payloads []string
}

func (f *fakeAnnounce) SendAnnouncement(ctx context.Context, owner, contact domain.UserID, userData string) domain.SendOutcome {
	f.payloads = append(f.payloads, userData)
	return f.outcome
}

func (f *fakeAnnounce) ResendAnnouncements(ctx context.Context, owner domain.UserID, discussions []domain.Discussion) {
}

func (f *fakeAnnounce) FetchAndProcessAnnouncements(ctx context.Context, owner domain.UserID) error {
	return nil
}

// fakeEngine only tracks discarded peers here.
type fakeEngine struct {
	discarded []domain.UserID
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

func (f *fakeEngine) PeerStatus(peer domain.UserID) domain.SessionStatus { return domain.SessionNone }
func (f *fakeEngine) DiscardPeer(peer domain.UserID)                     { f.discarded = append(f.discarded, peer) }
func (f *fakeEngine) Refresh(now time.Time) []domain.UserID              { return nil }
func (f *fakeEngine) Serialize() ([]byte, error)                         { return []byte("state"), nil }

type fixture struct {
	store    *store.Store
	announce *fakeAnnounce
	engine   *fakeEngine
	svc      *Service
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	f := &fixture{
		store:    st,
		announce: &fakeAnnounce{outcome: domain.SendOutcome{Success: true}},
		engine:   &fakeEngine{},
	}
	f.svc = New(st, st, st, f.announce, f.engine, cfg)
	return f
}

func TestInitialize_CreatesPendingDiscussion(t *testing.T) {
	f := newFixture(t, Config{SelfName: "Me"})

	d, err := f.svc.Initialize(context.Background(), "owner", domain.Contact{
		UserID: "peer", Name: "Peer", PublicKeys: []byte("keys"),
	}, "hello there")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, domain.DiscussionPending, d.Status)
	assert.Equal(t, domain.DirectionInitiated, d.Direction)
	assert.Equal(t, "hello there", d.AnnouncementMessage)

	require.Len(t, f.announce.payloads, 1)
	assert.Equal(t, "Me:hello there", f.announce.payloads[0])

	c, found, err := f.store.ContactByUserID("owner", "peer")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Peer", c.Name)
}

func TestInitialize_NoSelfNameOmitsPrefix(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.svc.Initialize(context.Background(), "owner", domain.Contact{
		UserID: "peer", PublicKeys: []byte("keys"),
	}, "hello")
	require.NoError(t, err)
	require.Len(t, f.announce.payloads, 1)
	assert.Equal(t, "hello", f.announce.payloads[0])
}

func TestInitialize_AnnouncementFailureIsGeneric(t *testing.T) {
	f := newFixture(t, Config{SelfName: "Me"})
	f.announce.outcome = domain.SendOutcome{Err: errors.New("relay timeout")}

	d, err := f.svc.Initialize(context.Background(), "owner", domain.Contact{
		UserID: "peer", PublicKeys: []byte("keys"),
	}, "hello")
	assert.Nil(t, d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInitializationFailed))
	assert.NotContains(t, err.Error(), "relay timeout", "detail belongs in the log, not the error")
}

func TestInitialize_ReusesExistingDiscussion(t *testing.T) {
	f := newFixture(t, Config{SelfName: "Me"})
	require.NoError(t, f.store.SaveDiscussion(&domain.Discussion{
		OwnerUserID: "owner", ContactUserID: "peer",
		Status: domain.DiscussionClosed, Direction: domain.DirectionInitiated,
	}))

	d, err := f.svc.Initialize(context.Background(), "owner", domain.Contact{
		UserID: "peer", PublicKeys: []byte("keys"),
	}, "second try")
	require.NoError(t, err)
	assert.Equal(t, domain.DiscussionPending, d.Status)

	all, err := f.store.DiscussionsByStatus("owner", domain.DiscussionPending)
	require.NoError(t, err)
	assert.Len(t, all, 1, "re-initializing must not create a second row")
}

func TestAccept_RequiresReceivedDirection(t *testing.T) {
	f := newFixture(t, Config{SelfName: "Me"})

	err := f.svc.Accept(context.Background(), &domain.Discussion{
		OwnerUserID: "owner", ContactUserID: "peer",
		Direction: domain.DirectionInitiated, Status: domain.DiscussionPending,
	})
	assert.Error(t, err)
	assert.Empty(t, f.announce.payloads)
}

func TestAccept_RequiresPendingOrSendFailed(t *testing.T) {
	f := newFixture(t, Config{SelfName: "Me"})

	err := f.svc.Accept(context.Background(), &domain.Discussion{
		OwnerUserID: "owner", ContactUserID: "peer",
		Direction: domain.DirectionReceived, Status: domain.DiscussionActive,
	})
	assert.Error(t, err)
}

func TestAccept_SendsReciprocalAnnouncement(t *testing.T) {
	f := newFixture(t, Config{SelfName: "Me"})

	err := f.svc.Accept(context.Background(), &domain.Discussion{
		OwnerUserID: "owner", ContactUserID: "peer",
		Direction: domain.DirectionReceived, Status: domain.DiscussionPending,
	})
	require.NoError(t, err)
	require.Len(t, f.announce.payloads, 1)
	assert.Equal(t, "Me:", f.announce.payloads[0])
}

func TestRefuse_ClosesAndDiscards(t *testing.T) {
	f := newFixture(t, Config{})
	d := &domain.Discussion{
		OwnerUserID: "owner", ContactUserID: "peer",
		Direction: domain.DirectionReceived, Status: domain.DiscussionPending,
		InitiationAnnouncement: []byte("retained"),
	}
	require.NoError(t, f.store.SaveDiscussion(d))

	require.NoError(t, f.svc.Refuse(context.Background(), d))

	got, found, err := f.store.DiscussionByPeer("owner", "peer")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.DiscussionClosed, got.Status)
	assert.Empty(t, got.InitiationAnnouncement)
	assert.Equal(t, []domain.UserID{"peer"}, f.engine.discarded)
}

func TestRemove_CascadesAndDiscards(t *testing.T) {
	f := newFixture(t, Config{})
	require.NoError(t, f.store.SaveContact(&domain.Contact{
		OwnerUserID: "owner", UserID: "peer", Name: "Peer", PublicKeys: []byte("keys"),
	}))
	d := &domain.Discussion{
		OwnerUserID: "owner", ContactUserID: "peer",
		Direction: domain.DirectionInitiated, Status: domain.DiscussionActive,
	}
	require.NoError(t, f.store.SaveDiscussion(d))
	require.NoError(t, f.store.SaveMessage(&domain.Message{
		ID: "m1", OwnerUserID: "owner", ContactUserID: "peer",
		Content: "bye", Type: domain.MessageTypeText,
		Direction: domain.MessageOutgoing, Status: domain.MessageSent,
		Timestamp: time.Now(),
	}))

	require.NoError(t, f.svc.Remove(context.Background(), d))

	_, found, err := f.store.DiscussionByPeer("owner", "peer")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = f.store.ContactByUserID("owner", "peer")
	require.NoError(t, err)
	assert.False(t, found)
	msgs, err := f.store.MessagesByStatus("owner", "peer", domain.MessageSent)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, []domain.UserID{"peer"}, f.engine.discarded)
}

func TestIsStableState(t *testing.T) {
	f := newFixture(t, Config{})

	assert.True(t, f.svc.IsStableState(&domain.Discussion{Status: domain.DiscussionActive}))
	assert.True(t, f.svc.IsStableState(&domain.Discussion{Status: domain.DiscussionClosed}))
	assert.False(t, f.svc.IsStableState(&domain.Discussion{Status: domain.DiscussionPending}))
	assert.False(t, f.svc.IsStableState(&domain.Discussion{Status: domain.DiscussionSendFailed}))
}
