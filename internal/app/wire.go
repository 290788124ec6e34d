package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"boardline/internal/domain"
	"boardline/internal/engine"
	"boardline/internal/services/announce"
	"boardline/internal/services/discussion"
	"boardline/internal/services/message"
	"boardline/internal/services/refresh"
	"boardline/internal/store"
	"boardline/internal/transport"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Store       *store.Store
	States      *store.StateBlobStore
	Board       domain.Transport
	Engine      domain.SessionEngine
	Announce    domain.AnnouncementService
	Messages    domain.MessageService
	Refresh     domain.RefreshService
	Discussions domain.DiscussionService
}

// NewWire constructs the dependency graph from cfg.
//
// The wiring subscribes the message service's waiting-queue flush to the
// session-became-active event before handing the event on to the caller's
// own callback; messages queued before peer acceptance would otherwise stay
// stuck forever.
func NewWire(cfg Config) (*Wire, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if cfg.Owner == "" {
		return nil, fmt.Errorf("owner user id is required")
	}

	dsn := cfg.Settings.DatabaseDSN
	if dsn == "" {
		dsn = filepath.Join(cfg.Settings.Home, "boardline.db")
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	states := store.NewStateBlobStore(cfg.Settings.Home)

	board, err := transport.NewBoardClient(cfg.Settings.BoardURL, cfg.Settings.Protocol.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	var guarded domain.SessionEngine
	if cfg.Engine != nil {
		guarded = engine.NewGuard(cfg.Engine, states, cfg.StateName, cfg.StatePassphrase)
	}

	// The message service is referenced from the event hook below before it
	// is constructed; the closure captures the variable, not the value.
	var messageSvc *message.Service

	events := cfg.Events
	callerActive := events.OnSessionBecameActive
	events.OnSessionBecameActive = func(peer domain.UserID) {
		if messageSvc != nil {
			if _, err := messageSvc.ProcessWaitingMessages(context.Background(), cfg.Owner, peer); err != nil {
				log.Error().Err(err).Str("contactID", peer.String()).Msg("flushing waiting messages on activation failed")
			}
		}
		if callerActive != nil {
			callerActive(peer)
		}
	}

	announceSvc := announce.New(st, st, st, guarded, board, events, announce.Config{
		BrokenThreshold: cfg.Settings.Protocol.BrokenThreshold,
	})
	messageSvc = message.New(st, st, st, guarded, board, events, message.Config{
		DedupWindow: cfg.Settings.Protocol.DedupWindow,
	})
	refreshSvc := refresh.New(st, guarded, messageSvc, events, refresh.Config{})
	discussionSvc := discussion.New(st, st, st, announceSvc, guarded, discussion.Config{
		SelfName: cfg.SelfName,
	})

	return &Wire{
		Store:       st,
		States:      states,
		Board:       board,
		Engine:      guarded,
		Announce:    announceSvc,
		Messages:    messageSvc,
		Refresh:     refreshSvc,
		Discussions: discussionSvc,
	}, nil
}
