package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"boardline/internal/domain"
)

// BoardClient talks to a board server over HTTP.
type BoardClient struct {
	http *resty.Client
}

// NewBoardClient configures a client for the board server at baseURL.
func NewBoardClient(baseURL string, timeout time.Duration) (*BoardClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("board baseURL cannot be empty")
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &BoardClient{http: client}, nil
}

type announcementPost struct {
	Data []byte `json:"data"`
}

type announcementPosted struct {
	Counter uint64 `json:"counter"`
}

type boardSlot struct {
	Data []byte `json:"data"`
}

type publicKeyRecord struct {
	Keys []byte `json:"keys"`
}

// FetchAnnouncements returns log entries with counters greater than since.
func (c *BoardClient) FetchAnnouncements(ctx context.Context, since uint64) ([]domain.AnnouncementRecord, error) {
	var out []domain.AnnouncementRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("since", strconv.FormatUint(since, 10)).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/announcements")
	if err != nil {
		return nil, fmt.Errorf("fetch announcements: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch announcements: %s", resp.Status())
	}
	return out, nil
}

// SendAnnouncement appends to the log and returns the assigned counter.
func (c *BoardClient) SendAnnouncement(ctx context.Context, data []byte) (uint64, error) {
	var out announcementPosted
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(announcementPost{Data: data}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/announcements")
	if err != nil {
		return 0, fmt.Errorf("send announcement: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("send announcement: %s", resp.Status())
	}
	return out.Counter, nil
}

// FetchMessage reads the board slot addressed by seeker. An empty slot is
// (nil, false, nil), not an error.
func (c *BoardClient) FetchMessage(ctx context.Context, seeker domain.Seeker) ([]byte, bool, error) {
	var out boardSlot
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/board/" + url.PathEscape(seeker.String()))
	if err != nil {
		return nil, false, fmt.Errorf("fetch board slot: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.IsError() {
		return nil, false, fmt.Errorf("fetch board slot: %s", resp.Status())
	}
	return out.Data, true, nil
}

// SendMessage writes an encrypted payload into the slot addressed by seeker.
func (c *BoardClient) SendMessage(ctx context.Context, seeker domain.Seeker, data []byte) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(boardSlot{Data: data}).
		Put("/board/" + url.PathEscape(seeker.String()))
	if err != nil {
		return fmt.Errorf("send board message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send board message: %s", resp.Status())
	}
	return nil
}

// FetchPublicKey looks up a participant's published key material.
func (c *BoardClient) FetchPublicKey(ctx context.Context, user domain.UserID) (domain.PublicKeys, error) {
	var out publicKeyRecord
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/keys/" + url.PathEscape(user.String()))
	if err != nil {
		return nil, fmt.Errorf("fetch public key: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch public key for %s: %s", user, resp.Status())
	}
	return domain.PublicKeys(out.Keys), nil
}

// PostPublicKey publishes key material under the user id.
func (c *BoardClient) PostPublicKey(ctx context.Context, user domain.UserID, keys domain.PublicKeys) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(publicKeyRecord{Keys: keys}).
		Post("/keys/" + url.PathEscape(user.String()))
	if err != nil {
		return fmt.Errorf("post public key: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post public key for %s: %s", user, resp.Status())
	}
	log.Debug().Str("userID", user.String()).Msg("published public key")
	return nil
}

// Compile-time assertion that BoardClient implements domain.Transport.
var _ domain.Transport = (*BoardClient)(nil)
