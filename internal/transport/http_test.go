package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardline/internal/domain"
)

// newBoardServer spins up a minimal in-memory board for client tests. It
// writes JSON without a Content-Type header; the client must still decode
// such unlabeled responses.
func newBoardServer(t *testing.T) (*httptest.Server, map[string][]byte) {
	t.Helper()
	slots := map[string][]byte{}
	var announcements []domain.AnnouncementRecord

	mux := http.NewServeMux()
	mux.HandleFunc("/announcements", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(announcements)
		case http.MethodPost:
			var body struct {
				Data []byte `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			rec := domain.AnnouncementRecord{Counter: uint64(len(announcements) + 1), Data: body.Data}
			announcements = append(announcements, rec)
			json.NewEncoder(w).Encode(map[string]uint64{"counter": rec.Counter})
		}
	})
	mux.HandleFunc("/board/", func(w http.ResponseWriter, r *http.Request) {
		seeker := strings.TrimPrefix(r.URL.Path, "/board/")
		switch r.Method {
		case http.MethodGet:
			data, ok := slots[seeker]
			if !ok {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(map[string][]byte{"data": data})
		case http.MethodPut:
			var body struct {
				Data []byte `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			slots[seeker] = body.Data
			w.WriteHeader(http.StatusNoContent)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, slots
}

func TestBoardClient_AnnouncementRoundTrip(t *testing.T) {
	srv, _ := newBoardServer(t)
	client, err := NewBoardClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	counter, err := client.SendAnnouncement(context.Background(), []byte("ann-1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), counter)

	counter, err = client.SendAnnouncement(context.Background(), []byte("ann-2"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), counter)

	recs, err := client.FetchAnnouncements(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, []byte("ann-1"), recs[0].Data)
}

func TestBoardClient_EmptySlotIsNotAnError(t *testing.T) {
	srv, _ := newBoardServer(t)
	client, err := NewBoardClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	data, found, err := client.FetchMessage(context.Background(), "empty-slot")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestBoardClient_MessageRoundTrip(t *testing.T) {
	srv, slots := newBoardServer(t)
	client, err := NewBoardClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, client.SendMessage(context.Background(), "slot-1", []byte("ciphertext")))
	assert.Equal(t, []byte("ciphertext"), slots["slot-1"])

	data, found, err := client.FetchMessage(context.Background(), "slot-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("ciphertext"), data)
}

func TestBoardClient_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client, err := NewBoardClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = client.SendAnnouncement(context.Background(), []byte("ann"))
	assert.Error(t, err)
	_, _, err = client.FetchMessage(context.Background(), "slot")
	assert.Error(t, err)
}

func TestNewBoardClient_RequiresBaseURL(t *testing.T) {
	_, err := NewBoardClient("", time.Second)
	assert.Error(t, err)
}
