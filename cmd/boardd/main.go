package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"boardline/internal/domain"
)

type memoryBoard struct {
	mu            sync.RWMutex
	announcements []domain.AnnouncementRecord
	slots         map[string][]byte
	keys          map[string][]byte
}

func newMemoryBoard() *memoryBoard {
	return &memoryBoard{
		slots: make(map[string][]byte),
		keys:  make(map[string][]byte),
	}
}

type dataBody struct {
	Data []byte `json:"data"`
}

type keysBody struct {
	Keys []byte `json:"keys"`
}

func main() {
	mb := newMemoryBoard()

	http.HandleFunc("/announcements", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			defer r.Body.Close()
			var b dataBody
			if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			mb.mu.Lock()
			counter := uint64(len(mb.announcements) + 1)
			mb.announcements = append(mb.announcements, domain.AnnouncementRecord{Counter: counter, Data: b.Data})
			mb.mu.Unlock()
			fmt.Println("Received announcement", counter)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]uint64{"counter": counter})
		case http.MethodGet:
			since, _ := strconv.ParseUint(r.URL.Query().Get("since"), 10, 64)
			mb.mu.RLock()
			out := make([]domain.AnnouncementRecord, 0)
			for _, a := range mb.announcements {
				if a.Counter > since {
					out = append(out, a)
				}
			}
			mb.mu.RUnlock()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(out)
		default:
			http.Error(w, "method not allowed", 405)
		}
	})

	http.HandleFunc("/board/", func(w http.ResponseWriter, r *http.Request) {
		seeker := strings.TrimPrefix(r.URL.Path, "/board/")
		switch r.Method {
		case http.MethodPut:
			defer r.Body.Close()
			var b dataBody
			if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			mb.mu.Lock()
			mb.slots[seeker] = b.Data
			mb.mu.Unlock()
			w.WriteHeader(200)
		case http.MethodGet:
			mb.mu.RLock()
			data, ok := mb.slots[seeker]
			mb.mu.RUnlock()
			if !ok {
				http.Error(w, "not found", 404)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(dataBody{Data: data})
		default:
			http.Error(w, "method not allowed", 405)
		}
	})

	http.HandleFunc("/keys/", func(w http.ResponseWriter, r *http.Request) {
		user := strings.TrimPrefix(r.URL.Path, "/keys/")
		switch r.Method {
		case http.MethodPost:
			defer r.Body.Close()
			var b keysBody
			if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			mb.mu.Lock()
			mb.keys[user] = b.Keys
			mb.mu.Unlock()
			fmt.Println("Received keys for", user)
			w.WriteHeader(200)
		case http.MethodGet:
			mb.mu.RLock()
			keys, ok := mb.keys[user]
			mb.mu.RUnlock()
			if !ok {
				http.Error(w, "not found", 404)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(keysBody{Keys: keys})
		default:
			http.Error(w, "method not allowed", 405)
		}
	})

	log.Println("board listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", nil))
}
