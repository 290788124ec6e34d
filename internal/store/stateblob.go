package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"boardline/internal/domain"
	"boardline/internal/util/memzero"
)

const (
	// The current supported version of the encrypted blob format on disk.
	stateBlobFormatVersion = 1

	stateBlobSuffix = ".state.enc"
)

var (
	// ErrStateExists is returned when creating a session whose name is taken.
	ErrStateExists = errors.New("session state already exists")

	// ErrStateNotFound is returned when unlocking an unknown session name.
	ErrStateNotFound = errors.New("session state not found")

	// Returned when the passphrase is incorrect or the blob was modified.
	errWrongPassphrase = errors.New("wrong passphrase or corrupted state")
)

// blob is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// StateBlobStore keeps each named session's engine state in its own
// passphrase-encrypted file under dir. Sessions are independent; unlocking
// one never touches another.
type StateBlobStore struct {
	dir string
	mu  sync.Mutex
}

// NewStateBlobStore returns a StateBlobStore rooted at dir.
func NewStateBlobStore(dir string) *StateBlobStore {
	return &StateBlobStore{dir: dir}
}

func (s *StateBlobStore) path(name string) string {
	return filepath.Join(s.dir, name+stateBlobSuffix)
}

// CreateState seals raw under passphrase for a new session name.
func (s *StateBlobStore) CreateState(name, passphrase string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(name)); err == nil {
		return ErrStateExists
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return s.write(name, passphrase, raw)
}

// UnlockState opens the named blob with passphrase.
func (s *StateBlobStore) UnlockState(name, passphrase string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return decryptBlob(passphrase, b)
}

// SaveState reseals raw over an existing session.
func (s *StateBlobStore) SaveState(name, passphrase string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(name)); errors.Is(err, os.ErrNotExist) {
		return ErrStateNotFound
	} else if err != nil {
		return err
	}
	return s.write(name, passphrase, raw)
}

func (s *StateBlobStore) write(name, passphrase string, raw []byte) error {
	out, err := encryptBlob(passphrase, raw)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(name), out, 0o600)
}

// encryptBlob derives a key from passphrase and seals raw into a JSON blob.
func encryptBlob(passphrase string, raw []byte) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	N, r, p := scryptParamsDefault()
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(blob{
		V:      stateBlobFormatVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// decryptBlob opens the JSON blob using a key derived from passphrase.
func decryptBlob(passphrase string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > stateBlobFormatVersion {
		return nil, fmt.Errorf("unsupported state blob version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// Compile-time assertion that StateBlobStore implements domain.StateStore.
var _ domain.StateStore = (*StateBlobStore)(nil)
