package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xeniahunt/huntclient/internal/models"
)

const fileName = "session.json"

type sessionFile struct {
	TeamName   string `json:"teamName,omitempty"`
	Token      string `json:"token,omitempty"`
	AdminToken string `json:"adminToken,omitempty"`
	AvatarSeed string `json:"avatarSeed,omitempty"`
}

// Store persists the session token and team identity across runs. Login and
// logout are the only writers; every outgoing request reads through the
// token-source views. Values are replaced wholesale under the mutex.
type Store struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
	data sessionFile
}

// NewStore opens (or creates) the session file under dataDir and rehydrates
// any existing session.
func NewStore(dataDir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	s := &Store{
		path: filepath.Join(dataDir, fileName),
		log:  log,
	}

	raw, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		// A corrupt session file is recoverable: drop it and start logged out.
		log.Warn().Err(err).Str("path", s.path).Msg("discarding unreadable session file")
		s.data = sessionFile{}
	}
	return s, nil
}

// Current returns the rehydrated session, if any.
func (s *Store) Current() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Token == "" || s.data.TeamName == "" {
		return models.Session{}, false
	}
	return models.Session{TeamName: s.data.TeamName, Token: s.data.Token}, true
}

// SetSession stores a fresh login.
func (s *Store) SetSession(teamName, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.TeamName = teamName
	s.data.Token = token
	return s.persistLocked()
}

// Clear drops the player session. The admin token is independent and
// survives a player logout.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.TeamName = ""
	s.data.Token = ""
	return s.persistLocked()
}

func (s *Store) SetAdminToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.AdminToken = token
	return s.persistLocked()
}

func (s *Store) ClearAdminToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.AdminToken = ""
	return s.persistLocked()
}

func (s *Store) SetAvatarSeed(seed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.AvatarSeed = seed
	return s.persistLocked()
}

func (s *Store) AvatarSeed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.AvatarSeed
}

// Tokens returns the player-session token source for the API gateway.
func (s *Store) Tokens() TokenView {
	return TokenView{store: s, admin: false}
}

// AdminTokens returns the admin token source for the API gateway.
func (s *Store) AdminTokens() TokenView {
	return TokenView{store: s, admin: true}
}

// TokenView is a read-only view over one of the store's tokens. It satisfies
// clients.TokenSource.
type TokenView struct {
	store *Store
	admin bool
}

func (v TokenView) Token() string {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	if v.admin {
		return v.store.data.AdminToken
	}
	return v.store.data.Token
}

func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
