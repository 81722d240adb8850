package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// TokenStore persists the auth credential between runs. It doubles as the
// transport's token source, so a 401 can clear the persisted state directly.
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear()
}

type persistedCredential struct {
	Token string `json:"token"`
}

// FileTokenStore keeps the credential in a JSON file, the process-side
// equivalent of the browser's local storage.
type FileTokenStore struct {
	mu     sync.Mutex
	path   string
	token  string
	loaded bool
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.load()
	}
	return s.token
}

func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.loaded = true

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(persistedCredential{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("could not remove session file %s: %v", s.path, err)
	}
}

func (s *FileTokenStore) load() {
	s.loaded = true
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var cred persistedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		logrus.Warnf("corrupt session file %s, ignoring: %v", s.path, err)
		return
	}
	s.token = cred.Token
}
