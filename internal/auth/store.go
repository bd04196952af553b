// Package auth persists the user's JWT pair and implements the
// refresh-once-after-401 policy the backend client relies on.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
)

// Tokens is the persisted shape of the session.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RefreshFunc exchanges a refresh token for a new access token. Wired to
// backend.Client.RefreshToken by the caller; kept as a plain func so the
// store does not depend on a concrete client.
type RefreshFunc func(ctx context.Context, refresh string) (access string, err error)

// Store holds the token pair in memory and mirrors it to disk, so separate
// companion processes share one session. When a passphrase is configured the
// file is sealed with AES-GCM; otherwise it is plain JSON with 0600 perms.
type Store struct {
	mu         sync.Mutex
	path       string
	passphrase string
	refresh    RefreshFunc

	access       string
	refreshToken string
}

// Option configures a Store.
type Option func(*Store)

// WithPassphrase encrypts the token file at rest.
func WithPassphrase(passphrase string) Option {
	return func(s *Store) { s.passphrase = passphrase }
}

// WithRefresher sets the refresh-token exchange used on 401s.
func WithRefresher(fn RefreshFunc) Option {
	return func(s *Store) { s.refresh = fn }
}

// NewStore creates a store backed by the file at path and loads any
// persisted session. A missing file is not an error: the store starts empty.
func NewStore(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetRefresher attaches the refresh exchange after construction, for wiring
// orders where the backend client is built from the store's config.
func (s *Store) SetRefresher(fn RefreshFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = fn
}

// SetTokens stores a freshly issued pair (login) and persists it.
func (s *Store) SetTokens(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = tokens.Access
	s.refreshToken = tokens.Refresh
	return s.save()
}

// Clear drops the session (logout) and removes the persisted file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refreshToken = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Tokens returns the current pair.
func (s *Store) Tokens() Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Tokens{Access: s.access, Refresh: s.refreshToken}
}

// HasSession reports whether any token is held.
func (s *Store) HasSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access != "" || s.refreshToken != ""
}

// Token implements backend.Authenticator. With no access token held it
// attempts one refresh before giving up.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.access != "" {
		token := s.access
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()
	return s.doRefresh(ctx)
}

// Invalidate implements backend.Authenticator: the stale token is discarded
// and one refresh attempt produces a replacement. Concurrent rejections each
// run their own refresh; the backend treats refresh as idempotent.
func (s *Store) Invalidate(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	if s.access == stale {
		s.access = ""
	}
	s.mu.Unlock()
	return s.doRefresh(ctx)
}

func (s *Store) doRefresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	refreshToken := s.refreshToken
	fn := s.refresh
	s.mu.Unlock()

	if refreshToken == "" || fn == nil {
		return "", backend.ErrMissingToken
	}

	access, err := fn(ctx, refreshToken)
	if err != nil || access == "" {
		// A dead refresh token ends the session, as the app does.
		s.mu.Lock()
		s.access = ""
		s.refreshToken = ""
		_ = s.save()
		s.mu.Unlock()
		if err != nil {
			return "", fmt.Errorf("%w: %v", backend.ErrMissingToken, err)
		}
		return "", backend.ErrMissingToken
	}

	s.mu.Lock()
	s.access = access
	err = s.save()
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	return access, nil
}

// Watch reloads the token file whenever another process rewrites it, until
// ctx is cancelled. It replaces in-memory state only on successful reads.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch token directory: %w", err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				s.mu.Lock()
				if err := s.loadLocked(); err != nil {
					log.Printf("auth: reload tokens: %v", err)
				}
				s.mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("auth: token watcher: %v", err)
			}
		}
	}()
	return nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	if isEncrypted(data) {
		if s.passphrase == "" {
			return fmt.Errorf("token file is encrypted but no passphrase is configured")
		}
		data, err = decryptTokens(data, s.passphrase)
		if err != nil {
			return err
		}
	}
	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("parse token file: %w", err)
	}
	s.access = tokens.Access
	s.refreshToken = tokens.Refresh
	return nil
}

// save persists the current pair. Callers hold s.mu.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	data, err := json.Marshal(Tokens{Access: s.access, Refresh: s.refreshToken})
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	if s.passphrase != "" {
		data, err = encryptTokens(data, s.passphrase)
		if err != nil {
			return err
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
