// Package session holds the authenticated customer's token, profile and config,
// mirrored to durable storage so a restart resumes the session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/playsafe/rgportal/internal/storage"
	"github.com/playsafe/rgportal/pkg/domain"
)

// Storage keys.
const (
	KeyToken    = "rg_auth_token"
	KeyCustomer = "rg_customer"
	KeyConfig   = "rg_config"
	KeyLanguage = "rg_language"
)

// DefaultLanguage is used until the customer picks one.
const DefaultLanguage = "fr"

// State is an immutable copy of the session.
type State struct {
	Token    string
	Customer *domain.Customer
	Config   domain.Config
	Language string
}

// IsAuthenticated reports whether a token is held.
func (s State) IsAuthenticated() bool {
	return s.Token != ""
}

// RemoteLogout revokes the token on the backend.
type RemoteLogout func(ctx context.Context) error

// Store is the single owner of session state.
type Store struct {
	kv     storage.Store
	logger *slog.Logger

	mu       sync.RWMutex
	token    string
	customer *domain.Customer
	config   domain.Config
	language string

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// New restores the session from kv. Malformed entries are purged and treated
// as absent; a token is only kept alongside a valid customer.
func New(ctx context.Context, kv storage.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:       kv,
		logger:   logger,
		config:   domain.Config{},
		language: DefaultLanguage,
		subs:     make(map[int]func(State)),
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	token, _ := s.read(ctx, KeyToken)
	token = strings.TrimSpace(token)

	var customer *domain.Customer
	if raw, ok := s.read(ctx, KeyCustomer); ok {
		var c domain.Customer
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			s.logger.Warn("purging malformed customer entry", "error", err)
			s.purge(ctx, KeyCustomer, KeyToken)
			token = ""
		} else {
			customer = &c
		}
	}

	switch {
	case token != "" && customer == nil:
		s.logger.Warn("purging token without customer")
		s.purge(ctx, KeyToken)
		token = ""
	case token == "" && customer != nil:
		s.purge(ctx, KeyCustomer)
		customer = nil
	}

	if raw, ok := s.read(ctx, KeyConfig); ok {
		var cfg domain.Config
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil || cfg == nil {
			s.logger.Warn("purging malformed config entry", "error", err)
			s.purge(ctx, KeyConfig)
		} else {
			s.config = cfg
		}
	}

	if lang, ok := s.read(ctx, KeyLanguage); ok && strings.TrimSpace(lang) != "" {
		s.language = strings.TrimSpace(lang)
	}

	s.token = token
	s.customer = customer
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("session storage read failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (s *Store) purge(ctx context.Context, keys ...string) {
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.logger.Warn("session storage purge failed", "keys", keys, "error", err)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	var cust *domain.Customer
	if s.customer != nil {
		c := *s.customer
		cust = &c
	}
	return State{
		Token:    s.token,
		Customer: cust,
		Config:   s.config.Merge(nil),
		Language: s.language,
	}
}

// Token returns the bearer token, or "". It satisfies client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Login replaces the token and customer, then merges configPatch.
func (s *Store) Login(ctx context.Context, token string, customer *domain.Customer, configPatch domain.Config) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session.Login: empty token")
	}
	if customer == nil {
		return errors.New("session.Login: missing customer")
	}
	rawCustomer, err := json.Marshal(customer)
	if err != nil {
		return fmt.Errorf("session.Login: marshal customer: %w", err)
	}

	s.mu.Lock()
	merged := s.config.Merge(configPatch)
	rawConfig, err := json.Marshal(merged)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session.Login: marshal config: %w", err)
	}
	if err := s.kv.Set(ctx, KeyCustomer, string(rawCustomer)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session.Login: %w", err)
	}
	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session.Login: %w", err)
	}
	if err := s.kv.Set(ctx, KeyConfig, string(rawConfig)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session.Login: %w", err)
	}
	c := *customer
	s.token = token
	s.customer = &c
	s.config = merged
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return nil
}

// UpdateConfig shallow-merges patch into the config. Nil values overwrite.
// Patches arriving while no session is held are dropped.
func (s *Store) UpdateConfig(ctx context.Context, patch domain.Config) error {
	if len(patch) == 0 {
		return nil
	}
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		s.logger.Debug("config patch dropped, no session", "keys", len(patch))
		return nil
	}
	merged := s.config.Merge(patch)
	raw, err := json.Marshal(merged)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session.UpdateConfig: %w", err)
	}
	if err := s.kv.Set(ctx, KeyConfig, string(raw)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session.UpdateConfig: %w", err)
	}
	s.config = merged
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return nil
}

// Logout revokes the token remotely, then clears local state no matter what
// the backend answered. Remote failures are logged only.
func (s *Store) Logout(ctx context.Context, remote RemoteLogout) {
	if remote != nil && s.IsAuthenticated() {
		if err := remote(ctx); err != nil {
			s.logger.Warn("remote logout failed, clearing local session anyway", "error", err)
		}
	}
	s.Clear(ctx)
}

// Clear drops token, customer and config locally. The language preference survives.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	had := s.token != "" || s.customer != nil || len(s.config) > 0
	s.token = ""
	s.customer = nil
	s.config = domain.Config{}
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.purge(ctx, KeyToken, KeyCustomer, KeyConfig)
	if had {
		s.notify(st)
	}
}

// Language returns the preferred display language.
func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetLanguage stores the preferred display language.
func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return errors.New("session.SetLanguage: empty language")
	}
	if err := s.kv.Set(ctx, KeyLanguage, lang); err != nil {
		return fmt.Errorf("session.SetLanguage: %w", err)
	}
	s.mu.Lock()
	s.language = lang
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return nil
}

// TokenExpiry reads the exp claim of a JWT bearer token. The signature is not
// checked; the value is for display only. ok is false for opaque tokens.
func (s *Store) TokenExpiry() (time.Time, bool) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Subscribe registers fn to receive every state change. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
