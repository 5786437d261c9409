package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stemsi/qprep-client/internal/config"
	"github.com/stemsi/qprep-client/internal/model"
)

// AuthStore holds the bearer token and cached profile. Values are read from
// disk once and served from memory afterwards.
type AuthStore struct {
	kv *Store

	mu     sync.Mutex
	loaded bool
	token  string
	user   *model.User
}

func (a *AuthStore) load() {
	if a.loaded {
		return
	}
	a.loaded = true

	ctx := context.Background()
	token, ok, err := a.kv.GetValue(ctx, config.StorageKey.AccessToken)
	if err != nil {
		a.kv.log.Warn().Err(err).Msg("read token failed; treating as logged out")
	}
	if ok {
		a.token = token
	}

	raw, ok, err := a.kv.GetValue(ctx, config.StorageKey.User)
	if err != nil {
		a.kv.log.Warn().Err(err).Msg("read user failed")
	}
	if ok {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			a.kv.log.Warn().Err(err).Msg("stored user is malformed; ignoring")
		} else {
			a.user = &u
		}
	}
}

// Token returns the stored bearer token, or "" when none is stored or the
// token is a JWT whose exp claim has passed.
func (a *AuthStore) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.load()
	if a.token == "" || a.expired(a.token) {
		return ""
	}
	return a.token
}

// expired inspects the exp claim without verifying the signature; the
// backend remains the judge of validity. Opaque tokens never expire here.
func (a *AuthStore) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(a.kv.now())
}

// User returns the cached profile, or nil.
func (a *AuthStore) User() *model.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.load()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// IsAuthenticated reports whether a usable token is stored.
func (a *AuthStore) IsAuthenticated() bool {
	return a.Token() != ""
}

// Save persists a freshly issued token and its user.
func (a *AuthStore) Save(ctx context.Context, token string, user *model.User) error {
	if err := a.kv.SetValue(ctx, config.StorageKey.AccessToken, token); err != nil {
		return err
	}
	if err := a.SaveUser(ctx, user); err != nil {
		return err
	}

	a.mu.Lock()
	a.loaded = true
	a.token = token
	a.mu.Unlock()
	return nil
}

// SaveUser replaces the cached profile.
func (a *AuthStore) SaveUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := a.kv.SetValue(ctx, config.StorageKey.User, string(raw)); err != nil {
		return err
	}

	u := *user
	a.mu.Lock()
	a.user = &u
	a.mu.Unlock()
	return nil
}

// Clear forgets the token and user.
func (a *AuthStore) Clear(ctx context.Context) error {
	if err := a.kv.DeleteValues(ctx, config.StorageKey.AccessToken, config.StorageKey.User); err != nil {
		return err
	}
	a.mu.Lock()
	a.loaded = true
	a.token = ""
	a.user = nil
	a.mu.Unlock()
	return nil
}
