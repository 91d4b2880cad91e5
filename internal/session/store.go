// Package session keeps a realm's credential pair and the profile of the
// logged-in account in persistent client storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

type Keys struct {
	Access  string
	Refresh string
	User    string
}

var (
	UserKeys  = Keys{Access: "authToken", Refresh: "refreshToken", User: "authUser"}
	AdminKeys = Keys{Access: "adminToken", Refresh: "adminRefreshToken", User: "adminUser"}
)

type Store struct {
	kv   storage.Store
	keys Keys
}

func NewStore(kv storage.Store, keys Keys) *Store {
	return &Store{kv: kv, keys: keys}
}

func NewUserStore(kv storage.Store) *Store {
	return NewStore(kv, UserKeys)
}

func NewAdminStore(kv storage.Store) *Store {
	return NewStore(kv, AdminKeys)
}

// Load returns the stored pair. Missing keys yield empty tokens, not errors.
func (s *Store) Load(ctx context.Context) (domain.TokenPair, error) {
	access, err := s.get(ctx, s.keys.Access)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.get(ctx, s.keys.Refresh)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Save writes the access token and, when present, the refresh token. An
// empty refresh token leaves the stored one untouched.
func (s *Store) Save(ctx context.Context, pair domain.TokenPair) error {
	if pair.AccessToken != "" {
		if err := s.kv.Set(ctx, s.keys.Access, []byte(pair.AccessToken)); err != nil {
			return fmt.Errorf("save access token: %w", err)
		}
	}
	if pair.RefreshToken != "" {
		if err := s.kv.Set(ctx, s.keys.Refresh, []byte(pair.RefreshToken)); err != nil {
			return fmt.Errorf("save refresh token: %w", err)
		}
	}
	return nil
}

// Clear removes both tokens and the cached profile.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{s.keys.Access, s.keys.Refresh, s.keys.User} {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) IsAuthenticated(ctx context.Context) bool {
	access, err := s.get(ctx, s.keys.Access)
	return err == nil && access != ""
}

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user failed: %w", err)
	}
	return s.kv.Set(ctx, s.keys.User, data)
}

// LoadUser returns storage.ErrNotFound when nobody has logged in.
func (s *Store) LoadUser(ctx context.Context) (*domain.User, error) {
	data, err := s.kv.Get(ctx, s.keys.User)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user failed: %w", err)
	}
	return &user, nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return string(v), nil
}
