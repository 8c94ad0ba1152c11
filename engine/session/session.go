package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoUser is returned when no user profile has been stored.
var ErrNoUser = errors.New("user not authenticated")

// User is the profile stored at sign-in.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Sub       string `json:"sub,omitempty"`
}

// FullName returns "First Last", or "Unknown User" when either part is missing.
func (u User) FullName() string {
	if u.FirstName == "" || u.LastName == "" {
		return "Unknown User"
	}
	return u.FirstName + " " + u.LastName
}

// Tokens are the credentials returned by a successful sign-in.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IDToken      string `json:"idToken"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`
}

// Session is typed access to the values kept in a Store.
type Session struct {
	store Store
}

func New(store Store) *Session {
	return &Session{store: store}
}

// Store returns the underlying store.
func (s *Session) Store() Store {
	return s.store
}

// SaveSignIn persists the tokens and the serialized user profile.
func (s *Session) SaveSignIn(tokens Tokens, user User) error {
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}
	values := [][2]string{
		{KeyAccessToken, tokens.AccessToken},
		{KeyRefreshToken, tokens.RefreshToken},
		{KeyIDToken, tokens.IDToken},
		{KeyUserInfo, string(profile)},
	}
	for _, kv := range values {
		if err := s.store.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to store %s: %w", kv[0], err)
		}
	}
	return nil
}

// AccessToken returns the bearer token, if any.
func (s *Session) AccessToken() (string, bool) {
	v, ok := s.store.Get(KeyAccessToken)
	return v, ok && strings.TrimSpace(v) != ""
}

// RefreshToken returns the refresh token, if any.
func (s *Session) RefreshToken() (string, bool) {
	v, ok := s.store.Get(KeyRefreshToken)
	return v, ok && v != ""
}

// IDToken returns the identity token, if any.
func (s *Session) IDToken() (string, bool) {
	v, ok := s.store.Get(KeyIDToken)
	return v, ok && v != ""
}

// IsAuthenticated reports whether an access token is present.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.AccessToken()
	return ok
}

// CurrentUser decodes the stored profile. A corrupt profile reads as absent.
func (s *Session) CurrentUser() (User, error) {
	raw, ok := s.store.Get(KeyUserInfo)
	if !ok || raw == "" {
		return User{}, ErrNoUser
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, ErrNoUser
	}
	if u.Email == "" {
		return User{}, ErrNoUser
	}
	return u, nil
}

// Reset removes every persisted session value.
func (s *Session) Reset() error {
	return s.store.Clear()
}

// ErrExpired marks a server rejection of the stored credentials.
// The session has already been reset when it is returned.
var ErrExpired = errors.New("session expired")
