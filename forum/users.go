package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/agorabbs/agora/store"
)

func findUser(users []User, username string) *User {
	for i := range users {
		if users[i].Username == username {
			return &users[i]
		}
	}
	return nil
}

// Register creates a new user. It fails with ErrUserExists if the username
// is already taken.
func (s *Service) Register(ctx context.Context, username, password string, isAdmin bool) error {
	return delayedErr(ctx, s, s.register(ctx, username, password, isAdmin))
}

func (s *Service) register(ctx context.Context, username, password string, isAdmin bool) error {
	users, err := loadList[User](ctx, s, keyUsers)
	if err != nil {
		return err
	}
	if findUser(users, username) != nil {
		return ErrUserExists
	}
	users = append(users, User{Username: username, Password: password, IsAdmin: isAdmin})
	if err := saveList(ctx, s, keyUsers, users); err != nil {
		return err
	}
	s.logAction(ctx, username, ActionRegister, nil)
	return nil
}

// Login checks the credentials against the users collection. On success the
// full user record becomes the current session.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	u, err := s.login(ctx, username, password)
	return delayed(ctx, s, u, err)
}

func (s *Service) login(ctx context.Context, username, password string) (*User, error) {
	users, err := loadList[User](ctx, s, keyUsers)
	if err != nil {
		return nil, err
	}
	user := findUser(users, username)
	if user == nil || user.Password != password {
		return nil, ErrInvalidCredentials
	}
	if err := s.saveSession(ctx, user); err != nil {
		return nil, err
	}
	s.logAction(ctx, username, ActionLogin, nil)
	u := *user
	return &u, nil
}

// Logout logs the action for the session user, if any, and clears the
// session slot unconditionally.
func (s *Service) Logout(ctx context.Context) error {
	return delayedErr(ctx, s, s.logout(ctx))
}

func (s *Service) logout(ctx context.Context) error {
	user, err := s.loadSession(ctx)
	if err != nil {
		return err
	}
	if user != nil {
		s.logAction(ctx, user.Username, ActionLogout, nil)
	}
	if err := s.store.Delete(ctx, keySession); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// SessionUser returns the current session record, or nil when nobody is
// logged in. The record is not validated against the users collection.
func (s *Service) SessionUser(ctx context.Context) (*User, error) {
	u, err := s.loadSession(ctx)
	return delayed(ctx, s, u, err)
}

// ChangeCredentials overwrites the user's username and/or password. Empty new
// values keep the existing ones. The log entry is keyed to the old username.
// Renaming to a taken username fails with ErrUserExists, and an active
// session referencing the old identity is refreshed in place.
func (s *Service) ChangeCredentials(ctx context.Context, username, newUsername, newPassword string) error {
	return delayedErr(ctx, s, s.changeCredentials(ctx, username, newUsername, newPassword))
}

func (s *Service) changeCredentials(ctx context.Context, username, newUsername, newPassword string) error {
	users, err := loadList[User](ctx, s, keyUsers)
	if err != nil {
		return err
	}
	user := findUser(users, username)
	if user == nil {
		return ErrUserNotFound
	}
	if newUsername != "" && newUsername != username && findUser(users, newUsername) != nil {
		return ErrUserExists
	}
	if newUsername != "" {
		user.Username = newUsername
	}
	if newPassword != "" {
		user.Password = newPassword
	}
	if err := saveList(ctx, s, keyUsers, users); err != nil {
		return err
	}

	session, err := s.loadSession(ctx)
	if err != nil {
		return err
	}
	if session != nil && session.Username == username {
		if err := s.saveSession(ctx, user); err != nil {
			return err
		}
	}

	s.logAction(ctx, username, ActionChangeCredentials, nil)
	return nil
}

// AllUsers returns the full users collection verbatim, passwords included.
func (s *Service) AllUsers(ctx context.Context) ([]User, error) {
	users, err := loadList[User](ctx, s, keyUsers)
	return delayed(ctx, s, users, err)
}

func (s *Service) loadSession(ctx context.Context) (*User, error) {
	data, err := s.store.Get(ctx, keySession)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &user, nil
}

func (s *Service) saveSession(ctx context.Context, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.store.Set(ctx, keySession, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	log.Debug("session updated", "username", user.Username)
	return nil
}
