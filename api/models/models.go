// Package models holds the API-facing view of the forum records. Unlike the
// core collections, API models never carry passwords.
package models

import "github.com/agorabbs/agora/forum"

// User is the redacted account view returned to clients.
type User struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// ToUser converts a forum user, dropping the password.
func ToUser(u *forum.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}

// ToUsers converts a slice of forum users, dropping the passwords.
func ToUsers(users []forum.User) []User {
	result := make([]User, len(users))
	for i := range users {
		result[i] = *ToUser(&users[i])
	}
	return result
}
