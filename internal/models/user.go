// Package models holds the records exchanged between the repositories, the
// services and the HTTP API. Every value is a snapshot scanned from the
// database; mutating one never touches stored state.
package models

import "time"

// User is a full account record. PasswordHash is never serialised.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	JoinAt       time.Time `json:"join_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// UserSummary is the public display projection of a User.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Summary projects u onto its display fields.
func (u *User) Summary() UserSummary {
	return UserSummary{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}

// Registration carries the fields needed to create an account.
type Registration struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}
