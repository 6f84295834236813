package models

import "time"

// User is a record of the local user directory.
// Only the bcrypt hash of the password is stored.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Admin        bool      `json:"admin"`
	Sessions     []Session `json:"sessions"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is one logged-in device
type Session struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the public view of a user
type UserSummary struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Admin          bool      `json:"admin"`
	ActiveSessions int       `json:"activeSessions"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary strips credentials from a user record
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		Admin:          u.Admin,
		ActiveSessions: len(u.Sessions),
		CreatedAt:      u.CreatedAt,
	}
}
