// Package model defines the data structures used throughout the application.
package model

// User is a registered account.
//
// PasswordHash holds the bcrypt hash stored in the users.password column.
// The `json:"-"` tag keeps it out of every API response.
type User struct {
	ID           int64  `json:"id"       db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-"        db:"password"`
}
