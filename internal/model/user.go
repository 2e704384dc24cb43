package model

import "time"

// User status values. The only legal transition is pending -> confirmed,
// triggered by presenting the matching confirmation code.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// maskedPassword replaces the stored hash on any copy of the record that
// leaves the persistence layer, e.g. the snapshot kept in a session.
const maskedPassword = "****"

// User represents a registered account.
type User struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Username         string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Password         string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never plaintext
	Email            string    `json:"email" gorm:"size:255"`
	Status           string    `json:"status" gorm:"size:50;default:'pending'"`
	ConfirmationCode string    `json:"-" gorm:"size:64;index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Pending reports whether the account still awaits email confirmation.
func (u *User) Pending() bool {
	return u.Status == StatusPending
}

// SessionCopy returns a value copy of the user with the password hash masked.
// The persisted hash must never travel with the session record.
func (u *User) SessionCopy() User {
	snapshot := *u
	snapshot.Password = maskedPassword
	return snapshot
}
