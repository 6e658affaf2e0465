package domain

import "time"

// User represents a registered account. ID is assigned by the store on
// insert. Image is the stored upload filename, empty when none was provided.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	Contact      string
	Image        string
	Active       bool
	CreatedAt    time.Time
}
