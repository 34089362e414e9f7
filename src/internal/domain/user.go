package domain

import "time"

type User struct {
	ID             string
	Username       string
	Email          string
	Identification string
	PhoneNumber    *string
	PasswordHash   string
	CreatedAt      time.Time
}
