package models

import "time"

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	MobileNumber string
	PasswordHash []byte
	Active       bool
	AvatarURL    *string
	Groups       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
