package models

import "time"

// Roles a profile can hold
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile represents a registered user
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	PushToken    *string   `json:"push_token,omitempty"`
	Role         string    `json:"role"`
	Banned       bool      `json:"banned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Summary returns the public subset of the profile
func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
}

// ProfileSummary is the author card shown next to posts and comments
type ProfileSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}
