package domain

import "time"

// User is an account. A user may hold a password, a Google linkage, or both.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2id PHC string, empty for OAuth-only accounts
	Role         Role

	// GoogleID is the Google subject this account is linked to.
	GoogleID string

	Profile Profile

	// EmailFromProvider is set when Profile.Email was filled from OAuth, so
	// unlinking can clear it without touching an email the user entered.
	EmailFromProvider bool

	// AutoLinkDisabled is set by unlink. An email match will no longer attach
	// a Google identity to this account; an explicit link clears it.
	AutoLinkDisabled bool

	// TOTPSecret is the sealed base32 secret, present while set up or enabled.
	TOTPSecret  string
	TOTPEnabled bool

	// Version increases on each save and guards concurrent updates.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Profile struct {
	DisplayName   string
	FirstName     string
	LastName      string
	PictureURL    string
	Email         string
	EmailVerified bool
}

func (u *User) HasPassword() bool { return u.PasswordHash != "" }

func (u *User) GoogleLinked() bool { return u.GoogleID != "" }

// FillProfile copies provider fields into profile fields that are still empty.
// Populated fields are never overwritten. It reports whether anything changed.
func (u *User) FillProfile(p ExternalProfile) bool {
	changed := false
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
			changed = true
		}
	}

	fill(&u.Profile.DisplayName, p.DisplayName)
	fill(&u.Profile.FirstName, p.FirstName)
	fill(&u.Profile.LastName, p.LastName)
	fill(&u.Profile.PictureURL, p.PictureURL)

	if u.Profile.Email == "" && p.Email != "" {
		u.Profile.Email = p.Email
		u.Profile.EmailVerified = p.EmailVerified
		u.EmailFromProvider = true
		changed = true
	}

	return changed
}

// ClearProviderProfile drops the linkage and the fields OAuth fills in. An
// email the user set independently survives.
func (u *User) ClearProviderProfile() {
	u.GoogleID = ""
	u.Profile.DisplayName = ""
	u.Profile.FirstName = ""
	u.Profile.LastName = ""
	u.Profile.PictureURL = ""
	u.Profile.EmailVerified = false

	if u.EmailFromProvider {
		u.Profile.Email = ""
		u.EmailFromProvider = false
	}
}
