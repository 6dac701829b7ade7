package auth

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a user in the system
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id" example:"683cdb8aa96ad71e8e075bd1"`
	FullName     string        `bson:"full_name" json:"fullName" example:"Alice Anderson"`
	Email        string        `bson:"email" json:"email" example:"alice@example.com"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	Bio          string        `bson:"bio,omitempty" json:"bio" example:"Backend engineer"`
	Location     string        `bson:"location,omitempty" json:"location" example:"Lisbon"`
	JobTitle     string        `bson:"job_title,omitempty" json:"jobTitle" example:"Engineer"`
	AvatarURL    string        `bson:"avatar_url,omitempty" json:"avatarUrl" example:"https://example.com/a.png"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005Z"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005Z"`
}

// ProfilePatch holds the profile fields to change; nil means "leave as is".
type ProfilePatch struct {
	FullName  *string
	Email     *string
	Bio       *string
	Location  *string
	JobTitle  *string
	AvatarURL *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.Bio == nil &&
		p.Location == nil && p.JobTitle == nil && p.AvatarURL == nil
}

// NormalizeEmail trims and lower-cases an address. Stored emails and every
// lookup key go through it, so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
