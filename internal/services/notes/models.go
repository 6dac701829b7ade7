package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Note is a free-form note owned by one user.
type Note struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id" example:"683cdb8aa96ad71e8e075bd1"`
	UserID    bson.ObjectID `bson:"user_id" json:"user" example:"683cdb8aa96ad71e8e075bd0"`
	Title     string        `bson:"title" json:"title" example:"Meeting Notes"`
	Content   string        `bson:"content" json:"content" example:"Remember to discuss the quarterly targets"`
	Tags      []string      `bson:"tags" json:"tags" example:"work,planning"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005Z"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005Z"`
}

// UpdateNote represents the fields that can be updated in a note. A nil
// Tags leaves tags alone; a pointer to an empty slice clears them.
type UpdateNote struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// ListFilter narrows List. Tags match any; Search is a case-insensitive
// substring of title or content.
type ListFilter struct {
	Tags   []string
	Search string
}
