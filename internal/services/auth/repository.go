package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UsersRepo is the credential store.
//
// Create and UpdateProfile return ErrDuplicate when the (normalized) email
// is taken; the store enforces this atomically. Lookups return
// ErrUserNotFound when nothing matches.
type UsersRepo interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	UpdateProfile(ctx context.Context, id bson.ObjectID, patch ProfilePatch) (*User, error)
	UpdatePasswordHash(ctx context.Context, id bson.ObjectID, hash string) error
}

// PasswordHasher hashes and checks passwords. A mismatch is (false, nil).
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}
