// Package authtest provides an in-memory credential store for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"taskboard/internal/services/auth"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Users is a map-backed auth.UsersRepo with the same duplicate and
// not-found semantics as the Mongo repository.
type Users struct {
	mu      sync.Mutex
	byID    map[bson.ObjectID]auth.User
	byEmail map[string]bson.ObjectID

	// Err, when set, is returned by every call.
	Err error
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{
		byID:    map[bson.ObjectID]auth.User{},
		byEmail: map[string]bson.ObjectID{},
	}
}

func (u *Users) Create(_ context.Context, user *auth.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}

	email := auth.NormalizeEmail(user.Email)
	if _, taken := u.byEmail[email]; taken {
		return auth.ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	user.Email = email
	u.byID[user.ID] = *user
	u.byEmail[email] = user.ID
	return nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}

	id, ok := u.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	user := u.byID[id]
	return &user, nil
}

func (u *Users) FindByID(_ context.Context, id bson.ObjectID) (*auth.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}

	user, ok := u.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &user, nil
}

func (u *Users) UpdateProfile(_ context.Context, id bson.ObjectID, patch auth.ProfilePatch) (*auth.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}

	user, ok := u.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	if patch.Email != nil {
		email := auth.NormalizeEmail(*patch.Email)
		if owner, taken := u.byEmail[email]; taken && owner != id {
			return nil, auth.ErrDuplicate
		}
		delete(u.byEmail, user.Email)
		u.byEmail[email] = id
		user.Email = email
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Location != nil {
		user.Location = *patch.Location
	}
	if patch.JobTitle != nil {
		user.JobTitle = *patch.JobTitle
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = *patch.AvatarURL
	}
	user.UpdatedAt = time.Now().UTC()

	u.byID[id] = user
	return &user, nil
}

func (u *Users) UpdatePasswordHash(_ context.Context, id bson.ObjectID, hash string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}

	user, ok := u.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	u.byID[id] = user
	return nil
}

// Len reports how many users are stored.
func (u *Users) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.byID)
}
