package notes

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for notes repository operations.
// Every method is scoped to userID; notes of other users behave as missing.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	List(ctx context.Context, userID bson.ObjectID, filter ListFilter) ([]*Note, error)
	Get(ctx context.Context, userID, noteID bson.ObjectID) (*Note, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNote) (*Note, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error
}
