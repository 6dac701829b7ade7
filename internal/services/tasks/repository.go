package tasks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for task storage. Every method is scoped
// to userID; tasks of other users behave as missing.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	List(ctx context.Context, userID bson.ObjectID, filter ListFilter) ([]*Task, error)
	Get(ctx context.Context, userID, taskID bson.ObjectID) (*Task, error)
	Update(ctx context.Context, userID, taskID bson.ObjectID, patch UpdateTask) (*Task, error)
	Delete(ctx context.Context, userID, taskID bson.ObjectID) error
	// Stats counts tasks per status and priority, and those due before now
	// that are not done. Missing buckets may be absent from the maps.
	Stats(ctx context.Context, userID bson.ObjectID, now time.Time) (*Stats, error)
}
