package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/services/tasks"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TasksRepo implements tasks.Repository for MongoDB.
type TasksRepo struct {
	collection *mongo.Collection
}

// NewTasksRepo creates the tasks repository and its indexes.
func NewTasksRepo(parentCtx context.Context, db *mongo.Database) (*TasksRepo, error) {
	collection := db.Collection("tasks")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "due_date", Value: 1}}},
	}

	if err := createIndexes(parentCtx, collection, indexes); err != nil {
		return nil, fmt.Errorf("failed to create tasks collection index: %w", err)
	}

	return &TasksRepo{collection: collection}, nil
}

func taskNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return tasks.ErrTaskNotFound
	}
	return err
}

// Create inserts a task.
func (r *TasksRepo) Create(ctx context.Context, task *tasks.Task) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	if task.CreatedAt.IsZero() {
		now := time.Now().UTC()
		task.CreatedAt = now
		task.UpdatedAt = now
	}

	_, err := r.collection.InsertOne(ctx, task)
	return err
}

// List returns the user's tasks, newest first.
func (r *TasksRepo) List(ctx context.Context, userID bson.ObjectID, f tasks.ListFilter) ([]*tasks.Task, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"user_id": userID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer closeCursor(ctx, cursor)

	list := []*tasks.Task{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns one task owned by userID.
func (r *TasksRepo) Get(ctx context.Context, userID, taskID bson.ObjectID) (*tasks.Task, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var task tasks.Task
	if err := r.collection.FindOne(ctx, bson.M{"_id": taskID, "user_id": userID}).Decode(&task); err != nil {
		return nil, taskNotFound(err)
	}
	return &task, nil
}

// Update applies patch to a task owned by userID.
func (r *TasksRepo) Update(ctx context.Context, userID, taskID bson.ObjectID, patch tasks.UpdateTask) (*tasks.Task, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": taskID, "user_id": userID}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.DueDate != nil && !patch.ClearDueDate {
		set["due_date"] = patch.DueDate.UTC()
	}

	if len(set) == 0 && !patch.ClearDueDate {
		var existing tasks.Task
		if err := r.collection.FindOne(ctx, filter).Decode(&existing); err != nil {
			return nil, taskNotFound(err)
		}
		return &existing, nil
	}
	set["updated_at"] = time.Now().UTC()

	update := bson.M{"$set": set}
	if patch.ClearDueDate {
		update["$unset"] = bson.M{"due_date": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated tasks.Task
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, taskNotFound(err)
	}
	return &updated, nil
}

// Delete removes a task owned by userID.
func (r *TasksRepo) Delete(ctx context.Context, userID, taskID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": taskID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return tasks.ErrTaskNotFound
	}
	return nil
}

type statBucket struct {
	ID string `bson:"_id"`
	N  int64  `bson:"n"`
}

// Stats aggregates the user's tasks in a single $facet round trip.
func (r *TasksRepo) Stats(ctx context.Context, userID bson.ObjectID, now time.Time) (*tasks.Stats, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$facet", Value: bson.M{
			"total": bson.A{
				bson.M{"$count": "n"},
			},
			"by_status": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
			},
			"by_priority": bson.A{
				bson.M{"$group": bson.M{"_id": "$priority", "n": bson.M{"$sum": 1}}},
			},
			"overdue": bson.A{
				bson.M{"$match": bson.M{
					"due_date": bson.M{"$lt": now},
					"status":   bson.M{"$ne": tasks.StatusDone},
				}},
				bson.M{"$count": "n"},
			},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer closeCursor(ctx, cursor)

	var facets []struct {
		Total      []statBucket `bson:"total"`
		ByStatus   []statBucket `bson:"by_status"`
		ByPriority []statBucket `bson:"by_priority"`
		Overdue    []statBucket `bson:"overdue"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, err
	}

	stats := &tasks.Stats{
		ByStatus:   map[string]int64{},
		ByPriority: map[string]int64{},
	}
	if len(facets) == 0 {
		return stats, nil
	}

	f := facets[0]
	if len(f.Total) > 0 {
		stats.Total = f.Total[0].N
	}
	if len(f.Overdue) > 0 {
		stats.Overdue = f.Overdue[0].N
	}
	for _, b := range f.ByStatus {
		stats.ByStatus[b.ID] = b.N
	}
	for _, b := range f.ByPriority {
		stats.ByPriority[b.ID] = b.N
	}
	return stats, nil
}
