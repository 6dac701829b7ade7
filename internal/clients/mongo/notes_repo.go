package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotesRepo implements the notes.Repository interface for MongoDB
type NotesRepo struct {
	collection *mongo.Collection
}

// translateNotFound maps the driver ErrNoDocuments to the domain-level ErrNoteNotFound.
func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notes.ErrNoteNotFound
	}
	return err
}

// NewNotesRepo creates a new notes repository
func NewNotesRepo(parentCtx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection("notes")

	indexes := []mongo.IndexModel{
		// default listing order
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "updated_at", Value: -1},
				{Key: "_id", Value: -1},
			},
		},
		// tag filter
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "tags", Value: 1},
			},
		},
	}

	if err := createIndexes(parentCtx, collection, indexes); err != nil {
		return nil, fmt.Errorf("failed to create notes collection index: %w", err)
	}

	return &NotesRepo{
		collection: collection,
	}, nil
}

// Create creates a new note in the database
func (r *NotesRepo) Create(ctx context.Context, note *notes.Note) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	if note.CreatedAt.IsZero() {
		now := time.Now().UTC()
		note.CreatedAt = now
		note.UpdatedAt = now
	}

	_, err := r.collection.InsertOne(ctx, note)
	return err
}

// List returns the user's notes matching filter, most recently updated first.
func (r *NotesRepo) List(ctx context.Context, userID bson.ObjectID, f notes.ListFilter) ([]*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"user_id": userID}
	if len(f.Tags) > 0 {
		filter["tags"] = bson.M{"$in": f.Tags}
	}
	addSearchFilter(filter, f.Search, "title", "content")

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer closeCursor(ctx, cursor)

	notesList := []*notes.Note{}
	if err := cursor.All(ctx, &notesList); err != nil {
		return nil, err
	}
	return notesList, nil
}

// Get returns one note owned by userID.
func (r *NotesRepo) Get(ctx context.Context, userID, noteID bson.ObjectID) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var note notes.Note
	if err := r.collection.FindOne(ctx, bson.M{"_id": noteID, "user_id": userID}).Decode(&note); err != nil {
		return nil, translateNotFound(err)
	}
	return &note, nil
}

// Update updates a note belonging to the specified user
func (r *NotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch notes.UpdateNote) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{
		"_id":     noteID,
		"user_id": userID,
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}

	// Nothing to change: return the note as stored, updated_at untouched.
	if len(set) == 0 {
		var existing notes.Note
		if err := r.collection.FindOne(ctx, filter).Decode(&existing); err != nil {
			return nil, translateNotFound(err)
		}
		return &existing, nil
	}
	set["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated notes.Note
	if err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return nil, translateNotFound(err)
	}
	return &updated, nil
}

// Delete deletes a note belonging to the specified user
func (r *NotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": noteID, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notes.ErrNoteNotFound
	}
	return nil
}

// addSearchFilter adds a case-insensitive substring match over fields.
func addSearchFilter(filter bson.M, query string, fields ...string) {
	if query == "" {
		return
	}

	regex := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: regex})
	}
	filter["$or"] = or
}

func createIndexes(parentCtx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) error {
	ctx, cancel := WithRepoTimeout(parentCtx, OpTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.L().Error("failed to create index", "collection", collection.Name(), "error", err)
		return err
	}
	return nil
}

func closeCursor(ctx context.Context, cursor *mongo.Cursor) {
	if cerr := cursor.Close(context.WithoutCancel(ctx)); cerr != nil {
		logger.L().Error("failed to close cursor", "error", cerr)
	}
}
