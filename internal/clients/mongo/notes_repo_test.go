package mongo

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/services/notes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newNote(userID bson.ObjectID, title, content string, tags []string, updated time.Time) *notes.Note {
	return &notes.Note{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestNotesRepoListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	_, db, cleanup := setupTestDB(t)
	defer cleanup()

	repo, err := NewNotesRepo(ctx, db)
	require.NoError(t, err)

	alice, bob := bson.NewObjectID(), bson.NewObjectID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Create(ctx, newNote(alice, "Groceries", "milk, eggs", []string{"home"}, base)))
	require.NoError(t, repo.Create(ctx, newNote(alice, "Standup", "Discuss the MEETING agenda", []string{"work"}, base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newNote(alice, "Meeting room", "", []string{"work", "office"}, base.Add(2*time.Minute))))
	require.NoError(t, repo.Create(ctx, newNote(bob, "Bob meeting", "", []string{"work"}, base.Add(3*time.Minute))))

	all, err := repo.List(ctx, alice, notes.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Meeting room", all[0].Title, "most recently updated first")
	assert.Equal(t, "Groceries", all[2].Title)

	byTag, err := repo.List(ctx, alice, notes.ListFilter{Tags: []string{"office", "home"}})
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	search, err := repo.List(ctx, alice, notes.ListFilter{Search: "meeting"})
	require.NoError(t, err)
	assert.Len(t, search, 2, "title or content, case-insensitive, own notes only")

	regexChars, err := repo.List(ctx, alice, notes.ListFilter{Search: "milk, e.+"})
	require.NoError(t, err)
	assert.Empty(t, regexChars, "search text is literal")

	none, err := repo.List(ctx, bson.NewObjectID(), notes.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestNotesRepoCRUDIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	_, db, cleanup := setupTestDB(t)
	defer cleanup()

	repo, err := NewNotesRepo(ctx, db)
	require.NoError(t, err)

	owner, stranger := bson.NewObjectID(), bson.NewObjectID()
	note := newNote(owner, "Plan", "draft", []string{"a"}, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, note))

	_, err = repo.Get(ctx, stranger, note.ID)
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	title := "Plan v2"
	_, err = repo.Update(ctx, stranger, note.ID, notes.UpdateNote{Title: &title})
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, stranger, note.ID), notes.ErrNoteNotFound)

	cleared := []string{}
	updated, err := repo.Update(ctx, owner, note.ID, notes.UpdateNote{Title: &title, Tags: &cleared})
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", updated.Title)
	assert.Equal(t, "draft", updated.Content)
	assert.Empty(t, updated.Tags)
	assert.False(t, updated.UpdatedAt.Before(note.UpdatedAt.Truncate(time.Millisecond)))

	unchanged, err := repo.Update(ctx, owner, note.ID, notes.UpdateNote{})
	require.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, unchanged.UpdatedAt)

	require.NoError(t, repo.Delete(ctx, owner, note.ID))
	_, err = repo.Get(ctx, owner, note.ID)
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)
}
