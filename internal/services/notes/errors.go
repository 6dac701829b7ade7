package notes

import "errors"

// ErrNoteNotFound is returned for a missing note or one owned by another user.
var ErrNoteNotFound = errors.New("note not found")

// ErrInvalidTitle is returned when the title is empty once sanitized.
var ErrInvalidTitle = errors.New("note title is required")

// ErrCreateNote is returned when note creation fails.
var ErrCreateNote = errors.New("failed to create note")

// ErrUpdateNote is returned when note update fails.
var ErrUpdateNote = errors.New("failed to update note")

// ErrDeleteNote is returned when note deletion fails.
var ErrDeleteNote = errors.New("failed to delete note")

// ErrListNotes is returned when notes listing fails.
var ErrListNotes = errors.New("failed to list notes")
