package notes

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"taskboard/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles notes business logic
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService creates a new notes service
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"required,max=200" example:"Meeting Notes"`
	Content string   `json:"content" validate:"max=100000" example:"Remember to discuss the quarterly targets"`
	Tags    []string `json:"tags" validate:"max=50,dive,max=50" example:"work,planning"`
}

// UpdateNoteRequest represents a note update request
type UpdateNoteRequest struct {
	Title   *string   `json:"title" validate:"omitnil,min=1,max=200" example:"Updated Meeting Notes"`
	Content *string   `json:"content" validate:"omitnil,max=100000" example:"Updated content"`
	Tags    *[]string `json:"tags" validate:"omitnil,max=50,dive,max=50" example:"work"`
}

// ListNotesRequest represents a list notes request
type ListNotesRequest struct {
	Tags   string `query:"tags"   validate:"omitempty,max=1024" example:"work,planning"`
	Search string `query:"search" validate:"omitempty,max=256" example:"meeting"`
}

// Create creates a new note
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, req CreateNoteRequest) (*Note, error) {
	title := sanitize.Line(req.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	now := time.Now().UTC()
	note := &Note{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Content:   sanitize.Clean(req.Content),
		Tags:      normalizeTags(req.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrCreateNote
	}

	return note, nil
}

// List returns the user's notes, most recently updated first.
func (s *Service) List(ctx context.Context, userID bson.ObjectID, req ListNotesRequest) ([]*Note, error) {
	filter := ListFilter{Search: strings.TrimSpace(req.Search)}
	if req.Tags != "" {
		filter.Tags = sanitize.Tags(strings.Split(req.Tags, ","))
	}

	list, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrListNotes
	}
	if list == nil {
		list = []*Note{}
	}
	return list, nil
}

// Get returns one note.
func (s *Service) Get(ctx context.Context, userID, noteID bson.ObjectID) (*Note, error) {
	note, err := s.repo.Get(ctx, userID, noteID)
	if err != nil {
		if !errors.Is(err, ErrNoteNotFound) {
			s.log.Error("failed to get note", "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		}
		return nil, err
	}
	return note, nil
}

// Update applies the present fields of req.
func (s *Service) Update(ctx context.Context, userID, noteID bson.ObjectID, req UpdateNoteRequest) (*Note, error) {
	var patch UpdateNote

	if req.Title != nil {
		title := sanitize.Line(*req.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		patch.Title = &title
	}
	if req.Content != nil {
		content := sanitize.Clean(*req.Content)
		patch.Content = &content
	}
	if req.Tags != nil {
		tags := normalizeTags(*req.Tags)
		patch.Tags = &tags
	}

	note, err := s.repo.Update(ctx, userID, noteID, patch)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, err
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	return note, nil
}

// Delete deletes a note
func (s *Service) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	if err := s.repo.Delete(ctx, userID, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return err
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return ErrDeleteNote
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := sanitize.Tags(tags)
	if out == nil {
		return []string{}
	}
	return out
}
