package notes

import (
	"context"
	"errors"

	"taskboard/cmd/server/handlers/handlerutil"
	"taskboard/cmd/server/handlers/httperr"
	"taskboard/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for notes service
type Service interface {
	Create(ctx context.Context, userID bson.ObjectID, req notes.CreateNoteRequest) (*notes.Note, error)
	List(ctx context.Context, userID bson.ObjectID, req notes.ListNotesRequest) ([]*notes.Note, error)
	Get(ctx context.Context, userID, noteID bson.ObjectID) (*notes.Note, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, req notes.UpdateNoteRequest) (*notes.Note, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateNote"); err != nil {
		return err
	}

	note, err := h.service.Create(c.UserContext(), userID, req)
	if err != nil {
		return mapError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

// List handles notes listing
// @Summary List notes, most recently updated first
// @Tags notes
// @Produce json
// @Security Bearer
// @Param tags query string false "Comma separated tags, any match"
// @Param search query string false "Case-insensitive search in title or content"
// @Success 200 {array} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "ListNotes"); err != nil {
		return err
	}

	list, err := h.service.List(c.UserContext(), userID, req)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(list)
}

// Get returns one note
// @Summary Get a note
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractID(c, "GetNote", httperr.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.service.Get(c.UserContext(), userID, noteID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(note)
}

// Update handles note updates
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Fields to change"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [put]
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractID(c, "UpdateNote", httperr.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateNote"); err != nil {
		return err
	}

	note, err := h.service.Update(c.UserContext(), userID, noteID, req)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(note)
}

// Delete handles note deletion
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} map[string]string
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractID(c, "DeleteNote", httperr.ErrNoteNotFound)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), userID, noteID); err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"message": "Note deleted successfully"})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, notes.ErrNoteNotFound):
		return httperr.Fail(httperr.ErrNoteNotFound)
	case errors.Is(err, notes.ErrInvalidTitle):
		return httperr.Field("title", "is required")
	default:
		return httperr.Fail(httperr.Internal(err))
	}
}
