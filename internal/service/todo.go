package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akarpenko/todoapi/internal/common"
	"github.com/akarpenko/todoapi/internal/models"
)

// TodoRepository defines the persistence operations required by the
// todo service. Every operation is already creator-scoped at the query
// level.
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	ListByCreator(ctx context.Context, creator primitive.ObjectID) ([]models.Todo, error)
	FindByID(ctx context.Context, id, creator primitive.ObjectID) (*models.Todo, error)
	Delete(ctx context.Context, id, creator primitive.ObjectID) (*models.Todo, error)
	Update(ctx context.Context, id, creator primitive.ObjectID, patch models.TodoPatch) (*models.Todo, error)
}

// TodoService implements owner-scoped CRUD on todos. The creator always
// comes from the authenticated identity, never from the client payload.
type TodoService struct {
	repo TodoRepository
	now  func() time.Time
}

// NewTodoService constructs a TodoService.
func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{repo: repo, now: time.Now}
}

// Create stores a new todo owned by creator. Text must be non-empty
// after trimming.
func (s *TodoService) Create(ctx context.Context, creator primitive.ObjectID, text string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.NewValidationError("text", "is required")
	}

	return s.repo.Create(ctx, &models.Todo{
		Text:      text,
		Completed: false,
		Creator:   creator,
	})
}

// List returns all todos owned by creator.
func (s *TodoService) List(ctx context.Context, creator primitive.ObjectID) ([]models.Todo, error) {
	return s.repo.ListByCreator(ctx, creator)
}

// Get returns the todo with the given id if creator owns it. A malformed
// id, a missing document, and another owner's document all yield
// common.ErrNotFound.
func (s *TodoService) Get(ctx context.Context, creator primitive.ObjectID, id string) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrNotFound
	}
	return s.repo.FindByID(ctx, oid, creator)
}

// Delete removes the todo with the given id if creator owns it and
// returns the removed document. Same not-found rules as Get.
func (s *TodoService) Delete(ctx context.Context, creator primitive.ObjectID, id string) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrNotFound
	}
	return s.repo.Delete(ctx, oid, creator)
}

// Patch applies a partial update to the todo with the given id if
// creator owns it. Only text and completed are settable. When completed
// is true, completedAt is stamped with the current time in epoch
// milliseconds; in every other case, including an omitted completed
// field, the todo is reset to completed=false, completedAt=null.
func (s *TodoService) Patch(ctx context.Context, creator primitive.ObjectID, id string, text *string, completed *bool) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrNotFound
	}

	patch := models.TodoPatch{}
	if text != nil {
		trimmed := strings.TrimSpace(*text)
		if trimmed == "" {
			return nil, common.NewValidationError("text", "is required")
		}
		patch.Text = &trimmed
	}
	if completed != nil && *completed {
		patch.Completed = true
		ms := s.now().UnixMilli()
		patch.CompletedAt = &ms
	}

	return s.repo.Update(ctx, oid, creator, patch)
}
