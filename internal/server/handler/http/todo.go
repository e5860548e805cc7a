package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akarpenko/todoapi/internal/common"
	"github.com/akarpenko/todoapi/internal/middleware"
	"github.com/akarpenko/todoapi/internal/models"
)

// TodoService defines the owner-scoped todo operations required by the
// HTTP handlers.
type TodoService interface {
	Create(ctx context.Context, creator primitive.ObjectID, text string) (*models.Todo, error)
	List(ctx context.Context, creator primitive.ObjectID) ([]models.Todo, error)
	Get(ctx context.Context, creator primitive.ObjectID, id string) (*models.Todo, error)
	Delete(ctx context.Context, creator primitive.ObjectID, id string) (*models.Todo, error)
	Patch(ctx context.Context, creator primitive.ObjectID, id string, text *string, completed *bool) (*models.Todo, error)
}

// TodoHandler handles the todo CRUD requests. All routes sit behind
// RequireAuth, so the creator is always the authenticated identity.
type TodoHandler struct {
	// Todos performs the underlying todo operations.
	Todos TodoService
}

// createTodoRequest is the JSON payload for todo creation.
type createTodoRequest struct {
	Text string `json:"text"`
}

// patchTodoRequest is the allow-listed JSON payload for todo updates.
// Fields other than text and completed are simply not representable.
type patchTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

func writeTodoError(w http.ResponseWriter, err error) {
	switch {
	case common.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// Create stores a new todo owned by the caller and returns it.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	todo, err := h.Todos.Create(r.Context(), user.ID, req.Text)
	if err != nil {
		writeTodoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// List returns all todos owned by the caller as {"todos": [...]}.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	todos, err := h.Todos.List(r.Context(), user.ID)
	if err != nil {
		writeTodoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Todo{"todos": todos})
}

// Get returns one todo as {"todo": {...}}. A todo that does not exist or
// belongs to another owner answers 404 with an empty body.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	todo, err := h.Todos.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeTodoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.Todo{"todo": todo})
}

// Delete removes one todo and returns the removed document as
// {"todo": {...}}. Same not-found rules as Get.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	todo, err := h.Todos.Delete(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeTodoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.Todo{"todo": todo})
}

// Patch applies a partial update and returns the updated document as
// {"todo": {...}}. Same not-found rules as Get.
func (h *TodoHandler) Patch(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req patchTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	todo, err := h.Todos.Patch(r.Context(), user.ID, chi.URLParam(r, "id"), req.Text, req.Completed)
	if err != nil {
		writeTodoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.Todo{"todo": todo})
}
