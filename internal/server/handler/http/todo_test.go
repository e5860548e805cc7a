package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/akarpenko/todoapi/internal/common"
	"github.com/akarpenko/todoapi/internal/middleware"
	"github.com/akarpenko/todoapi/internal/models"
)

// fakeTodoService implements TodoService for testing.
type fakeTodoService struct {
	CreateFunc func(ctx context.Context, creator primitive.ObjectID, text string) (*models.Todo, error)
	ListFunc   func(ctx context.Context, creator primitive.ObjectID) ([]models.Todo, error)
	GetFunc    func(ctx context.Context, creator primitive.ObjectID, id string) (*models.Todo, error)
	DeleteFunc func(ctx context.Context, creator primitive.ObjectID, id string) (*models.Todo, error)
	PatchFunc  func(ctx context.Context, creator primitive.ObjectID, id string, text *string, completed *bool) (*models.Todo, error)
}

func (f *fakeTodoService) Create(ctx context.Context, creator primitive.ObjectID, text string) (*models.Todo, error) {
	return f.CreateFunc(ctx, creator, text)
}
func (f *fakeTodoService) List(ctx context.Context, creator primitive.ObjectID) ([]models.Todo, error) {
	return f.ListFunc(ctx, creator)
}
func (f *fakeTodoService) Get(ctx context.Context, creator primitive.ObjectID, id string) (*models.Todo, error) {
	return f.GetFunc(ctx, creator, id)
}
func (f *fakeTodoService) Delete(ctx context.Context, creator primitive.ObjectID, id string) (*models.Todo, error) {
	return f.DeleteFunc(ctx, creator, id)
}
func (f *fakeTodoService) Patch(ctx context.Context, creator primitive.ObjectID, id string, text *string, completed *bool) (*models.Todo, error) {
	return f.PatchFunc(ctx, creator, id, text, completed)
}

// newTestRouter wires the full router with a fixed authenticated user,
// so requests travel the same middleware chain as in production.
func newTestRouter(user *models.User, todos TodoService) http.Handler {
	userHandler := &UserHandler{Users: &fakeUserService{}}
	todoHandler := &TodoHandler{Todos: todos}
	return NewRouter(userHandler, todoHandler, &fakeAuthenticator{user: user}, zap.NewNop())
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthHeader, token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Result()
}

func TestTodoHandler_Create(t *testing.T) {
	user := testUser()
	created := &models.Todo{ID: primitive.NewObjectID(), Text: "buy milk", Creator: user.ID}

	svc := &fakeTodoService{
		CreateFunc: func(ctx context.Context, creator primitive.ObjectID, text string) (*models.Todo, error) {
			if creator != user.ID {
				t.Errorf("creator = %s; want the authenticated user", creator.Hex())
			}
			if text != "buy milk" {
				t.Errorf("text = %q; want %q", text, "buy milk")
			}
			return created, nil
		},
	}
	router := newTestRouter(user, svc)

	res := doJSON(t, router, "POST", "/todos", "tok-1", `{"text":"buy milk"}`)
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if payload["text"] != "buy milk" {
		t.Errorf("expected text %q, got %v", "buy milk", payload["text"])
	}
	if _, leaked := payload["_creator"]; leaked {
		t.Error("response leaks the creator reference")
	}
}

func TestTodoHandler_Create_Validation(t *testing.T) {
	user := testUser()
	svc := &fakeTodoService{
		CreateFunc: func(ctx context.Context, creator primitive.ObjectID, text string) (*models.Todo, error) {
			return nil, common.NewValidationError("text", "is required")
		},
	}
	router := newTestRouter(user, svc)

	res := doJSON(t, router, "POST", "/todos", "tok-1", `{"text":""}`)
	defer res.Body.Close()

	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.StatusCode)
	}
}

func TestTodoHandler_List(t *testing.T) {
	user := testUser()
	todos := []models.Todo{
		{ID: primitive.NewObjectID(), Text: "one", Creator: user.ID},
		{ID: primitive.NewObjectID(), Text: "two", Creator: user.ID},
	}

	svc := &fakeTodoService{
		ListFunc: func(ctx context.Context, creator primitive.ObjectID) ([]models.Todo, error) {
			return todos, nil
		},
	}
	router := newTestRouter(user, svc)

	res := doJSON(t, router, "GET", "/todos", "tok-1", "")
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	var payload struct {
		Todos []models.Todo `json:"todos"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if len(payload.Todos) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(payload.Todos))
	}
}

func TestTodoHandler_Get(t *testing.T) {
	user := testUser()
	id := primitive.NewObjectID()

	tests := []struct {
		name         string
		svc          *fakeTodoService
		path         string
		expectedCode int
		emptyBody    bool
	}{
		{
			name: "found",
			svc: &fakeTodoService{
				GetFunc: func(ctx context.Context, creator primitive.ObjectID, gotID string) (*models.Todo, error) {
					if gotID != id.Hex() {
						t.Errorf("id = %q; want %q", gotID, id.Hex())
					}
					return &models.Todo{ID: id, Text: "buy milk", Creator: creator}, nil
				},
			},
			path:         "/todos/" + id.Hex(),
			expectedCode: http.StatusOK,
		},
		{
			name: "absent or foreign",
			svc: &fakeTodoService{
				GetFunc: func(ctx context.Context, creator primitive.ObjectID, gotID string) (*models.Todo, error) {
					return nil, common.ErrNotFound
				},
			},
			path:         "/todos/" + id.Hex(),
			expectedCode: http.StatusNotFound,
			emptyBody:    true,
		},
		{
			name: "malformed id",
			svc: &fakeTodoService{
				GetFunc: func(ctx context.Context, creator primitive.ObjectID, gotID string) (*models.Todo, error) {
					return nil, common.ErrNotFound
				},
			},
			path:         "/todos/123abc",
			expectedCode: http.StatusNotFound,
			emptyBody:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(user, tt.svc)
			res := doJSON(t, router, "GET", tt.path, "tok-1", "")
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}
			if tt.emptyBody {
				body, _ := io.ReadAll(res.Body)
				if len(body) != 0 {
					t.Errorf("expected empty body, got %q", body)
				}
			}
		})
	}
}

func TestTodoHandler_Delete(t *testing.T) {
	user := testUser()
	id := primitive.NewObjectID()

	svc := &fakeTodoService{
		DeleteFunc: func(ctx context.Context, creator primitive.ObjectID, gotID string) (*models.Todo, error) {
			return &models.Todo{ID: id, Text: "buy milk", Creator: creator}, nil
		},
	}
	router := newTestRouter(user, svc)

	res := doJSON(t, router, "DELETE", "/todos/"+id.Hex(), "tok-1", "")
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	var payload struct {
		Todo models.Todo `json:"todo"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if payload.Todo.Text != "buy milk" {
		t.Errorf("expected deleted todo in response, got %+v", payload.Todo)
	}
}

func TestTodoHandler_Patch(t *testing.T) {
	user := testUser()
	id := primitive.NewObjectID()

	var gotText *string
	var gotCompleted *bool
	svc := &fakeTodoService{
		PatchFunc: func(ctx context.Context, creator primitive.ObjectID, gotID string, text *string, completed *bool) (*models.Todo, error) {
			gotText, gotCompleted = text, completed
			ms := int64(1521028800000)
			return &models.Todo{ID: id, Text: "buy milk", Completed: true, CompletedAt: &ms, Creator: creator}, nil
		},
	}
	router := newTestRouter(user, svc)

	res := doJSON(t, router, "PATCH", "/todos/"+id.Hex(), "tok-1", `{"completed":true}`)
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if gotText != nil {
		t.Errorf("text = %v; want nil for omitted field", *gotText)
	}
	if gotCompleted == nil || !*gotCompleted {
		t.Errorf("completed = %v; want true", gotCompleted)
	}

	var payload struct {
		Todo models.Todo `json:"todo"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if !payload.Todo.Completed || payload.Todo.CompletedAt == nil {
		t.Errorf("expected completed todo with timestamp, got %+v", payload.Todo)
	}
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	user := testUser()
	router := NewRouter(
		&UserHandler{Users: &fakeUserService{}},
		&TodoHandler{Todos: &fakeTodoService{}},
		&fakeAuthenticator{user: user, err: common.ErrInvalidToken},
		zap.NewNop(),
	)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/users/me"},
		{"DELETE", "/users/me/token"},
		{"GET", "/todos"},
		{"POST", "/todos"},
		{"GET", "/todos/5a7c36b1f0a5d9001c9e8b4d"},
		{"DELETE", "/todos/5a7c36b1f0a5d9001c9e8b4d"},
		{"PATCH", "/todos/5a7c36b1f0a5d9001c9e8b4d"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			// Header present but token rejected.
			res := doJSON(t, router, p.method, p.path, "revoked-token", "")
			defer res.Body.Close()

			if res.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", res.StatusCode)
			}
			body, _ := io.ReadAll(res.Body)
			if len(body) != 0 {
				t.Errorf("expected empty body, got %q", body)
			}
		})
	}
}
